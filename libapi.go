package reporter

import (
	configpkg "github.com/reporterhq/reporter/internal/config"
	errspkg "github.com/reporterhq/reporter/internal/errors"
	idspkg "github.com/reporterhq/reporter/internal/ids"
	jsoncodec "github.com/reporterhq/reporter/internal/jsoncodec"
	loggingpkg "github.com/reporterhq/reporter/internal/logging"
	metricspkg "github.com/reporterhq/reporter/internal/metrics"
	relaypkg "github.com/reporterhq/reporter/internal/relay"
	reportpkg "github.com/reporterhq/reporter/internal/report"
	transportpkg "github.com/reporterhq/reporter/transport"
)

type (
	Level    = reportpkg.Level
	Envelope = reportpkg.Envelope
	Template = reportpkg.Template
	Color    = reportpkg.Color

	Node        = reportpkg.Node
	Sink        = reportpkg.Sink
	LevelSetter = reportpkg.LevelSetter

	WriterSink       = reportpkg.WriterSink
	WriterSinkConfig = reportpkg.WriterSinkConfig
	FileSink         = reportpkg.FileSink
	FileSinkConfig   = reportpkg.FileSinkConfig

	Config = configpkg.Config

	Producer          = relaypkg.Producer
	ProducerOptions   = relaypkg.ProducerOptions
	Worker            = relaypkg.Worker
	WorkerOptions     = relaypkg.WorkerOptions
	Job               = relaypkg.Job
	MalformedJobError = relaypkg.MalformedJobError

	RelayMetrics = metricspkg.RelayMetrics

	LogFields     = loggingpkg.LogFields
	ServiceLogger = loggingpkg.ServiceLogger

	// Transport types for registering custom brokers.
	Transport             = transportpkg.Transport
	TransportBuilder      = transportpkg.Builder
	TransportConfig       = transportpkg.Config
	TransportRegistry     = transportpkg.Registry
	TransportCapabilities = transportpkg.Capabilities
)

// Severity levels, lowest to highest.
const (
	LevelDebug     = reportpkg.LevelDebug
	LevelTrace     = reportpkg.LevelTrace
	LevelInfo      = reportpkg.LevelInfo
	LevelSuccess   = reportpkg.LevelSuccess
	LevelWarning   = reportpkg.LevelWarning
	LevelError     = reportpkg.LevelError
	LevelException = reportpkg.LevelException
	LevelFatal     = reportpkg.LevelFatal

	DefaultLevel = reportpkg.DefaultLevel

	Placeholder     = reportpkg.Placeholder
	TimestampLayout = reportpkg.TimestampLayout

	DefaultTopic   = configpkg.DefaultTopic
	JobTypeMessage = relaypkg.JobTypeMessage
)

var (
	NewNode       = reportpkg.NewNode
	NewEnvelope   = reportpkg.NewEnvelope
	ParseLevel    = reportpkg.ParseLevel
	ColorForLevel = reportpkg.ColorForLevel

	TemplateDefault = reportpkg.TemplateDefault
	TemplateCompact = reportpkg.TemplateCompact
	TemplateCommand = reportpkg.TemplateCommand

	NewWriterSink  = reportpkg.NewWriterSink
	NewConsoleSink = reportpkg.NewConsoleSink
	NewStderrSink  = reportpkg.NewStderrSink
	NewFileSink    = reportpkg.NewFileSink

	NewProducer     = relaypkg.NewProducer
	NewWorker       = relaypkg.NewWorker
	NewJob          = relaypkg.NewJob
	DecodeJob       = relaypkg.DecodeJob
	ErrForeignJob   = relaypkg.ErrForeignJob
	NewRelayMetrics = metricspkg.NewRelayMetrics

	ValidateConfig = configpkg.ValidateConfig

	NewSlogServiceLogger      = loggingpkg.NewSlogServiceLogger
	NewWatermillServiceLogger = loggingpkg.NewWatermillServiceLogger
	NewWatermillAdapter       = loggingpkg.NewWatermillAdapter

	// Transport registry access. Import individual transports via:
	//   _ "github.com/reporterhq/reporter/transport/channel"
	// or register everything at once with transports.RegisterAll.
	DefaultTransportRegistry = transportpkg.DefaultRegistry
	RegisterTransport        = transportpkg.Register
	BuildTransport           = transportpkg.Build
	GetCapabilities          = transportpkg.GetCapabilities

	Marshal       = jsoncodec.Marshal
	MarshalIndent = jsoncodec.MarshalIndent
	Unmarshal     = jsoncodec.Unmarshal
	Encode        = jsoncodec.Encode
	Decode        = jsoncodec.Decode

	CreateULID = idspkg.CreateULID

	ErrNotRegistered     = errspkg.ErrNotRegistered
	ErrSinkRequired      = errspkg.ErrSinkRequired
	ErrNodeRequired      = errspkg.ErrNodeRequired
	ErrTopicRequired     = errspkg.ErrTopicRequired
	ErrPublisherRequired = errspkg.ErrPublisherRequired
	ErrConfigRequired    = errspkg.ErrConfigRequired
	ErrLoggerRequired    = errspkg.ErrLoggerRequired
	ErrWorkerStopped     = errspkg.ErrWorkerStopped
	ErrPathAndWriter     = errspkg.ErrPathAndWriter
	ErrProducerDisabled  = errspkg.ErrProducerDisabled
)
