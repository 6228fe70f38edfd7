package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-aws/sqs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reporterhq/reporter/transport"
)

func TestRegister(t *testing.T) {
	transport.DefaultRegistry = transport.NewRegistry()
	Register()

	caps := transport.GetCapabilities(TransportName)
	assert.Equal(t, "aws", caps.Name)
	assert.True(t, caps.Durable)
	assert.True(t, caps.AtLeastOnce())
}

func TestCapabilities(t *testing.T) {
	assert.Equal(t, transport.AWSCapabilities, Capabilities())
}

func TestBuild(t *testing.T) {
	t.Run("uses region and custom endpoint", func(t *testing.T) {
		origLoader, origPub, origSub := DefaultConfigLoader, PublisherFactory, SubscriberFactory
		defer func() {
			DefaultConfigLoader, PublisherFactory, SubscriberFactory = origLoader, origPub, origSub
		}()

		DefaultConfigLoader = func(ctx context.Context, opts ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
			return aws.Config{}, nil
		}
		var pubCfg sqs.PublisherConfig
		PublisherFactory = func(cfg sqs.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
			pubCfg = cfg
			return &mockPublisher{}, nil
		}
		var subCfg sqs.SubscriberConfig
		SubscriberFactory = func(cfg sqs.SubscriberConfig, logger watermill.LoggerAdapter) (message.Subscriber, error) {
			subCfg = cfg
			return &mockSubscriber{}, nil
		}

		cfg := &mockConfig{
			region:   "eu-central-1",
			endpoint: "http://localhost:4566",
		}
		tr, err := Build(context.Background(), cfg, watermill.NopLogger{})

		require.NoError(t, err)
		assert.NotNil(t, tr.Publisher)
		assert.NotNil(t, tr.Subscriber)
		assert.Equal(t, "eu-central-1", pubCfg.AWSConfig.Region)
		assert.Len(t, pubCfg.OptFns, 1)
		assert.Len(t, subCfg.OptFns, 1)
		assert.False(t, pubCfg.DoNotCreateQueueIfNotExists)
	})

	t.Run("fails on unparseable endpoint", func(t *testing.T) {
		origLoader := DefaultConfigLoader
		defer func() { DefaultConfigLoader = origLoader }()

		DefaultConfigLoader = func(ctx context.Context, opts ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
			return aws.Config{}, nil
		}

		cfg := &mockConfig{endpoint: "://not-a-url"}
		_, err := Build(context.Background(), cfg, watermill.NopLogger{})
		require.Error(t, err)
	})

	t.Run("propagates config loader error", func(t *testing.T) {
		origLoader := DefaultConfigLoader
		defer func() { DefaultConfigLoader = origLoader }()

		wantErr := errors.New("no credentials")
		DefaultConfigLoader = func(ctx context.Context, opts ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
			return aws.Config{}, wantErr
		}

		_, err := Build(context.Background(), &mockConfig{}, watermill.NopLogger{})
		assert.ErrorIs(t, err, wantErr)
	})
}

func TestStaticCredentialsProvider(t *testing.T) {
	provider := staticCredentialsProvider("AKID", "SECRET")
	creds, err := provider.Retrieve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "AKID", creds.AccessKeyID)
	assert.Equal(t, "SECRET", creds.SecretAccessKey)
}

type mockConfig struct {
	region    string
	accessKey string
	secretKey string
	endpoint  string
}

func (m *mockConfig) GetBroker() string             { return "aws" }
func (m *mockConfig) GetKafkaBrokers() []string     { return nil }
func (m *mockConfig) GetKafkaConsumerGroup() string { return "" }
func (m *mockConfig) GetRabbitMQURL() string        { return "" }
func (m *mockConfig) GetNATSURL() string            { return "" }
func (m *mockConfig) GetHTTPServerAddress() string  { return "" }
func (m *mockConfig) GetHTTPPublisherURL() string   { return "" }
func (m *mockConfig) GetIOFile() string             { return "" }
func (m *mockConfig) GetSQLiteFile() string         { return "" }
func (m *mockConfig) GetAWSRegion() string          { return m.region }
func (m *mockConfig) GetAWSAccessKeyID() string     { return m.accessKey }
func (m *mockConfig) GetAWSSecretAccessKey() string { return m.secretKey }
func (m *mockConfig) GetAWSEndpoint() string        { return m.endpoint }

type mockPublisher struct{}

func (m *mockPublisher) Publish(topic string, messages ...*message.Message) error { return nil }
func (m *mockPublisher) Close() error                                             { return nil }

type mockSubscriber struct{}

func (m *mockSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return make(chan *message.Message), nil
}
func (m *mockSubscriber) Close() error { return nil }
