// Package transports imports all built-in transports for side-effect or
// explicit registration with the default registry.
package transports

import (
	"github.com/reporterhq/reporter/transport/aws"
	_ "github.com/reporterhq/reporter/transport/channel"
	"github.com/reporterhq/reporter/transport/http"
	"github.com/reporterhq/reporter/transport/io"
	"github.com/reporterhq/reporter/transport/jetstream"
	_ "github.com/reporterhq/reporter/transport/kafka"
	"github.com/reporterhq/reporter/transport/nats"
	"github.com/reporterhq/reporter/transport/rabbitmq"
	"github.com/reporterhq/reporter/transport/sqlite"
)

// RegisterAll registers every built-in transport with the default
// registry. Channel and Kafka self-register on import; the rest expose
// Register functions called here.
func RegisterAll() {
	aws.Register()
	http.Register()
	io.Register()
	jetstream.Register()
	nats.Register()
	rabbitmq.Register()
	sqlite.Register()
}
