// Package transports imports every built-in transport for side-effect
// registration. Import it once to have the full set available through the
// default registry; NATS and RabbitMQ additionally need an explicit
// Register call.
package transports

import (
	_ "github.com/drblury/hoplog/transport/aws"
	_ "github.com/drblury/hoplog/transport/channel"
	_ "github.com/drblury/hoplog/transport/http"
	_ "github.com/drblury/hoplog/transport/jetstream"
	_ "github.com/drblury/hoplog/transport/kafka"

	"github.com/drblury/hoplog/transport/nats"
	"github.com/drblury/hoplog/transport/rabbitmq"
)

func init() {
	nats.Register()
	rabbitmq.Register()
}
