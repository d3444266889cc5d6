package watermillutil

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
)

// connectOptions are shared by every connection opened by this package.
func connectOptions(cfg Config, logger watermill.LoggerAdapter, name string) []nc.Option {
	return []nc.Option{
		nc.Name(name),
		nc.RetryOnFailedConnect(true),
		nc.MaxReconnects(-1),
		nc.Timeout(cfg.ConnectTimeout),
		nc.ReconnectWait(cfg.ReconnectWait),
		nc.DisconnectErrHandler(func(_ *nc.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, watermill.LogFields{"connection": name})
			}
		}),
		nc.ReconnectHandler(func(conn *nc.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"connection": name, "url": conn.ConnectedUrl()})
		}),
	}
}

// NewPublisher creates a core NATS watermill publisher. Message metadata
// travels in NATS headers.
func NewPublisher(cfg Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	cfg = cfg.withDefaults()
	pub, err := nats.NewPublisher(nats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: connectOptions(cfg, logger, "courtside-publisher"),
		Marshaler:   &nats.NATSMarshaler{},
		JetStream:   nats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}
	return pub, nil
}
