package watermillutil

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
)

// NewSubscriber creates a core NATS watermill subscriber. When a queue group
// is configured every instance joins it, so each request is handled once.
func NewSubscriber(cfg Config, logger watermill.LoggerAdapter) (message.Subscriber, error) {
	cfg = cfg.withDefaults()
	sub, err := nats.NewSubscriber(nats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		NatsOptions:      connectOptions(cfg, logger, "courtside-subscriber"),
		Unmarshaler:      &nats.NATSMarshaler{},
		JetStream:        nats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}
	return sub, nil
}
