package watermillutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// PubSub bundles the watermill publisher and subscriber with a plain NATS
// connection used for stream provisioning and health checks.
type PubSub struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	nc         *nats.Conn
	js         jetstream.JetStream
}

// NewPubSub connects to NATS and provisions the configured stream.
func NewPubSub(ctx context.Context, cfg Config, logger *slog.Logger) (*PubSub, error) {
	cfg = cfg.withDefaults()
	wmLogger := watermill.NewSlogLogger(logger)

	conn, err := nats.Connect(cfg.URL, connectOptions(cfg, wmLogger, "courtside-admin")...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	if err := EnsureStream(ctx, js, cfg); err != nil {
		conn.Close()
		return nil, err
	}

	pub, err := NewPublisher(cfg, wmLogger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	sub, err := NewSubscriber(cfg, wmLogger)
	if err != nil {
		pub.Close()
		conn.Close()
		return nil, err
	}

	logger.InfoContext(ctx, "Connected to NATS",
		slog.String("url", conn.ConnectedUrl()),
		slog.String("stream", cfg.StreamName),
	)
	return &PubSub{publisher: pub, subscriber: sub, nc: conn, js: js}, nil
}

// Publish publishes messages to the topic.
func (ps *PubSub) Publish(topic string, messages ...*message.Message) error {
	return ps.publisher.Publish(topic, messages...)
}

func (ps *PubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return ps.subscriber.Subscribe(ctx, topic)
}

// Healthy reports whether the admin connection is up.
func (ps *PubSub) Healthy() error {
	if ps.nc == nil || !ps.nc.IsConnected() {
		return errors.New("nats not connected")
	}
	return nil
}

// JetStream exposes the JetStream context for stream inspection.
func (ps *PubSub) JetStream() jetstream.JetStream {
	return ps.js
}

func (ps *PubSub) Close() error {
	var errs []error

	if err := ps.subscriber.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close subscriber: %w", err))
	}
	if err := ps.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close publisher: %w", err))
	}
	if ps.nc != nil {
		ps.nc.Close()
	}
	return errors.Join(errs...)
}
