package eventbus

import (
	"github.com/ThreeDotsLabs/watermill/message"
)

// MetadataTopic is the metadata key naming a message's destination.
const MetadataTopic = "topic"

// TopicPublisher publishes each message to the topic stored in its
// metadata, falling back to the topic it was handed. Routers register
// handlers with an empty publish topic and this publisher.
type TopicPublisher struct {
	bus EventBus
}

// NewTopicPublisher wraps bus.
func NewTopicPublisher(bus EventBus) *TopicPublisher {
	return &TopicPublisher{bus: bus}
}

// Publish implements message.Publisher.
func (p *TopicPublisher) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		dest := msg.Metadata.Get(MetadataTopic)
		if dest == "" {
			dest = topic
		}
		if err := p.bus.Publish(dest, msg); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op; the wrapped bus is owned by the caller.
func (p *TopicPublisher) Close() error {
	return nil
}

var _ message.Publisher = (*TopicPublisher)(nil)
