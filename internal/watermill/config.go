package watermillutil

import "time"

// Config describes the NATS connection shared by the publisher and subscriber.
type Config struct {
	URL string
	// QueueGroup load-balances subscriptions across service instances.
	QueueGroup     string
	ConnectTimeout time.Duration
	ReconnectWait  time.Duration
	// Stream captures published subjects in JetStream for replay by clients.
	// An empty StreamName skips provisioning.
	StreamName     string
	StreamSubjects []string
	StreamMaxAge   time.Duration
}

func (c Config) withDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.ReconnectWait <= 0 {
		c.ReconnectWait = 2 * time.Second
	}
	return c
}
