package eventbus

import (
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
)

// ErrMissingSessionID is returned when a scoped publish has no session.
var ErrMissingSessionID = errors.New("sessionID cannot be empty for session-scoped publish")

// PublishWithSessionScope publishes to {baseTopic}.{sessionID} so that
// clients can subscribe to one session or, with a wildcard, to all of them:
//
//	session.schedule.updated.v1.*
//	session.schedule.updated.v1.3f2c...
func PublishWithSessionScope(bus EventBus, baseTopic, sessionID string, msg *message.Message) error {
	if sessionID == "" {
		return ErrMissingSessionID
	}
	return bus.Publish(FormatSessionScopedTopic(baseTopic, sessionID), msg)
}

// FormatSessionScopedTopic formats a topic with the session suffix.
func FormatSessionScopedTopic(baseTopic, sessionID string) string {
	return fmt.Sprintf("%s.%s", baseTopic, sessionID)
}
