package sessionservice

import (
	"errors"

	"github.com/courtside-club/courtside/app/modules/session/domain/scheduler"
)

// Domain errors for the session service. Handlers treat them as normal
// outcomes (publish a failure event, ack the message) rather than retrying.
var (
	// ErrConcurrentModification indicates the schedule changed since it was loaded.
	// The caller should reload and retry.
	ErrConcurrentModification = errors.New("schedule modified concurrently")

	// ErrSessionNotFound indicates the session does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists indicates a session with the same id already exists.
	ErrSessionExists = errors.New("session already exists")

	// ErrSessionFinished indicates the session no longer accepts changes.
	ErrSessionFinished = errors.New("session already finished")

	// ErrNoSchedule indicates the operation needs a generated schedule.
	ErrNoSchedule = errors.New("session has no schedule")

	// ErrScheduleLocked indicates a full generation would discard locked rounds.
	ErrScheduleLocked = errors.New("schedule has locked rounds; regenerate instead")

	// ErrInvalidCourt indicates a court window outside the session or an empty name.
	ErrInvalidCourt = errors.New("invalid court")

	// ErrInvalidRequest indicates malformed input such as an unparseable time.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrRateLimited indicates too many generate or regenerate requests for one session.
	ErrRateLimited = errors.New("too many requests for session")
)

var serviceCodes = []struct {
	err  error
	code string
}{
	{ErrConcurrentModification, "CONCURRENT_MODIFICATION"},
	{ErrSessionNotFound, "SESSION_NOT_FOUND"},
	{ErrSessionExists, "SESSION_EXISTS"},
	{ErrSessionFinished, "SESSION_FINISHED"},
	{ErrNoSchedule, "NO_SCHEDULE"},
	{ErrScheduleLocked, "SCHEDULE_LOCKED"},
	{ErrInvalidCourt, "INVALID_COURT"},
	{ErrInvalidRequest, "INVALID_REQUEST"},
	{ErrRateLimited, "RATE_LIMITED"},
}

// ErrorCode maps an error to the stable code published in failure events.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	if code := scheduler.Code(err); code != "" {
		return code
	}
	for _, c := range serviceCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "INTERNAL"
}

// isDomainError reports whether err is a rejection rather than an
// infrastructure problem.
func isDomainError(err error) bool {
	if errors.Is(err, scheduler.ErrInvariantViolation) {
		return false
	}
	code := ErrorCode(err)
	return code != "" && code != "INTERNAL"
}
