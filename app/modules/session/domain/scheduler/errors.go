package scheduler

import "errors"

// Schedule construction failures.
var (
	ErrInvalidSession      = errors.New("invalid session window")
	ErrInsufficientPlayers = errors.New("insufficient players")
	ErrNoCourtsAvailable   = errors.New("no courts available")
	ErrScheduleMissing     = errors.New("schedule missing")
)

// Manual edit failures. These never leave a partially updated schedule.
var (
	ErrInvalidRoster         = errors.New("invalid roster")
	ErrPlayerConflict        = errors.New("player already assigned in round")
	ErrCourtConflict         = errors.New("court already occupied in round")
	ErrCourtUnavailable      = errors.New("court not available for round")
	ErrPlayerNotInAssignment = errors.New("player not in assignment")
	ErrPlayerUnavailable     = errors.New("player unavailable")
	ErrRoundNotFound         = errors.New("round not found")
	ErrNoAvailableRound      = errors.New("no round can host the match")
	ErrAssignmentNotFound    = errors.New("assignment not found")
	ErrAssignmentScored      = errors.New("assignment already scored")
	ErrInvalidScore          = errors.New("invalid score")
	ErrInvariantViolation    = errors.New("schedule invariant violated")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrInvalidSession, "INVALID_SESSION"},
	{ErrInsufficientPlayers, "INSUFFICIENT_PLAYERS"},
	{ErrNoCourtsAvailable, "NO_COURTS_AVAILABLE"},
	{ErrScheduleMissing, "SCHEDULE_MISSING"},
	{ErrInvalidRoster, "INVALID_ROSTER"},
	{ErrPlayerConflict, "PLAYER_CONFLICT"},
	{ErrCourtConflict, "COURT_CONFLICT"},
	{ErrCourtUnavailable, "COURT_UNAVAILABLE"},
	{ErrPlayerNotInAssignment, "PLAYER_NOT_IN_ASSIGNMENT"},
	{ErrPlayerUnavailable, "PLAYER_UNAVAILABLE"},
	{ErrRoundNotFound, "ROUND_NOT_FOUND"},
	{ErrNoAvailableRound, "NO_AVAILABLE_ROUND"},
	{ErrAssignmentNotFound, "ASSIGNMENT_NOT_FOUND"},
	{ErrAssignmentScored, "ASSIGNMENT_SCORED"},
	{ErrInvalidScore, "INVALID_SCORE"},
	{ErrInvariantViolation, "INVARIANT_VIOLATION"},
}

// Code maps a scheduler error to a stable wire code. Unknown errors
// yield an empty string.
func Code(err error) string {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return ""
}
