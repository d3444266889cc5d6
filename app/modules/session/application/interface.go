package sessionservice

import (
	"context"
	"time"

	"github.com/courtside-club/courtside/app/modules/session/domain/scheduler"
	"github.com/courtside-club/courtside/pkg/results"
)

// ScheduleResult carries a persisted schedule or a domain failure.
type ScheduleResult = results.OperationResult[*scheduler.SessionSchedule, error]

// Service defines the session scheduling operations.
type Service interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (results.OperationResult[*SessionInfo, error], error)
	ImportRoster(ctx context.Context, req ImportRosterRequest) (results.OperationResult[*SessionInfo, error], error)

	GenerateSchedule(ctx context.Context, sessionID string) (ScheduleResult, error)
	RegenerateRemaining(ctx context.Context, sessionID string) (ScheduleResult, error)
	InsertManualMatch(ctx context.Context, sessionID string, req ManualMatchRequest) (ScheduleResult, error)
	SwapPlayer(ctx context.Context, sessionID string, req SwapRequest) (ScheduleResult, error)
	RecordScore(ctx context.Context, sessionID, assignmentID string, teamA, teamB int) (ScheduleResult, error)
	DeleteAssignment(ctx context.Context, sessionID, assignmentID string) (ScheduleResult, error)
	DeleteRound(ctx context.Context, sessionID string, roundIndex int) (ScheduleResult, error)

	RecordArrival(ctx context.Context, req ArrivalRequest) (ScheduleResult, error)
	RecordDeparture(ctx context.Context, req DepartureRequest) (ScheduleResult, error)
	AddCourt(ctx context.Context, sessionID string, court CourtRequest) (ScheduleResult, error)

	FinishSession(ctx context.Context, sessionID string) (results.OperationResult[*FinishedSession, error], error)
	GetSchedule(ctx context.Context, sessionID string) (ScheduleResult, error)
	GetSummary(ctx context.Context, sessionID string) (results.OperationResult[*scheduler.Summary, error], error)
}

// FinishScheduler arranges for a session to be finished at its end time.
type FinishScheduler interface {
	ScheduleSessionFinish(ctx context.Context, sessionID string, at time.Time) error
	CancelSessionJobs(ctx context.Context, sessionID string) error
}

// PlayerInput is a roster entry with a raw rating.
type PlayerInput struct {
	PlayerID    string
	DisplayName string
	Rating      *float64
	Active      bool
}

// CourtRequest describes a court. Zero times default to the session window.
type CourtRequest struct {
	CourtID   string
	CourtName string
	Start     time.Time
	End       time.Time
}

// CreateSessionRequest creates a session with roster and courts.
// An empty RatingScale is detected from the highest rating.
type CreateSessionRequest struct {
	SessionID    string
	Name         string
	Start        time.Time
	End          time.Time
	RoundMinutes int
	RatingScale  scheduler.RatingScale
	Players      []PlayerInput
	Courts       []CourtRequest
}

// ImportRosterRequest loads players from a CSV or XLSX file.
type ImportRosterRequest struct {
	SessionID   string
	FileName    string
	Data        []byte
	RatingScale scheduler.RatingScale
	RequestedAt time.Time
}

// SessionInfo summarizes a created or updated session.
type SessionInfo struct {
	SessionID string
	Players   int
	Courts    int
}

// ManualMatchRequest inserts a hand-picked match. RoundIndex may be
// scheduler.NextAvailableRound.
type ManualMatchRequest struct {
	RoundIndex int
	CourtID    string
	TeamA      [2]string
	TeamB      [2]string
}

// SwapRequest replaces PlayerOut with PlayerIn in one assignment.
type SwapRequest struct {
	RoundIndex   int
	AssignmentID string
	PlayerOut    string
	PlayerIn     string
}

// ArrivalRequest records a (late) arrival. ArriveAt and LeaveAt are client
// input resolved against RequestedAt; empty LeaveAt keeps the existing value
// or the session end.
type ArrivalRequest struct {
	SessionID   string
	PlayerID    string
	DisplayName string
	Rating      *float64
	ArriveAt    string
	LeaveAt     string
	Location    *time.Location
	RequestedAt time.Time
}

// DepartureRequest records a player leaving. Empty LeaveAt means now.
type DepartureRequest struct {
	SessionID   string
	PlayerID    string
	LeaveAt     string
	Location    *time.Location
	RequestedAt time.Time
}

// FinishedSession is returned by FinishSession.
type FinishedSession struct {
	SessionID  string
	FinishedAt time.Time
	Summary    scheduler.Summary
}
