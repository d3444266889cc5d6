package sessiondb

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Repository persists sessions and their schedules.
// Every method takes a bun.IDB so callers can run it inside a transaction;
// a nil db falls back to the repository's own handle.
type Repository interface {
	CreateSession(ctx context.Context, db bun.IDB, session *Session) error
	GetSession(ctx context.Context, db bun.IDB, sessionID string) (*Session, error)
	// GetSessionForUpdate locks the session row for the rest of the transaction.
	GetSessionForUpdate(ctx context.Context, db bun.IDB, sessionID string) (*Session, error)
	MarkFinished(ctx context.Context, db bun.IDB, sessionID string, at time.Time) error

	UpsertPlayers(ctx context.Context, db bun.IDB, players []Player) error
	GetPlayers(ctx context.Context, db bun.IDB, sessionID string) ([]Player, error)

	UpsertAttendance(ctx context.Context, db bun.IDB, attendance *Attendance) error
	GetAttendance(ctx context.Context, db bun.IDB, sessionID string) ([]Attendance, error)

	// AddCourt assigns the next position and inserts the court.
	AddCourt(ctx context.Context, db bun.IDB, court *Court) error
	GetCourts(ctx context.Context, db bun.IDB, sessionID string) ([]Court, error)

	GetSchedule(ctx context.Context, db bun.IDB, sessionID string) (*Schedule, error)
	// SaveSchedule writes the schedule if the stored version still equals
	// expectedVersion (0 means no schedule stored yet) and returns the new version.
	SaveSchedule(ctx context.Context, db bun.IDB, schedule *Schedule, expectedVersion int64) (int64, error)
}
