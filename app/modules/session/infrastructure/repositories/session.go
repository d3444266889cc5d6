package sessiondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new session repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// CreateSession inserts a new session row.
func (r *Impl) CreateSession(ctx context.Context, db bun.IDB, session *Session) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(session).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create session %s: %w", session.ID, err)
	}
	return nil
}

// GetSession retrieves a session by id.
func (r *Impl) GetSession(ctx context.Context, db bun.IDB, sessionID string) (*Session, error) {
	return r.getSession(ctx, r.resolveDB(db), sessionID, false)
}

// GetSessionForUpdate retrieves a session and holds a row lock on it.
func (r *Impl) GetSessionForUpdate(ctx context.Context, db bun.IDB, sessionID string) (*Session, error) {
	return r.getSession(ctx, r.resolveDB(db), sessionID, true)
}

func (r *Impl) getSession(ctx context.Context, db bun.IDB, sessionID string, forUpdate bool) (*Session, error) {
	session := new(Session)
	q := db.NewSelect().
		Model(session).
		Where("id = ?", sessionID)
	if forUpdate {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}
	return session, nil
}

// MarkFinished sets finished_at on a session that is not finished yet.
func (r *Impl) MarkFinished(ctx context.Context, db bun.IDB, sessionID string, at time.Time) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Session)(nil)).
		Set("finished_at = ?", at).
		Where("id = ?", sessionID).
		Where("finished_at IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to finish session %s: %w", sessionID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// UpsertPlayers creates or updates roster entries.
func (r *Impl) UpsertPlayers(ctx context.Context, db bun.IDB, players []Player) error {
	if len(players) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(&players).
		On("CONFLICT (session_id, player_id) DO UPDATE").
		Set("display_name = EXCLUDED.display_name").
		Set("rating = EXCLUDED.rating").
		Set("active = EXCLUDED.active").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert session players: %w", err)
	}
	return nil
}

// GetPlayers returns the roster ordered by player id.
func (r *Impl) GetPlayers(ctx context.Context, db bun.IDB, sessionID string) ([]Player, error) {
	db = r.resolveDB(db)
	var players []Player
	err := db.NewSelect().
		Model(&players).
		Where("session_id = ?", sessionID).
		Order("player_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get players for session %s: %w", sessionID, err)
	}
	return players, nil
}

// UpsertAttendance creates or replaces the attendance window of a player.
func (r *Impl) UpsertAttendance(ctx context.Context, db bun.IDB, attendance *Attendance) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(attendance).
		On("CONFLICT (session_id, player_id) DO UPDATE").
		Set("arrive_at = EXCLUDED.arrive_at").
		Set("leave_at = EXCLUDED.leave_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert attendance for player %s: %w", attendance.PlayerID, err)
	}
	return nil
}

// GetAttendance returns attendance rows ordered by player id.
func (r *Impl) GetAttendance(ctx context.Context, db bun.IDB, sessionID string) ([]Attendance, error) {
	db = r.resolveDB(db)
	var rows []Attendance
	err := db.NewSelect().
		Model(&rows).
		Where("session_id = ?", sessionID).
		Order("player_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance for session %s: %w", sessionID, err)
	}
	return rows, nil
}

// AddCourt appends a court after the existing ones.
func (r *Impl) AddCourt(ctx context.Context, db bun.IDB, court *Court) error {
	db = r.resolveDB(db)
	var next int
	err := db.NewSelect().
		Model((*Court)(nil)).
		ColumnExpr("COALESCE(MAX(position), -1) + 1").
		Where("session_id = ?", court.SessionID).
		Scan(ctx, &next)
	if err != nil {
		return fmt.Errorf("failed to compute court position: %w", err)
	}
	court.Position = next
	if _, err := db.NewInsert().Model(court).Exec(ctx); err != nil {
		return fmt.Errorf("failed to add court %s: %w", court.ID, err)
	}
	return nil
}

// GetCourts returns courts in creation order.
func (r *Impl) GetCourts(ctx context.Context, db bun.IDB, sessionID string) ([]Court, error) {
	db = r.resolveDB(db)
	var courts []Court
	err := db.NewSelect().
		Model(&courts).
		Where("session_id = ?", sessionID).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get courts for session %s: %w", sessionID, err)
	}
	return courts, nil
}

// GetSchedule returns the stored schedule or ErrNotFound.
func (r *Impl) GetSchedule(ctx context.Context, db bun.IDB, sessionID string) (*Schedule, error) {
	db = r.resolveDB(db)
	schedule := new(Schedule)
	err := db.NewSelect().
		Model(schedule).
		Where("session_id = ?", sessionID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get schedule for session %s: %w", sessionID, err)
	}
	return schedule, nil
}

// SaveSchedule performs a compare-and-swap on the schedule version.
func (r *Impl) SaveSchedule(ctx context.Context, db bun.IDB, schedule *Schedule, expectedVersion int64) (int64, error) {
	db = r.resolveDB(db)
	next := expectedVersion + 1
	schedule.Version = next
	schedule.UpdatedAt = time.Now().UTC()

	var (
		res sql.Result
		err error
	)
	if expectedVersion == 0 {
		res, err = db.NewInsert().
			Model(schedule).
			On("CONFLICT (session_id) DO NOTHING").
			Exec(ctx)
	} else {
		res, err = db.NewUpdate().
			Model(schedule).
			Column("version", "rounds", "updated_at").
			Where("session_id = ?", schedule.SessionID).
			Where("version = ?", expectedVersion).
			Exec(ctx)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to save schedule for session %s: %w", schedule.SessionID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return 0, ErrVersionConflict
	}
	return next, nil
}
