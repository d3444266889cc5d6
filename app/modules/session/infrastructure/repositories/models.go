package sessiondb

import (
	"time"

	"github.com/uptrace/bun"
)

// Session is a scheduled play session.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID           string     `bun:"id,pk" json:"id"`
	Name         string     `bun:"name,notnull" json:"name"`
	StartTime    time.Time  `bun:"start_time,notnull" json:"start_time"`
	EndTime      time.Time  `bun:"end_time,notnull" json:"end_time"`
	RoundMinutes int        `bun:"round_minutes,notnull" json:"round_minutes"`
	FinishedAt   *time.Time `bun:"finished_at,nullzero" json:"finished_at,omitempty"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// Finished reports whether the session has been closed.
func (s *Session) Finished() bool {
	return s != nil && s.FinishedAt != nil
}

// Player is a roster entry of a session. Rating is stored normalized.
type Player struct {
	bun.BaseModel `bun:"table:session_players,alias:sp"`

	SessionID   string   `bun:"session_id,pk" json:"session_id"`
	PlayerID    string   `bun:"player_id,pk" json:"player_id"`
	DisplayName string   `bun:"display_name,notnull" json:"display_name"`
	Rating      *float64 `bun:"rating" json:"rating,omitempty"`
	Active      bool     `bun:"active,notnull,default:true" json:"active"`
}

// Attendance is the arrival window of a player. Rows are never deleted;
// departures shorten LeaveAt.
type Attendance struct {
	bun.BaseModel `bun:"table:session_attendance,alias:sa"`

	SessionID string    `bun:"session_id,pk" json:"session_id"`
	PlayerID  string    `bun:"player_id,pk" json:"player_id"`
	ArriveAt  time.Time `bun:"arrive_at,notnull" json:"arrive_at"`
	LeaveAt   time.Time `bun:"leave_at,notnull" json:"leave_at"`
}

// Court is a court available to a session. Position keeps creation order.
type Court struct {
	bun.BaseModel `bun:"table:session_courts,alias:sc"`

	ID        string    `bun:"id,pk" json:"id"`
	SessionID string    `bun:"session_id,notnull" json:"session_id"`
	CourtName string    `bun:"court_name,notnull" json:"court_name"`
	StartTime time.Time `bun:"start_time,notnull" json:"start_time"`
	EndTime   time.Time `bun:"end_time,notnull" json:"end_time"`
	Position  int       `bun:"position,notnull" json:"position"`
}

// Schedule is the persisted schedule of a session. Version is bumped on
// every save and guards concurrent writers.
type Schedule struct {
	bun.BaseModel `bun:"table:session_schedules,alias:ss"`

	SessionID string        `bun:"session_id,pk" json:"session_id"`
	Version   int64         `bun:"version,notnull" json:"version"`
	Rounds    []RoundRecord `bun:"rounds,type:jsonb,notnull" json:"rounds"`
	UpdatedAt time.Time     `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// RoundRecord is the JSON form of a round plan inside Schedule.Rounds.
type RoundRecord struct {
	Index       int                `json:"round_index"`
	StartTime   time.Time          `json:"start_time"`
	EndTime     time.Time          `json:"end_time"`
	Assignments []AssignmentRecord `json:"assignments"`
	Resting     []string           `json:"resting"`
}

// AssignmentRecord is the JSON form of one assignment.
type AssignmentRecord struct {
	ID         string    `json:"id"`
	CourtID    string    `json:"court_id"`
	TeamA      [2]string `json:"team_a"`
	TeamB      [2]string `json:"team_b"`
	TeamAScore *int      `json:"team_a_score,omitempty"`
	TeamBScore *int      `json:"team_b_score,omitempty"`
	Manual     bool      `json:"manual"`
	Locked     bool      `json:"locked"`
}
