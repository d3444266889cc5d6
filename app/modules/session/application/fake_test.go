package sessionservice

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/uptrace/bun"

	sessiondb "github.com/courtside-club/courtside/app/modules/session/infrastructure/repositories"
)

// ------------------------
// Fake Session Repo
// ------------------------

// FakeSessionRepo keeps rows in memory. Any XxxFunc set overrides the
// in-memory behaviour of that method.
type FakeSessionRepo struct {
	mu    sync.Mutex
	trace []string

	sessions   map[string]*sessiondb.Session
	players    map[string][]sessiondb.Player
	attendance map[string][]sessiondb.Attendance
	courts     map[string][]sessiondb.Court
	schedules  map[string]*sessiondb.Schedule

	GetSessionFunc   func(ctx context.Context, db bun.IDB, sessionID string) (*sessiondb.Session, error)
	SaveScheduleFunc func(ctx context.Context, db bun.IDB, schedule *sessiondb.Schedule, expectedVersion int64) (int64, error)
	GetScheduleFunc  func(ctx context.Context, db bun.IDB, sessionID string) (*sessiondb.Schedule, error)
	AddCourtFunc     func(ctx context.Context, db bun.IDB, court *sessiondb.Court) error
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		trace:      []string{},
		sessions:   make(map[string]*sessiondb.Session),
		players:    make(map[string][]sessiondb.Player),
		attendance: make(map[string][]sessiondb.Attendance),
		courts:     make(map[string][]sessiondb.Court),
		schedules:  make(map[string]*sessiondb.Schedule),
	}
}

func (f *FakeSessionRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeSessionRepo) CreateSession(ctx context.Context, db bun.IDB, session *sessiondb.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateSession")
	cp := *session
	f.sessions[session.ID] = &cp
	return nil
}

func (f *FakeSessionRepo) GetSession(ctx context.Context, db bun.IDB, sessionID string) (*sessiondb.Session, error) {
	f.mu.Lock()
	f.record("GetSession")
	fn := f.GetSessionFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, db, sessionID)
	}
	return f.getSession(sessionID)
}

func (f *FakeSessionRepo) GetSessionForUpdate(ctx context.Context, db bun.IDB, sessionID string) (*sessiondb.Session, error) {
	f.mu.Lock()
	f.record("GetSessionForUpdate")
	f.mu.Unlock()
	return f.getSession(sessionID)
}

func (f *FakeSessionRepo) getSession(sessionID string) (*sessiondb.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, sessiondb.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *FakeSessionRepo) MarkFinished(ctx context.Context, db bun.IDB, sessionID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("MarkFinished")
	s, ok := f.sessions[sessionID]
	if !ok || s.FinishedAt != nil {
		return sessiondb.ErrNoRowsAffected
	}
	s.FinishedAt = &at
	return nil
}

func (f *FakeSessionRepo) UpsertPlayers(ctx context.Context, db bun.IDB, players []sessiondb.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertPlayers")
	for _, p := range players {
		rows := f.players[p.SessionID]
		i := slices.IndexFunc(rows, func(r sessiondb.Player) bool { return r.PlayerID == p.PlayerID })
		if i >= 0 {
			rows[i] = p
		} else {
			rows = append(rows, p)
		}
		slices.SortFunc(rows, func(a, b sessiondb.Player) int { return strings.Compare(a.PlayerID, b.PlayerID) })
		f.players[p.SessionID] = rows
	}
	return nil
}

func (f *FakeSessionRepo) GetPlayers(ctx context.Context, db bun.IDB, sessionID string) ([]sessiondb.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetPlayers")
	return slices.Clone(f.players[sessionID]), nil
}

func (f *FakeSessionRepo) UpsertAttendance(ctx context.Context, db bun.IDB, a *sessiondb.Attendance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertAttendance")
	rows := f.attendance[a.SessionID]
	i := slices.IndexFunc(rows, func(r sessiondb.Attendance) bool { return r.PlayerID == a.PlayerID })
	if i >= 0 {
		rows[i] = *a
	} else {
		rows = append(rows, *a)
	}
	slices.SortFunc(rows, func(x, y sessiondb.Attendance) int { return strings.Compare(x.PlayerID, y.PlayerID) })
	f.attendance[a.SessionID] = rows
	return nil
}

func (f *FakeSessionRepo) GetAttendance(ctx context.Context, db bun.IDB, sessionID string) ([]sessiondb.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetAttendance")
	return slices.Clone(f.attendance[sessionID]), nil
}

func (f *FakeSessionRepo) AddCourt(ctx context.Context, db bun.IDB, court *sessiondb.Court) error {
	f.mu.Lock()
	f.record("AddCourt")
	fn := f.AddCourtFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, db, court)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	court.Position = len(f.courts[court.SessionID])
	f.courts[court.SessionID] = append(f.courts[court.SessionID], *court)
	return nil
}

func (f *FakeSessionRepo) GetCourts(ctx context.Context, db bun.IDB, sessionID string) ([]sessiondb.Court, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetCourts")
	return slices.Clone(f.courts[sessionID]), nil
}

func (f *FakeSessionRepo) GetSchedule(ctx context.Context, db bun.IDB, sessionID string) (*sessiondb.Schedule, error) {
	f.mu.Lock()
	f.record("GetSchedule")
	fn := f.GetScheduleFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, db, sessionID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.schedules[sessionID]
	if !ok {
		return nil, sessiondb.ErrNotFound
	}
	cp := *row
	cp.Rounds = slices.Clone(row.Rounds)
	return &cp, nil
}

func (f *FakeSessionRepo) SaveSchedule(ctx context.Context, db bun.IDB, schedule *sessiondb.Schedule, expectedVersion int64) (int64, error) {
	f.mu.Lock()
	f.record("SaveSchedule")
	fn := f.SaveScheduleFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, db, schedule, expectedVersion)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var current int64
	if row, ok := f.schedules[schedule.SessionID]; ok {
		current = row.Version
	}
	if current != expectedVersion {
		return 0, sessiondb.ErrVersionConflict
	}
	cp := *schedule
	cp.Version = expectedVersion + 1
	f.schedules[schedule.SessionID] = &cp
	return cp.Version, nil
}

// --- Accessors for assertions ---

func (f *FakeSessionRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeSessionRepo) StoredVersion(sessionID string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.schedules[sessionID]; ok {
		return row.Version
	}
	return 0
}

// Ensure the fake actually satisfies the interface
var _ sessiondb.Repository = (*FakeSessionRepo)(nil)

// ------------------------
// Fake Finish Scheduler
// ------------------------

type FakeFinishScheduler struct {
	mu        sync.Mutex
	calls     map[string]time.Time
	cancelled []string
	err       error
}

func NewFakeFinishScheduler() *FakeFinishScheduler {
	return &FakeFinishScheduler{calls: make(map[string]time.Time)}
}

func (f *FakeFinishScheduler) ScheduleSessionFinish(ctx context.Context, sessionID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[sessionID] = at
	return f.err
}

func (f *FakeFinishScheduler) CancelSessionJobs(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, sessionID)
	return f.err
}

func (f *FakeFinishScheduler) Cancelled() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cancelled...)
}

func (f *FakeFinishScheduler) Calls() map[string]time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]time.Time, len(f.calls))
	for k, v := range f.calls {
		out[k] = v
	}
	return out
}

var _ FinishScheduler = (*FakeFinishScheduler)(nil)
