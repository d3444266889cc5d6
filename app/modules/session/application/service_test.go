package sessionservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"

	sessionmetrics "github.com/courtside-club/courtside/app/metrics/session"
	"github.com/courtside-club/courtside/app/modules/session/domain/scheduler"
	sessiondb "github.com/courtside-club/courtside/app/modules/session/infrastructure/repositories"
	sessionutil "github.com/courtside-club/courtside/app/modules/session/utils"
)

var sessionStart = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

const testSessionID = "s1"

func newTestService(repo sessiondb.Repository, finisher FinishScheduler) *SessionService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewSessionService(repo, scheduler.Options{}, finisher, logger, sessionmetrics.NewNoop(), noop.NewTracerProvider().Tracer("test"), nil)
	svc.clock = &sessionutil.FakeClock{NowFn: func() time.Time { return sessionStart }}
	return svc
}

func ptr[T any](v T) *T { return &v }

// seedSession creates a two hour session with 15 minute rounds.
func seedSession(t *testing.T, svc *SessionService, players, courts int) {
	t.Helper()
	req := CreateSessionRequest{
		SessionID:    testSessionID,
		Name:         "Thursday club night",
		Start:        sessionStart,
		End:          sessionStart.Add(2 * time.Hour),
		RoundMinutes: 15,
	}
	for i := 1; i <= players; i++ {
		req.Players = append(req.Players, PlayerInput{
			PlayerID:    fmt.Sprintf("p%02d", i),
			DisplayName: fmt.Sprintf("Player %d", i),
			Rating:      ptr(float64(50 + i)),
			Active:      true,
		})
	}
	for i := 1; i <= courts; i++ {
		req.Courts = append(req.Courts, CourtRequest{CourtID: fmt.Sprintf("c%d", i), CourtName: fmt.Sprintf("Court %d", i)})
	}
	res, err := svc.CreateSession(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res.Success, "seed failed: %v", res.Failure)
}

func generate(t *testing.T, svc *SessionService) *scheduler.SessionSchedule {
	t.Helper()
	res, err := svc.GenerateSchedule(context.Background(), testSessionID)
	require.NoError(t, err)
	require.NotNil(t, res.Success, "generate failed: %v", res.Failure)
	return *res.Success
}

func requireFailure(t *testing.T, failure *error, want error) {
	t.Helper()
	require.NotNil(t, failure, "expected failure %v", want)
	require.ErrorIs(t, *failure, want)
}

func roundPlayers(plan scheduler.RoundPlan) map[string]bool {
	return plan.Assigned()
}

func TestSessionService_CreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("stores roster, attendance and courts", func(t *testing.T) {
		repo := NewFakeSessionRepo()
		finisher := NewFakeFinishScheduler()
		svc := newTestService(repo, finisher)

		seedSession(t, svc, 8, 2)

		players, _ := repo.GetPlayers(ctx, nil, testSessionID)
		require.Len(t, players, 8)
		require.NotNil(t, players[0].Rating)
		assert.InDelta(t, 0.51, *players[0].Rating, 1e-9, "ratings above 10 are read as percentages")

		attendance, _ := repo.GetAttendance(ctx, nil, testSessionID)
		require.Len(t, attendance, 8)
		assert.Equal(t, sessionStart, attendance[3].ArriveAt)
		assert.Equal(t, sessionStart.Add(2*time.Hour), attendance[3].LeaveAt)

		courts, _ := repo.GetCourts(ctx, nil, testSessionID)
		require.Len(t, courts, 2)
		assert.Equal(t, 1, courts[1].Position)

		assert.Equal(t, sessionStart.Add(2*time.Hour), finisher.Calls()[testSessionID])
	})

	tests := []struct {
		name    string
		mutate  func(*CreateSessionRequest)
		wantErr error
	}{
		{
			name:    "blank name",
			mutate:  func(r *CreateSessionRequest) { r.Name = "  " },
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "end before start",
			mutate:  func(r *CreateSessionRequest) { r.End = r.Start.Add(-time.Hour) },
			wantErr: scheduler.ErrInvalidSession,
		},
		{
			name:    "zero round length",
			mutate:  func(r *CreateSessionRequest) { r.RoundMinutes = 0 },
			wantErr: scheduler.ErrInvalidSession,
		},
		{
			name: "duplicate player",
			mutate: func(r *CreateSessionRequest) {
				r.Players = append(r.Players, PlayerInput{PlayerID: "ana", Active: true})
			},
			wantErr: scheduler.ErrInvalidRoster,
		},
		{
			name: "court outside session",
			mutate: func(r *CreateSessionRequest) {
				r.Courts = []CourtRequest{{CourtID: "c1", CourtName: "Court 1", Start: r.Start.Add(-time.Hour)}}
			},
			wantErr: ErrInvalidCourt,
		},
		{
			name: "duplicate court",
			mutate: func(r *CreateSessionRequest) {
				r.Courts = append(r.Courts, CourtRequest{CourtID: "c1", CourtName: "Again"})
			},
			wantErr: ErrInvalidCourt,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeSessionRepo()
			finisher := NewFakeFinishScheduler()
			svc := newTestService(repo, finisher)

			req := CreateSessionRequest{
				SessionID:    "s2",
				Name:         "Open play",
				Start:        sessionStart,
				End:          sessionStart.Add(time.Hour),
				RoundMinutes: 20,
				Players:      []PlayerInput{{PlayerID: "ana", Active: true}},
				Courts:       []CourtRequest{{CourtID: "c1", CourtName: "Court 1"}},
			}
			tt.mutate(&req)

			res, err := svc.CreateSession(ctx, req)
			require.NoError(t, err)
			requireFailure(t, res.Failure, tt.wantErr)
			assert.Empty(t, finisher.Calls())
		})
	}

	t.Run("existing session", func(t *testing.T) {
		svc := newTestService(NewFakeSessionRepo(), nil)
		seedSession(t, svc, 4, 1)

		res, err := svc.CreateSession(ctx, CreateSessionRequest{
			SessionID:    testSessionID,
			Name:         "Again",
			Start:        sessionStart,
			End:          sessionStart.Add(time.Hour),
			RoundMinutes: 15,
		})
		require.NoError(t, err)
		requireFailure(t, res.Failure, ErrSessionExists)
		assert.Equal(t, "SESSION_EXISTS", ErrorCode(*res.Failure))
	})
}

func TestSessionService_GenerateSchedule(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeSessionRepo()
	finisher := NewFakeFinishScheduler()
	svc := newTestService(repo, finisher)
	seedSession(t, svc, 8, 2)

	sched := generate(t, svc)

	require.Len(t, sched.Rounds, 8)
	assert.Equal(t, int64(1), sched.Version)
	assert.Equal(t, int64(1), repo.StoredVersion(testSessionID))
	for _, r := range sched.Rounds {
		assert.Len(t, r.Assignments, 2, "round %d", r.Index)
		assert.Empty(t, r.Resting)
	}
	assert.Equal(t, sched.Rounds[7].End, finisher.Calls()[testSessionID])

	again := generate(t, svc)
	assert.Equal(t, int64(2), again.Version)

	stored, err := svc.GetSchedule(ctx, testSessionID)
	require.NoError(t, err)
	require.NotNil(t, stored.Success)
	assert.Equal(t, int64(2), (*stored.Success).Version)
	assert.Equal(t, again.Rounds[3].Assignments[0].ID, (*stored.Success).Rounds[3].Assignments[0].ID)
}

func TestSessionService_GenerateSchedule_Failures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func(t *testing.T, svc *SessionService)
		wantErr error
	}{
		{
			name:    "unknown session",
			setup:   func(t *testing.T, svc *SessionService) {},
			wantErr: ErrSessionNotFound,
		},
		{
			name:    "too few players",
			setup:   func(t *testing.T, svc *SessionService) { seedSession(t, svc, 3, 1) },
			wantErr: scheduler.ErrInsufficientPlayers,
		},
		{
			name:    "no courts",
			setup:   func(t *testing.T, svc *SessionService) { seedSession(t, svc, 8, 0) },
			wantErr: scheduler.ErrNoCourtsAvailable,
		},
		{
			name: "finished session",
			setup: func(t *testing.T, svc *SessionService) {
				seedSession(t, svc, 8, 2)
				res, err := svc.FinishSession(context.Background(), testSessionID)
				require.NoError(t, err)
				require.True(t, res.IsSuccess())
			},
			wantErr: ErrSessionFinished,
		},
		{
			name: "locked rounds",
			setup: func(t *testing.T, svc *SessionService) {
				seedSession(t, svc, 8, 2)
				sched := generate(t, svc)
				res, err := svc.RecordScore(context.Background(), testSessionID, sched.Rounds[0].Assignments[0].ID, 21, 17)
				require.NoError(t, err)
				require.True(t, res.IsSuccess())
			},
			wantErr: ErrScheduleLocked,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(NewFakeSessionRepo(), nil)
			tt.setup(t, svc)

			res, err := svc.GenerateSchedule(ctx, testSessionID)
			require.NoError(t, err)
			requireFailure(t, res.Failure, tt.wantErr)
		})
	}
}

func TestSessionService_RegenerateRemaining(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a schedule", func(t *testing.T) {
		svc := newTestService(NewFakeSessionRepo(), nil)
		seedSession(t, svc, 8, 2)

		res, err := svc.RegenerateRemaining(ctx, testSessionID)
		require.NoError(t, err)
		requireFailure(t, res.Failure, ErrNoSchedule)
	})

	t.Run("keeps scored rounds", func(t *testing.T) {
		svc := newTestService(NewFakeSessionRepo(), nil)
		seedSession(t, svc, 10, 2)
		sched := generate(t, svc)
		scored := sched.Rounds[1].Assignments[1]

		_, err := svc.RecordScore(ctx, testSessionID, scored.ID, 15, 21)
		require.NoError(t, err)

		res, err := svc.RegenerateRemaining(ctx, testSessionID)
		require.NoError(t, err)
		require.True(t, res.IsSuccess())
		got := *res.Success
		assert.Equal(t, int64(3), got.Version)
		assert.Equal(t, scheduler.RoundLocked, got.Rounds[1].Status())
		kept, ok := got.FindAssignment(scored.ID)
		require.True(t, ok)
		assert.Equal(t, &scheduler.Score{TeamA: 15, TeamB: 21}, kept.Score)
	})
}

func TestSessionService_VersionConflict(t *testing.T) {
	repo := NewFakeSessionRepo()
	svc := newTestService(repo, nil)
	seedSession(t, svc, 8, 2)
	generate(t, svc)

	repo.SaveScheduleFunc = func(ctx context.Context, db bun.IDB, schedule *sessiondb.Schedule, expectedVersion int64) (int64, error) {
		return 0, sessiondb.ErrVersionConflict
	}

	res, err := svc.RegenerateRemaining(context.Background(), testSessionID)
	require.NoError(t, err)
	requireFailure(t, res.Failure, ErrConcurrentModification)
	assert.Equal(t, "CONCURRENT_MODIFICATION", ErrorCode(*res.Failure))
	assert.Equal(t, int64(1), repo.StoredVersion(testSessionID))
}

func TestSessionService_InfrastructureErrors(t *testing.T) {
	ctx := context.Background()
	dbDown := errors.New("connection refused")

	t.Run("load failure is returned as error", func(t *testing.T) {
		repo := NewFakeSessionRepo()
		svc := newTestService(repo, nil)
		seedSession(t, svc, 8, 2)
		repo.GetScheduleFunc = func(ctx context.Context, db bun.IDB, sessionID string) (*sessiondb.Schedule, error) {
			return nil, dbDown
		}

		res, err := svc.GenerateSchedule(ctx, testSessionID)
		require.ErrorIs(t, err, dbDown)
		assert.Nil(t, res.Success)
		assert.Nil(t, res.Failure)
	})

	t.Run("save failure is returned as error", func(t *testing.T) {
		repo := NewFakeSessionRepo()
		svc := newTestService(repo, nil)
		seedSession(t, svc, 8, 2)
		repo.SaveScheduleFunc = func(ctx context.Context, db bun.IDB, schedule *sessiondb.Schedule, expectedVersion int64) (int64, error) {
			return 0, dbDown
		}

		_, err := svc.GenerateSchedule(ctx, testSessionID)
		require.ErrorIs(t, err, dbDown)
		assert.Contains(t, err.Error(), "GenerateSchedule")
	})
}

func TestSessionService_ManualEdits(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewFakeSessionRepo(), nil)
	seedSession(t, svc, 8, 2)
	sched := generate(t, svc)

	freed := sched.Rounds[0].Assignments[1]
	require.Equal(t, "c2", freed.CourtID)

	res, err := svc.DeleteAssignment(ctx, testSessionID, freed.ID)
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	round0 := (*res.Success).Rounds[0]
	assert.Len(t, round0.Assignments, 1)
	assert.ElementsMatch(t, freed.Players(), round0.Resting)

	// The freed players are busy nowhere else in round 0, so a manual match fits.
	res, err = svc.InsertManualMatch(ctx, testSessionID, ManualMatchRequest{
		RoundIndex: 0,
		CourtID:    "c2",
		TeamA:      [2]string{freed.TeamA[0], freed.TeamB[0]},
		TeamB:      [2]string{freed.TeamA[1], freed.TeamB[1]},
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess(), "insert failed: %v", res.Failure)
	round0 = (*res.Success).Rounds[0]
	assert.Equal(t, scheduler.RoundLocked, round0.Status())
	assert.Empty(t, round0.Resting)

	busy := sched.Rounds[0].Assignments[0]
	res, err = svc.InsertManualMatch(ctx, testSessionID, ManualMatchRequest{
		RoundIndex: 0,
		CourtID:    "c2",
		TeamA:      [2]string{busy.TeamA[0], busy.TeamA[1]},
		TeamB:      [2]string{busy.TeamB[0], busy.TeamB[1]},
	})
	require.NoError(t, err)
	require.True(t, res.IsFailure())
	assert.NotEmpty(t, ErrorCode(*res.Failure))
	assert.NotEqual(t, "INTERNAL", ErrorCode(*res.Failure))

	target := sched.Rounds[2].Assignments[0]
	res, err = svc.DeleteRound(ctx, testSessionID, 2)
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	assert.Empty(t, (*res.Success).Rounds[2].Assignments)
	assert.Len(t, (*res.Success).Rounds[2].Resting, 8)
	_, found := (*res.Success).FindAssignment(target.ID)
	assert.False(t, found)

	res, err = svc.DeleteRound(ctx, testSessionID, 99)
	require.NoError(t, err)
	requireFailure(t, res.Failure, scheduler.ErrRoundNotFound)
}

func TestSessionService_SwapPlayer(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewFakeSessionRepo(), nil)
	seedSession(t, svc, 9, 2)
	sched := generate(t, svc)

	round := sched.Rounds[0]
	require.Len(t, round.Resting, 1)
	target := round.Assignments[0]
	in := round.Resting[0]

	res, err := svc.SwapPlayer(ctx, testSessionID, SwapRequest{
		RoundIndex:   0,
		AssignmentID: target.ID,
		PlayerOut:    target.TeamA[0],
		PlayerIn:     in,
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess(), "swap failed: %v", res.Failure)
	swapped, ok := (*res.Success).FindAssignment(target.ID)
	require.True(t, ok)
	assert.Equal(t, in, swapped.TeamA[0])
	assert.Equal(t, []string{target.TeamA[0]}, (*res.Success).Rounds[0].Resting)

	res, err = svc.SwapPlayer(ctx, testSessionID, SwapRequest{
		RoundIndex:   0,
		AssignmentID: target.ID,
		PlayerOut:    "nobody",
		PlayerIn:     target.TeamA[0],
	})
	require.NoError(t, err)
	requireFailure(t, res.Failure, scheduler.ErrPlayerNotInAssignment)
}

func TestSessionService_RecordScore(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewFakeSessionRepo(), nil)
	seedSession(t, svc, 8, 2)
	sched := generate(t, svc)
	match := sched.Rounds[0].Assignments[0]

	res, err := svc.RecordScore(ctx, testSessionID, match.ID, 21, 18)
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	assert.Equal(t, scheduler.RoundLocked, (*res.Success).Rounds[0].Status())

	res, err = svc.RecordScore(ctx, testSessionID, "missing", 21, 18)
	require.NoError(t, err)
	requireFailure(t, res.Failure, scheduler.ErrAssignmentNotFound)

	res, err = svc.RecordScore(ctx, testSessionID, match.ID, -1, 21)
	require.NoError(t, err)
	requireFailure(t, res.Failure, scheduler.ErrInvalidScore)

	summary, err := svc.GetSummary(ctx, testSessionID)
	require.NoError(t, err)
	require.True(t, summary.IsSuccess())
	assert.Equal(t, 1, (*summary.Success).ScoredMatches)
	assert.Equal(t, testSessionID, (*summary.Success).SessionID)
	top := (*summary.Success).Players[0]
	assert.Contains(t, match.TeamA[:], top.PlayerID)
	assert.Equal(t, 1, top.Wins)
}

func TestSessionService_ConcurrentScores(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeSessionRepo()
	svc := newTestService(repo, nil)
	seedSession(t, svc, 8, 2)
	sched := generate(t, svc)

	var wg sync.WaitGroup
	failures := make(chan error, len(sched.Rounds))
	for _, r := range sched.Rounds {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			res, err := svc.RecordScore(ctx, testSessionID, id, 21, 10)
			if err != nil {
				failures <- err
				return
			}
			if res.IsFailure() {
				failures <- *res.Failure
			}
		}(r.Assignments[0].ID)
	}
	wg.Wait()
	close(failures)

	for err := range failures {
		t.Errorf("concurrent score failed: %v", err)
	}
	assert.Equal(t, int64(1+len(sched.Rounds)), repo.StoredVersion(testSessionID))
	assert.Zero(t, svc.locks.size())
}

func TestSessionService_RecordArrival(t *testing.T) {
	ctx := context.Background()

	t.Run("late player joins open rounds", func(t *testing.T) {
		repo := NewFakeSessionRepo()
		svc := newTestService(repo, nil)
		seedSession(t, svc, 8, 2)
		generate(t, svc)

		res, err := svc.RecordArrival(ctx, ArrivalRequest{
			SessionID:   testSessionID,
			PlayerID:    "p09",
			DisplayName: "Late Lou",
			Rating:      ptr(7.0),
			ArriveAt:    "in 30 minutes",
			RequestedAt: sessionStart,
		})
		require.NoError(t, err)
		require.True(t, res.IsSuccess(), "arrival failed: %v", res.Failure)
		got := *res.Success
		assert.Equal(t, int64(2), got.Version)

		for _, r := range got.Rounds[:2] {
			assert.False(t, roundPlayers(r)["p09"], "round %d starts before arrival", r.Index)
			assert.NotContains(t, r.Resting, "p09")
		}
		assert.True(t, roundPlayers(got.Rounds[2])["p09"], "fewest games plays first after arriving")

		attendance, _ := repo.GetAttendance(ctx, nil, testSessionID)
		require.Len(t, attendance, 9)
		assert.Equal(t, sessionStart.Add(30*time.Minute), attendance[8].ArriveAt)
		assert.Equal(t, sessionStart.Add(2*time.Hour), attendance[8].LeaveAt)

		players, _ := repo.GetPlayers(ctx, nil, testSessionID)
		require.Len(t, players, 9)
		assert.Equal(t, "Late Lou", players[8].DisplayName)
		assert.InDelta(t, 2.0/3.0, *players[8].Rating, 1e-9)
	})

	t.Run("without schedule only stores attendance", func(t *testing.T) {
		repo := NewFakeSessionRepo()
		svc := newTestService(repo, nil)
		seedSession(t, svc, 4, 1)

		res, err := svc.RecordArrival(ctx, ArrivalRequest{SessionID: testSessionID, PlayerID: "p05", RequestedAt: sessionStart.Add(10 * time.Minute)})
		require.NoError(t, err)
		require.True(t, res.IsSuccess())
		assert.Nil(t, *res.Success)
		assert.NotContains(t, repo.Trace(), "SaveSchedule")

		attendance, _ := repo.GetAttendance(ctx, nil, testSessionID)
		require.Len(t, attendance, 5)
		assert.Equal(t, sessionStart.Add(10*time.Minute), attendance[4].ArriveAt)
	})

	tests := []struct {
		name    string
		req     ArrivalRequest
		wantErr error
	}{
		{
			name:    "missing player id",
			req:     ArrivalRequest{SessionID: testSessionID},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "unparseable time",
			req:     ArrivalRequest{SessionID: testSessionID, PlayerID: "p01", ArriveAt: "banana"},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "leave before arrival",
			req:     ArrivalRequest{SessionID: testSessionID, PlayerID: "p01", ArriveAt: "730pm", LeaveAt: "7pm"},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "unknown session",
			req:     ArrivalRequest{SessionID: "nope", PlayerID: "p01"},
			wantErr: ErrSessionNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(NewFakeSessionRepo(), nil)
			seedSession(t, svc, 4, 1)

			res, err := svc.RecordArrival(ctx, tt.req)
			require.NoError(t, err)
			requireFailure(t, res.Failure, tt.wantErr)
		})
	}
}

func TestSessionService_RecordDeparture(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeSessionRepo()
	svc := newTestService(repo, nil)
	seedSession(t, svc, 9, 2)
	generate(t, svc)

	res, err := svc.RecordDeparture(ctx, DepartureRequest{
		SessionID: testSessionID,
		PlayerID:  "p01",
		LeaveAt:   sessionStart.Add(time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess(), "departure failed: %v", res.Failure)
	for _, r := range (*res.Success).Rounds {
		if !r.Start.Before(sessionStart.Add(time.Hour)) {
			assert.False(t, roundPlayers(r)["p01"], "round %d is after departure", r.Index)
			assert.NotContains(t, r.Resting, "p01")
		}
	}

	attendance, _ := repo.GetAttendance(ctx, nil, testSessionID)
	assert.Equal(t, sessionStart.Add(time.Hour), attendance[0].LeaveAt)
	assert.Equal(t, sessionStart, attendance[0].ArriveAt)

	res, err = svc.RecordDeparture(ctx, DepartureRequest{SessionID: testSessionID, PlayerID: "ghost"})
	require.NoError(t, err)
	requireFailure(t, res.Failure, scheduler.ErrPlayerUnavailable)
}

func TestSessionService_AddCourt(t *testing.T) {
	ctx := context.Background()

	t.Run("new court is used by open rounds", func(t *testing.T) {
		repo := NewFakeSessionRepo()
		svc := newTestService(repo, nil)
		seedSession(t, svc, 12, 2)
		generate(t, svc)

		res, err := svc.AddCourt(ctx, testSessionID, CourtRequest{
			CourtID:   "c3",
			CourtName: "Court 3",
			Start:     sessionStart.Add(time.Hour),
		})
		require.NoError(t, err)
		require.True(t, res.IsSuccess(), "add court failed: %v", res.Failure)
		for _, r := range (*res.Success).Rounds {
			want := 2
			if !r.Start.Before(sessionStart.Add(time.Hour)) {
				want = 3
			}
			assert.Len(t, r.Assignments, want, "round %d", r.Index)
		}

		courts, _ := repo.GetCourts(ctx, nil, testSessionID)
		require.Len(t, courts, 3)
		assert.Equal(t, 2, courts[2].Position)
		assert.Contains(t, repo.Trace(), "GetSessionForUpdate")
	})

	tests := []struct {
		name  string
		court CourtRequest
	}{
		{name: "blank name", court: CourtRequest{CourtID: "c9"}},
		{name: "outside window", court: CourtRequest{CourtID: "c9", CourtName: "Late", End: sessionStart.Add(3 * time.Hour)}},
		{name: "empty window", court: CourtRequest{CourtID: "c9", CourtName: "Odd", Start: sessionStart.Add(time.Hour), End: sessionStart.Add(time.Hour)}},
		{name: "duplicate id", court: CourtRequest{CourtID: "c1", CourtName: "Court 1 again"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeSessionRepo()
			svc := newTestService(repo, nil)
			seedSession(t, svc, 8, 1)

			res, err := svc.AddCourt(ctx, testSessionID, tt.court)
			require.NoError(t, err)
			requireFailure(t, res.Failure, ErrInvalidCourt)
			courts, _ := repo.GetCourts(ctx, nil, testSessionID)
			assert.Len(t, courts, 1)
		})
	}
}

func TestSessionService_ImportRoster(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeSessionRepo()
	svc := newTestService(repo, nil)
	seedSession(t, svc, 4, 1)

	csv := "player_id,name,rating,arrive\np02,Bea,9,\np05,Cal,4,730pm\n"
	res, err := svc.ImportRoster(ctx, ImportRosterRequest{
		SessionID:   testSessionID,
		FileName:    "roster.csv",
		Data:        []byte(csv),
		RequestedAt: sessionStart.Add(-30 * time.Minute),
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess(), "import failed: %v", res.Failure)
	assert.Equal(t, &SessionInfo{SessionID: testSessionID, Players: 2, Courts: 1}, *res.Success)

	players, _ := repo.GetPlayers(ctx, nil, testSessionID)
	require.Len(t, players, 5)
	assert.Equal(t, "Bea", players[1].DisplayName)
	assert.InDelta(t, 8.0/9.0, *players[1].Rating, 1e-9, "ratings up to 10 use the ten point scale")

	attendance, _ := repo.GetAttendance(ctx, nil, testSessionID)
	require.Len(t, attendance, 5)
	assert.Equal(t, sessionStart.Add(90*time.Minute), attendance[4].ArriveAt)

	res, err = svc.ImportRoster(ctx, ImportRosterRequest{SessionID: testSessionID, FileName: "roster.pdf", Data: []byte("x")})
	require.NoError(t, err)
	requireFailure(t, res.Failure, ErrInvalidRequest)
}

func TestSessionService_FinishSession(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeSessionRepo()
	finisher := NewFakeFinishScheduler()
	svc := newTestService(repo, finisher)
	seedSession(t, svc, 8, 2)
	sched := generate(t, svc)

	_, err := svc.RecordScore(ctx, testSessionID, sched.Rounds[0].Assignments[0].ID, 21, 12)
	require.NoError(t, err)

	res, err := svc.FinishSession(ctx, testSessionID)
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	finished := *res.Success
	assert.Equal(t, sessionStart, finished.FinishedAt)
	assert.Equal(t, 1, finished.Summary.ScoredMatches)
	assert.Len(t, finished.Summary.Players, 8)
	assert.Equal(t, []string{testSessionID}, finisher.Cancelled())

	again, err := svc.FinishSession(ctx, testSessionID)
	require.NoError(t, err)
	requireFailure(t, again.Failure, ErrSessionFinished)

	edit, err := svc.RecordScore(ctx, testSessionID, sched.Rounds[1].Assignments[0].ID, 21, 12)
	require.NoError(t, err)
	requireFailure(t, edit.Failure, ErrSessionFinished)

	missing, err := svc.FinishSession(ctx, "nope")
	require.NoError(t, err)
	requireFailure(t, missing.Failure, ErrSessionNotFound)
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{scheduler.ErrPlayerConflict, "PLAYER_CONFLICT"},
		{fmt.Errorf("wrap: %w", scheduler.ErrInsufficientPlayers), "INSUFFICIENT_PLAYERS"},
		{ErrConcurrentModification, "CONCURRENT_MODIFICATION"},
		{fmt.Errorf("%w: s1", ErrSessionNotFound), "SESSION_NOT_FOUND"},
		{ErrScheduleLocked, "SCHEDULE_LOCKED"},
		{errors.New("disk full"), "INTERNAL"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorCode(tt.err), "%v", tt.err)
	}

	assert.True(t, isDomainError(ErrNoSchedule))
	assert.False(t, isDomainError(scheduler.ErrInvariantViolation))
	assert.False(t, isDomainError(errors.New("disk full")))
}

func TestSessionLocks(t *testing.T) {
	locks := newSessionLocks()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("s1")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Zero(t, locks.size())

	unlockA := locks.lock("a")
	unlockB := locks.lock("b")
	assert.Equal(t, 2, locks.size())
	unlockA()
	unlockB()
	assert.Zero(t, locks.size())
}
