package sessionhandlers

import (
	"context"

	sessionservice "github.com/courtside-club/courtside/app/modules/session/application"
	"github.com/courtside-club/courtside/app/modules/session/domain/scheduler"
	"github.com/courtside-club/courtside/pkg/results"
)

// ------------------------
// Fake Session Service
// ------------------------

type FakeSessionService struct {
	trace []string

	CreateSessionFunc       func(ctx context.Context, req sessionservice.CreateSessionRequest) (results.OperationResult[*sessionservice.SessionInfo, error], error)
	ImportRosterFunc        func(ctx context.Context, req sessionservice.ImportRosterRequest) (results.OperationResult[*sessionservice.SessionInfo, error], error)
	GenerateScheduleFunc    func(ctx context.Context, sessionID string) (sessionservice.ScheduleResult, error)
	RegenerateRemainingFunc func(ctx context.Context, sessionID string) (sessionservice.ScheduleResult, error)
	InsertManualMatchFunc   func(ctx context.Context, sessionID string, req sessionservice.ManualMatchRequest) (sessionservice.ScheduleResult, error)
	SwapPlayerFunc          func(ctx context.Context, sessionID string, req sessionservice.SwapRequest) (sessionservice.ScheduleResult, error)
	RecordScoreFunc         func(ctx context.Context, sessionID, assignmentID string, teamA, teamB int) (sessionservice.ScheduleResult, error)
	DeleteAssignmentFunc    func(ctx context.Context, sessionID, assignmentID string) (sessionservice.ScheduleResult, error)
	DeleteRoundFunc         func(ctx context.Context, sessionID string, roundIndex int) (sessionservice.ScheduleResult, error)
	RecordArrivalFunc       func(ctx context.Context, req sessionservice.ArrivalRequest) (sessionservice.ScheduleResult, error)
	RecordDepartureFunc     func(ctx context.Context, req sessionservice.DepartureRequest) (sessionservice.ScheduleResult, error)
	AddCourtFunc            func(ctx context.Context, sessionID string, court sessionservice.CourtRequest) (sessionservice.ScheduleResult, error)
	FinishSessionFunc       func(ctx context.Context, sessionID string) (results.OperationResult[*sessionservice.FinishedSession, error], error)
	GetScheduleFunc         func(ctx context.Context, sessionID string) (sessionservice.ScheduleResult, error)
	GetSummaryFunc          func(ctx context.Context, sessionID string) (results.OperationResult[*scheduler.Summary, error], error)
}

func NewFakeSessionService() *FakeSessionService {
	return &FakeSessionService{
		trace: []string{},
	}
}

func (f *FakeSessionService) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Service Interface Implementation ---

func (f *FakeSessionService) CreateSession(ctx context.Context, req sessionservice.CreateSessionRequest) (results.OperationResult[*sessionservice.SessionInfo, error], error) {
	f.record("CreateSession")
	if f.CreateSessionFunc != nil {
		return f.CreateSessionFunc(ctx, req)
	}
	return results.OperationResult[*sessionservice.SessionInfo, error]{}, nil
}

func (f *FakeSessionService) ImportRoster(ctx context.Context, req sessionservice.ImportRosterRequest) (results.OperationResult[*sessionservice.SessionInfo, error], error) {
	f.record("ImportRoster")
	if f.ImportRosterFunc != nil {
		return f.ImportRosterFunc(ctx, req)
	}
	return results.OperationResult[*sessionservice.SessionInfo, error]{}, nil
}

func (f *FakeSessionService) GenerateSchedule(ctx context.Context, sessionID string) (sessionservice.ScheduleResult, error) {
	f.record("GenerateSchedule")
	if f.GenerateScheduleFunc != nil {
		return f.GenerateScheduleFunc(ctx, sessionID)
	}
	return sessionservice.ScheduleResult{}, nil
}

func (f *FakeSessionService) RegenerateRemaining(ctx context.Context, sessionID string) (sessionservice.ScheduleResult, error) {
	f.record("RegenerateRemaining")
	if f.RegenerateRemainingFunc != nil {
		return f.RegenerateRemainingFunc(ctx, sessionID)
	}
	return sessionservice.ScheduleResult{}, nil
}

func (f *FakeSessionService) InsertManualMatch(ctx context.Context, sessionID string, req sessionservice.ManualMatchRequest) (sessionservice.ScheduleResult, error) {
	f.record("InsertManualMatch")
	if f.InsertManualMatchFunc != nil {
		return f.InsertManualMatchFunc(ctx, sessionID, req)
	}
	return sessionservice.ScheduleResult{}, nil
}

func (f *FakeSessionService) SwapPlayer(ctx context.Context, sessionID string, req sessionservice.SwapRequest) (sessionservice.ScheduleResult, error) {
	f.record("SwapPlayer")
	if f.SwapPlayerFunc != nil {
		return f.SwapPlayerFunc(ctx, sessionID, req)
	}
	return sessionservice.ScheduleResult{}, nil
}

func (f *FakeSessionService) RecordScore(ctx context.Context, sessionID, assignmentID string, teamA, teamB int) (sessionservice.ScheduleResult, error) {
	f.record("RecordScore")
	if f.RecordScoreFunc != nil {
		return f.RecordScoreFunc(ctx, sessionID, assignmentID, teamA, teamB)
	}
	return sessionservice.ScheduleResult{}, nil
}

func (f *FakeSessionService) DeleteAssignment(ctx context.Context, sessionID, assignmentID string) (sessionservice.ScheduleResult, error) {
	f.record("DeleteAssignment")
	if f.DeleteAssignmentFunc != nil {
		return f.DeleteAssignmentFunc(ctx, sessionID, assignmentID)
	}
	return sessionservice.ScheduleResult{}, nil
}

func (f *FakeSessionService) DeleteRound(ctx context.Context, sessionID string, roundIndex int) (sessionservice.ScheduleResult, error) {
	f.record("DeleteRound")
	if f.DeleteRoundFunc != nil {
		return f.DeleteRoundFunc(ctx, sessionID, roundIndex)
	}
	return sessionservice.ScheduleResult{}, nil
}

func (f *FakeSessionService) RecordArrival(ctx context.Context, req sessionservice.ArrivalRequest) (sessionservice.ScheduleResult, error) {
	f.record("RecordArrival")
	if f.RecordArrivalFunc != nil {
		return f.RecordArrivalFunc(ctx, req)
	}
	return sessionservice.ScheduleResult{}, nil
}

func (f *FakeSessionService) RecordDeparture(ctx context.Context, req sessionservice.DepartureRequest) (sessionservice.ScheduleResult, error) {
	f.record("RecordDeparture")
	if f.RecordDepartureFunc != nil {
		return f.RecordDepartureFunc(ctx, req)
	}
	return sessionservice.ScheduleResult{}, nil
}

func (f *FakeSessionService) AddCourt(ctx context.Context, sessionID string, court sessionservice.CourtRequest) (sessionservice.ScheduleResult, error) {
	f.record("AddCourt")
	if f.AddCourtFunc != nil {
		return f.AddCourtFunc(ctx, sessionID, court)
	}
	return sessionservice.ScheduleResult{}, nil
}

func (f *FakeSessionService) FinishSession(ctx context.Context, sessionID string) (results.OperationResult[*sessionservice.FinishedSession, error], error) {
	f.record("FinishSession")
	if f.FinishSessionFunc != nil {
		return f.FinishSessionFunc(ctx, sessionID)
	}
	return results.OperationResult[*sessionservice.FinishedSession, error]{}, nil
}

func (f *FakeSessionService) GetSchedule(ctx context.Context, sessionID string) (sessionservice.ScheduleResult, error) {
	f.record("GetSchedule")
	if f.GetScheduleFunc != nil {
		return f.GetScheduleFunc(ctx, sessionID)
	}
	return sessionservice.ScheduleResult{}, nil
}

func (f *FakeSessionService) GetSummary(ctx context.Context, sessionID string) (results.OperationResult[*scheduler.Summary, error], error) {
	f.record("GetSummary")
	if f.GetSummaryFunc != nil {
		return f.GetSummaryFunc(ctx, sessionID)
	}
	return results.OperationResult[*scheduler.Summary, error]{}, nil
}

// --- Accessors for assertions ---

func (f *FakeSessionService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ sessionservice.Service = (*FakeSessionService)(nil)
