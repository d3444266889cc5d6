package sessionhandlers

import (
	"context"

	sessionevents "github.com/courtside-club/courtside/app/modules/session/events"
	"github.com/courtside-club/courtside/pkg/handlerwrapper"
)

// Handlers defines the interface for session event handlers.
type Handlers interface {
	// Session setup
	HandleSessionCreateRequested(ctx context.Context, payload *sessionevents.SessionCreateRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleRosterImportRequested(ctx context.Context, payload *sessionevents.RosterImportRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// Schedule generation
	HandleScheduleGenerateRequested(ctx context.Context, payload *sessionevents.SessionRequestPayloadV1) ([]handlerwrapper.Result, error)
	HandleScheduleRegenerateRequested(ctx context.Context, payload *sessionevents.SessionRequestPayloadV1) ([]handlerwrapper.Result, error)
	HandleScheduleRetrieveRequested(ctx context.Context, payload *sessionevents.SessionRequestPayloadV1) ([]handlerwrapper.Result, error)

	// Manual edits
	HandleManualMatchRequested(ctx context.Context, payload *sessionevents.ManualMatchRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleManualSwapRequested(ctx context.Context, payload *sessionevents.ManualSwapRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleScoreRequested(ctx context.Context, payload *sessionevents.ScoreRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleAssignmentDeleteRequested(ctx context.Context, payload *sessionevents.AssignmentDeleteRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleRoundDeleteRequested(ctx context.Context, payload *sessionevents.RoundDeleteRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// Attendance and courts
	HandlePlayerArrived(ctx context.Context, payload *sessionevents.PlayerArrivedPayloadV1) ([]handlerwrapper.Result, error)
	HandlePlayerDeparted(ctx context.Context, payload *sessionevents.PlayerDepartedPayloadV1) ([]handlerwrapper.Result, error)
	HandleCourtAddRequested(ctx context.Context, payload *sessionevents.CourtAddRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// Session end
	HandleSessionFinishRequested(ctx context.Context, payload *sessionevents.SessionRequestPayloadV1) ([]handlerwrapper.Result, error)
	HandleSessionSummaryRequested(ctx context.Context, payload *sessionevents.SessionRequestPayloadV1) ([]handlerwrapper.Result, error)
}
