// Package sessionevents defines the topics and payloads of the session
// scheduler's event contract.
package sessionevents

// Request topics consumed by the session module.
const (
	SessionCreateRequestedV1      = "session.create.requested.v1"
	RosterImportRequestedV1       = "session.roster.import.requested.v1"
	ScheduleGenerateRequestedV1   = "session.schedule.generate.requested.v1"
	ScheduleRegenerateRequestedV1 = "session.schedule.regenerate.requested.v1"
	ManualMatchRequestedV1        = "session.manual_match.requested.v1"
	ManualSwapRequestedV1         = "session.manual_swap.requested.v1"
	ScoreRequestedV1              = "session.score.requested.v1"
	AssignmentDeleteRequestedV1   = "session.assignment.delete.requested.v1"
	RoundDeleteRequestedV1        = "session.round.delete.requested.v1"
	PlayerArrivedV1               = "session.player.arrived.v1"
	PlayerDepartedV1              = "session.player.departed.v1"
	CourtAddRequestedV1           = "session.court.add.requested.v1"
	SessionFinishRequestedV1      = "session.finish.requested.v1"
	SessionSummaryRequestedV1     = "session.summary.requested.v1"
	ScheduleRetrieveRequestedV1   = "session.schedule.retrieve.requested.v1"
)

// Response topics. They are published with a ".{sessionId}" suffix.
const (
	SessionCreatedV1  = "session.created.v1"
	ScheduleUpdatedV1 = "session.schedule.updated.v1"
	ScheduleFailedV1  = "session.schedule.failed.v1"
	SessionSummaryV1  = "session.summary.v1"
	SessionFinishedV1 = "session.finished.v1"
)

// Operation names carried in ScheduleUpdatedPayloadV1 and ScheduleFailedPayloadV1.
const (
	OperationCreateSession    = "create-session"
	OperationImportRoster     = "import-roster"
	OperationGenerate         = "generate-schedule"
	OperationRegenerate       = "regenerate-remaining"
	OperationManualMatch      = "manual-match"
	OperationManualSwap       = "manual-swap"
	OperationScore            = "score"
	OperationDeleteAssignment = "delete-assignment"
	OperationDeleteRound      = "delete-round"
	OperationPlayerArrived    = "player-arrived"
	OperationPlayerDeparted   = "player-departed"
	OperationAddCourt         = "add-court"
	OperationFinish           = "finish-session"
	OperationSummary          = "summary"
	OperationRetrieve         = "get-schedule"
)
