package sessionevents

import "time"

// SessionRequestPayloadV1 addresses a whole session. It is used by the
// generate, regenerate, finish, summary and retrieve requests.
type SessionRequestPayloadV1 struct {
	SessionID string `json:"sessionId"`
}

// PlayerPayloadV1 is a roster entry supplied when creating a session.
// Rating is raw; RatingScale is "percent", "ten" or "unit" and is detected
// from the roster when empty.
type PlayerPayloadV1 struct {
	PlayerID    string   `json:"playerId"`
	DisplayName string   `json:"displayName"`
	Rating      *float64 `json:"rating,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}

// CourtPayloadV1 describes a court. Missing times default to the session window.
type CourtPayloadV1 struct {
	CourtID   string     `json:"courtId,omitempty"`
	CourtName string     `json:"courtName"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}

// SessionCreateRequestedPayloadV1 creates a session with its roster and courts.
// Every player attends the full window until an arrival says otherwise.
type SessionCreateRequestedPayloadV1 struct {
	SessionID    string            `json:"sessionId,omitempty"`
	Name         string            `json:"name"`
	StartTime    time.Time         `json:"startTime"`
	EndTime      time.Time         `json:"endTime"`
	RoundMinutes int               `json:"roundMinutes"`
	RatingScale  string            `json:"ratingScale,omitempty"`
	Players      []PlayerPayloadV1 `json:"players"`
	Courts       []CourtPayloadV1  `json:"courts"`
}

// SessionCreatedPayloadV1 confirms a created session.
type SessionCreatedPayloadV1 struct {
	SessionID string `json:"sessionId"`
	Players   int    `json:"players"`
	Courts    int    `json:"courts"`
}

// RosterImportRequestedPayloadV1 uploads a CSV or XLSX roster.
type RosterImportRequestedPayloadV1 struct {
	SessionID   string    `json:"sessionId"`
	FileName    string    `json:"fileName"`
	FileData    []byte    `json:"fileData"`
	RatingScale string    `json:"ratingScale,omitempty"`
	RequestedAt time.Time `json:"requestedAt,omitempty"`
}

// ManualMatchRequestedPayloadV1 inserts a hand-picked match. A nil
// RoundIndex selects the next round that can host it.
type ManualMatchRequestedPayloadV1 struct {
	SessionID  string    `json:"sessionId"`
	RoundIndex *int      `json:"roundIndex,omitempty"`
	CourtID    string    `json:"courtId"`
	TeamA      [2]string `json:"teamA"`
	TeamB      [2]string `json:"teamB"`
}

// ManualSwapRequestedPayloadV1 replaces one player of an assignment.
type ManualSwapRequestedPayloadV1 struct {
	SessionID    string `json:"sessionId"`
	RoundIndex   int    `json:"roundIndex"`
	AssignmentID string `json:"assignmentId"`
	PlayerOut    string `json:"playerOut"`
	PlayerIn     string `json:"playerIn"`
}

// ScoreRequestedPayloadV1 records a match result.
type ScoreRequestedPayloadV1 struct {
	SessionID    string     `json:"sessionId"`
	AssignmentID string     `json:"assignmentId"`
	TeamAScore   ScoreValue `json:"teamAScore"`
	TeamBScore   ScoreValue `json:"teamBScore"`
}

// AssignmentDeleteRequestedPayloadV1 removes one match.
type AssignmentDeleteRequestedPayloadV1 struct {
	SessionID    string `json:"sessionId"`
	AssignmentID string `json:"assignmentId"`
}

// RoundDeleteRequestedPayloadV1 clears every match of a round.
type RoundDeleteRequestedPayloadV1 struct {
	SessionID  string `json:"sessionId"`
	RoundIndex int    `json:"roundIndex"`
}

// PlayerArrivedPayloadV1 reports a late arrival. ArriveAt and LeaveAt accept
// RFC3339 or natural language resolved against RequestedAt. An unknown
// player is added to the roster with DisplayName and Rating.
type PlayerArrivedPayloadV1 struct {
	SessionID   string    `json:"sessionId"`
	PlayerID    string    `json:"playerId"`
	DisplayName string    `json:"displayName,omitempty"`
	Rating      *float64  `json:"rating,omitempty"`
	ArriveAt    string    `json:"arriveAt,omitempty"`
	LeaveAt     string    `json:"leaveAt,omitempty"`
	Timezone    string    `json:"timezone,omitempty"`
	RequestedAt time.Time `json:"requestedAt,omitempty"`
}

// PlayerDepartedPayloadV1 reports a player leaving. An empty LeaveAt means now.
type PlayerDepartedPayloadV1 struct {
	SessionID   string    `json:"sessionId"`
	PlayerID    string    `json:"playerId"`
	LeaveAt     string    `json:"leaveAt,omitempty"`
	Timezone    string    `json:"timezone,omitempty"`
	RequestedAt time.Time `json:"requestedAt,omitempty"`
}

// CourtAddRequestedPayloadV1 adds a court mid-session.
type CourtAddRequestedPayloadV1 struct {
	SessionID string `json:"sessionId"`
	CourtPayloadV1
}

// ScoreV1 is a recorded result.
type ScoreV1 struct {
	TeamAScore int `json:"teamAScore"`
	TeamBScore int `json:"teamBScore"`
}

// RoundAssignmentV1 is one court's match. Resting repeats the round's
// resting players for clients that render per assignment.
type RoundAssignmentV1 struct {
	ID      string    `json:"id"`
	CourtID string    `json:"courtId"`
	TeamA   [2]string `json:"teamA"`
	TeamB   [2]string `json:"teamB"`
	Resting []string  `json:"resting"`
	Score   *ScoreV1  `json:"score,omitempty"`
	Manual  bool      `json:"manual"`
	Locked  bool      `json:"locked"`
}

// RoundPlanV1 is one round of the schedule.
type RoundPlanV1 struct {
	RoundIndex  int                 `json:"roundIndex"`
	StartTime   time.Time           `json:"startTime"`
	EndTime     time.Time           `json:"endTime"`
	Status      string              `json:"status"`
	Assignments []RoundAssignmentV1 `json:"assignments"`
	Resting     []string            `json:"resting"`
}

// SessionScheduleV1 is the persisted and returned schedule shape.
type SessionScheduleV1 struct {
	SessionID string        `json:"sessionId"`
	Version   int64         `json:"version"`
	Rounds    []RoundPlanV1 `json:"rounds"`
}

// ScheduleUpdatedPayloadV1 carries the schedule after a successful operation.
type ScheduleUpdatedPayloadV1 struct {
	Operation string            `json:"operation"`
	Schedule  SessionScheduleV1 `json:"schedule"`
}

// ScheduleFailedPayloadV1 reports a rejected request.
type ScheduleFailedPayloadV1 struct {
	SessionID string `json:"sessionId"`
	Operation string `json:"operation"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// PlayerStandingV1 is one row of the summary.
type PlayerStandingV1 struct {
	PlayerID      string `json:"playerId"`
	Name          string `json:"name"`
	Games         int    `json:"games"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	PointsFor     int    `json:"pointsFor"`
	PointsAgainst int    `json:"pointsAgainst"`
}

// TeamStandingV1 is one partnership of the summary.
type TeamStandingV1 struct {
	PlayerIDs     [2]string `json:"playerIds"`
	PlayerNames   [2]string `json:"playerNames"`
	Games         int       `json:"games"`
	Wins          int       `json:"wins"`
	PointsFor     int       `json:"pointsFor"`
	PointsAgainst int       `json:"pointsAgainst"`
}

// SessionSummaryPayloadV1 is the end-of-session report.
type SessionSummaryPayloadV1 struct {
	SessionID     string             `json:"sessionId"`
	ScoredMatches int                `json:"scoredMatches"`
	Players       []PlayerStandingV1 `json:"players"`
	TopTeams      []TeamStandingV1   `json:"topTeams"`
}

// SessionFinishedPayloadV1 announces a closed session.
type SessionFinishedPayloadV1 struct {
	SessionID  string                  `json:"sessionId"`
	FinishedAt time.Time               `json:"finishedAt"`
	Summary    SessionSummaryPayloadV1 `json:"summary"`
}
