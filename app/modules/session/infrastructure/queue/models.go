package sessionqueue

// SessionFinishJob closes a session when its window ends. The worker
// publishes a finish request; the session handlers do the rest.
type SessionFinishJob struct {
	SessionID string `json:"session_id"`
}

// Kind returns the job type identifier for River
func (SessionFinishJob) Kind() string { return "session_finish" }

// JobInfo describes a scheduled job for debugging and monitoring.
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	SessionID   string `json:"session_id"`
	State       string `json:"state"`
	ScheduledAt string `json:"scheduled_at"`
	CreatedAt   string `json:"created_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}
