package sessionmetrics

import (
	"context"
	"time"
)

// NoOpMetrics discards everything.
type NoOpMetrics struct{}

// NewNoop returns metrics that record nothing.
func NewNoop() SessionMetrics { return &NoOpMetrics{} }

func (*NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (*NoOpMetrics) RecordScheduleBuilt(context.Context, string, int, int, int)             {}
func (*NoOpMetrics) RecordVersionConflict(context.Context, string)                          {}
func (*NoOpMetrics) RecordRateLimited(context.Context, string)                              {}
func (*NoOpMetrics) RecordHandlerAttempt(context.Context, string)                           {}
func (*NoOpMetrics) RecordHandlerSuccess(context.Context, string)                           {}
func (*NoOpMetrics) RecordHandlerFailure(context.Context, string)                           {}
func (*NoOpMetrics) RecordHandlerDuration(context.Context, string, time.Duration)           {}
