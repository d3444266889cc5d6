// Package handlerwrapper adapts typed, transport-agnostic handlers to
// watermill handler functions.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Metadata keys understood by the wrapper.
const (
	MetadataTopic   = "topic"
	MetadataReplyTo = "reply_to"
)

type contextKey string

const (
	// CtxKeyReplyTo holds the reply subject of a request/reply message.
	CtxKeyReplyTo contextKey = "reply_to"
	// CtxKeyCorrelationID holds the correlation id of the incoming message.
	CtxKeyCorrelationID contextKey = "correlation_id"
)

// ErrNoTopic is returned when a result has neither a topic nor a reply subject.
var ErrNoTopic = errors.New("result has no topic")

// Result is one outgoing event produced by a handler.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// ReturningMetrics records handler level metrics. A nil value disables them.
type ReturningMetrics interface {
	RecordHandlerAttempt(ctx context.Context, handlerName string)
	RecordHandlerSuccess(ctx context.Context, handlerName string)
	RecordHandlerFailure(ctx context.Context, handlerName string)
	RecordHandlerDuration(ctx context.Context, handlerName string, duration time.Duration)
}

// CorrelationID returns the correlation id stored by WrapTransformingTyped.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(CtxKeyCorrelationID).(string)
	return id
}

// WrapTransformingTyped decodes the JSON payload into T, calls handler and
// encodes its results as messages. Each outgoing message carries its topic
// in the "topic" metadata key and inherits the correlation id.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics ReturningMetrics,
	handler func(context.Context, *T) ([]Result, error),
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		correlationID := middleware.MessageCorrelationID(msg)

		ctx, span := tracer.Start(msg.Context(), handlerName, trace.WithAttributes(
			attribute.String("message_id", msg.UUID),
			attribute.String("correlation_id", correlationID),
		))
		defer span.End()

		ctx = context.WithValue(ctx, CtxKeyCorrelationID, correlationID)
		replyTo := msg.Metadata.Get(MetadataReplyTo)
		if replyTo != "" {
			ctx = context.WithValue(ctx, CtxKeyReplyTo, replyTo)
		}

		if metrics != nil {
			metrics.RecordHandlerAttempt(ctx, handlerName)
			start := time.Now()
			defer func() { metrics.RecordHandlerDuration(ctx, handlerName, time.Since(start)) }()
		}
		fail := func(err error) ([]*message.Message, error) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if metrics != nil {
				metrics.RecordHandlerFailure(ctx, handlerName)
			}
			logger.ErrorContext(ctx, "Handler failed",
				slog.String("handler", handlerName),
				slog.String("message_id", msg.UUID),
				slog.String("correlation_id", correlationID),
				slog.String("error", err.Error()),
			)
			return nil, err
		}

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			return fail(fmt.Errorf("failed to unmarshal payload: %w", err))
		}

		results, err := handler(ctx, payload)
		if err != nil {
			return fail(err)
		}

		out := make([]*message.Message, 0, len(results))
		for _, r := range results {
			m, err := toMessage(r, replyTo, correlationID)
			if err != nil {
				return fail(fmt.Errorf("%s: %w", handlerName, err))
			}
			out = append(out, m)
		}

		if metrics != nil {
			metrics.RecordHandlerSuccess(ctx, handlerName)
		}
		logger.InfoContext(ctx, handlerName+" completed",
			slog.String("correlation_id", correlationID),
			slog.Int("results", len(out)),
		)
		return out, nil
	}
}

func toMessage(r Result, replyTo, correlationID string) (*message.Message, error) {
	topic := r.Topic
	if topic == "" {
		topic = replyTo
	}
	if topic == "" {
		return nil, ErrNoTopic
	}

	body, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for %s: %w", topic, err)
	}

	m := message.NewMessage(watermill.NewUUID(), body)
	for k, v := range r.Metadata {
		m.Metadata.Set(k, v)
	}
	m.Metadata.Set(MetadataTopic, topic)
	if correlationID != "" {
		middleware.SetCorrelationID(correlationID, m)
	}
	return m, nil
}
