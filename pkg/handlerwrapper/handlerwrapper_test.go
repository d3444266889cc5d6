package handlerwrapper

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type pingPayload struct {
	SessionID string `json:"sessionId"`
}

type pongPayload struct {
	SessionID string `json:"sessionId"`
	ReplyTo   string `json:"replyTo,omitempty"`
}

type recordingMetrics struct {
	mu    sync.Mutex
	calls []string
}

func (m *recordingMetrics) record(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, s)
}

func (m *recordingMetrics) RecordHandlerAttempt(context.Context, string) { m.record("attempt") }
func (m *recordingMetrics) RecordHandlerSuccess(context.Context, string) { m.record("success") }
func (m *recordingMetrics) RecordHandlerFailure(context.Context, string) { m.record("failure") }
func (m *recordingMetrics) RecordHandlerDuration(context.Context, string, time.Duration) {
	m.record("duration")
}

func newMessage(t *testing.T, v any) *message.Message {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	msg := message.NewMessage(watermill.NewUUID(), body)
	middleware.SetCorrelationID("corr-1", msg)
	return msg
}

func TestWrapTransformingTyped(t *testing.T) {
	tracer := noop.NewTracerProvider().Tracer("test")
	logger := slog.Default()

	tests := []struct {
		name        string
		msg         func(t *testing.T) *message.Message
		handler     func(ctx context.Context, p *pingPayload) ([]Result, error)
		wantErr     bool
		wantMetrics []string
		verify      func(t *testing.T, out []*message.Message)
	}{
		{
			name: "decodes payload and encodes results",
			msg:  func(t *testing.T) *message.Message { return newMessage(t, pingPayload{SessionID: "s1"}) },
			handler: func(ctx context.Context, p *pingPayload) ([]Result, error) {
				assert.Equal(t, "corr-1", CorrelationID(ctx))
				return []Result{{
					Topic:    "pong.v1." + p.SessionID,
					Payload:  pongPayload{SessionID: p.SessionID},
					Metadata: map[string]string{"session_id": p.SessionID},
				}}, nil
			},
			wantMetrics: []string{"attempt", "success", "duration"},
			verify: func(t *testing.T, out []*message.Message) {
				require.Len(t, out, 1)
				assert.Equal(t, "pong.v1.s1", out[0].Metadata.Get(MetadataTopic))
				assert.Equal(t, "s1", out[0].Metadata.Get("session_id"))
				assert.Equal(t, "corr-1", middleware.MessageCorrelationID(out[0]))
				var got pongPayload
				require.NoError(t, json.Unmarshal(out[0].Payload, &got))
				assert.Equal(t, "s1", got.SessionID)
			},
		},
		{
			name: "empty topic falls back to reply subject",
			msg: func(t *testing.T) *message.Message {
				m := newMessage(t, pingPayload{SessionID: "s2"})
				m.Metadata.Set(MetadataReplyTo, "_INBOX.abc")
				return m
			},
			handler: func(ctx context.Context, p *pingPayload) ([]Result, error) {
				rt, _ := ctx.Value(CtxKeyReplyTo).(string)
				return []Result{{Payload: pongPayload{SessionID: p.SessionID, ReplyTo: rt}}}, nil
			},
			wantMetrics: []string{"attempt", "success", "duration"},
			verify: func(t *testing.T, out []*message.Message) {
				require.Len(t, out, 1)
				assert.Equal(t, "_INBOX.abc", out[0].Metadata.Get(MetadataTopic))
			},
		},
		{
			name: "no topic and no reply subject",
			msg:  func(t *testing.T) *message.Message { return newMessage(t, pingPayload{SessionID: "s3"}) },
			handler: func(context.Context, *pingPayload) ([]Result, error) {
				return []Result{{Payload: pongPayload{}}}, nil
			},
			wantErr:     true,
			wantMetrics: []string{"attempt", "failure", "duration"},
		},
		{
			name: "malformed payload",
			msg: func(t *testing.T) *message.Message {
				return message.NewMessage(watermill.NewUUID(), []byte("{not json"))
			},
			handler: func(context.Context, *pingPayload) ([]Result, error) {
				t.Fatal("handler must not run")
				return nil, nil
			},
			wantErr:     true,
			wantMetrics: []string{"attempt", "failure", "duration"},
		},
		{
			name: "handler error propagates",
			msg:  func(t *testing.T) *message.Message { return newMessage(t, pingPayload{SessionID: "s4"}) },
			handler: func(context.Context, *pingPayload) ([]Result, error) {
				return nil, errors.New("database unavailable")
			},
			wantErr:     true,
			wantMetrics: []string{"attempt", "failure", "duration"},
		},
		{
			name: "no results",
			msg:  func(t *testing.T) *message.Message { return newMessage(t, pingPayload{SessionID: "s5"}) },
			handler: func(context.Context, *pingPayload) ([]Result, error) {
				return nil, nil
			},
			wantMetrics: []string{"attempt", "success", "duration"},
			verify: func(t *testing.T, out []*message.Message) {
				assert.Empty(t, out)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := &recordingMetrics{}
			h := WrapTransformingTyped("test.handler", logger, tracer, metrics, tt.handler)

			out, err := h(tt.msg(t))
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, out)
			} else {
				require.NoError(t, err)
				tt.verify(t, out)
			}
			assert.Equal(t, tt.wantMetrics, metrics.calls)
		})
	}
}

func TestWrapTransformingTyped_NilMetrics(t *testing.T) {
	h := WrapTransformingTyped("test.handler", slog.Default(), noop.NewTracerProvider().Tracer("test"), nil,
		func(context.Context, *pingPayload) ([]Result, error) {
			return []Result{{Topic: "t", Payload: struct{}{}}}, nil
		})
	out, err := h(newMessage(t, pingPayload{}))
	require.NoError(t, err)
	assert.Len(t, out, 1)
}
