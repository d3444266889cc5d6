//go:build integration

package watermillutil

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/courtside-club/courtside/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPubSub_RoundTripAndStream(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, url, err := testutils.SetupNatsContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	cfg := Config{
		URL:            url,
		QueueGroup:     "courtside-test",
		StreamName:     "SESSION",
		StreamSubjects: []string{"session.>"},
		StreamMaxAge:   time.Hour,
	}
	ps, err := NewPubSub(ctx, cfg, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ps.Close() })
	require.NoError(t, ps.Healthy())

	const topic = "session.schedule.updated.v1.s1"
	messages, err := ps.Subscribe(ctx, topic)
	require.NoError(t, err)

	out := message.NewMessage(watermill.NewUUID(), []byte(`{"sessionId":"s1"}`))
	out.Metadata.Set("correlation_id", "corr-9")
	require.NoError(t, ps.Publish(topic, out))

	select {
	case got := <-messages:
		got.Ack()
		assert.Equal(t, out.UUID, got.UUID)
		assert.Equal(t, "corr-9", got.Metadata.Get("correlation_id"))
		assert.JSONEq(t, `{"sessionId":"s1"}`, string(got.Payload))
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}

	stream, err := ps.JetStream().Stream(ctx, "SESSION")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		info, err := stream.Info(ctx)
		return err == nil && info.State.Msgs >= 1
	}, 10*time.Second, 100*time.Millisecond)
}
