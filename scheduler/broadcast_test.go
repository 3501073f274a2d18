package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/omnipost/omnipost/domains/broadcast"
	"github.com/stretchr/testify/require"
)

func seedBroadcast(t *testing.T, env *testEnv, id string, total, batchSize, intervalMinutes int) {
	t.Helper()
	recipients := make([]broadcast.Recipient, total)
	for i := range recipients {
		recipients[i] = broadcast.Recipient{
			ID:         fmt.Sprintf("%s-r%02d", id, i),
			Position:   i,
			ContactRef: fmt.Sprintf("contact-%02d", i),
			Status:     broadcast.RecipientPending,
		}
	}
	err := env.broadcasts.Create(context.Background(), broadcast.Broadcast{
		ID:                   id,
		Channel:              "whatsapp",
		Message:              "big announcement",
		Status:               broadcast.StatusScheduled,
		BatchSize:            batchSize,
		BatchIntervalMinutes: intervalMinutes,
		NextBatchTime:        env.now.Add(-time.Minute),
		TotalRecipients:      total,
	}, recipients)
	require.NoError(t, err)
}

func TestBroadcastDrainsInBatches(t *testing.T) {
	env := newTestEnv(t)
	adapter := &fakeAdapter{}
	env.registry.Register("whatsapp", adapter)
	seedBroadcast(t, env, "b1", 12, 5, 8)

	env.engine.Tick(context.Background())

	got, err := env.broadcasts.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	require.Equal(t, broadcast.StatusProcessing, got.Status)
	require.Equal(t, 5, got.ProcessedCount)
	require.Equal(t, 5, got.SuccessCount)
	require.Equal(t, env.now.Add(8*time.Minute), got.NextBatchTime)

	// Not due again until the interval elapses.
	env.engine.Tick(context.Background())
	got, _ = env.broadcasts.GetByID(context.Background(), "b1")
	require.Equal(t, 5, got.ProcessedCount)

	env.now = env.now.Add(8 * time.Minute)
	env.engine.Tick(context.Background())
	got, _ = env.broadcasts.GetByID(context.Background(), "b1")
	require.Equal(t, 10, got.ProcessedCount)
	require.Equal(t, broadcast.StatusProcessing, got.Status)

	env.now = env.now.Add(8 * time.Minute)
	env.engine.Tick(context.Background())
	got, _ = env.broadcasts.GetByID(context.Background(), "b1")
	require.Equal(t, 12, got.ProcessedCount)
	require.Equal(t, broadcast.StatusCompleted, got.Status)

	require.Len(t, adapter.sent, 12)
}

func TestBroadcastDrainsFIFO(t *testing.T) {
	env := newTestEnv(t)
	adapter := &fakeAdapter{}
	env.registry.Register("whatsapp", adapter)
	seedBroadcast(t, env, "b1", 7, 3, 8)

	env.engine.Tick(context.Background())

	require.Equal(t, []string{"contact-00", "contact-01", "contact-02"}, adapter.sent)
}

func TestBroadcastCountsFailedRecipients(t *testing.T) {
	env := newTestEnv(t)
	adapter := &fakeAdapter{sendErrFor: map[string]error{
		"contact-01": errAdapterDown,
		"contact-03": errAdapterDown,
	}}
	env.registry.Register("whatsapp", adapter)
	seedBroadcast(t, env, "b1", 5, 5, 8)

	env.engine.Tick(context.Background())

	got, err := env.broadcasts.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	require.Equal(t, broadcast.StatusCompleted, got.Status)
	require.Equal(t, 5, got.ProcessedCount)
	require.Equal(t, 3, got.SuccessCount)
	require.Equal(t, 2, got.FailCount)
	require.Equal(t, got.ProcessedCount, got.SuccessCount+got.FailCount)

	recipients, err := env.broadcasts.Recipients(context.Background(), "b1")
	require.NoError(t, err)
	require.Equal(t, broadcast.RecipientFailed, recipients[1].Status)
	require.Equal(t, errAdapterDown.Error(), recipients[1].Error)
	require.Equal(t, broadcast.RecipientSent, recipients[0].Status)
	require.NotNil(t, recipients[0].SentAt)
}

func TestBroadcastWithUnroutableChannelIsDeferred(t *testing.T) {
	env := newTestEnv(t)
	seedBroadcast(t, env, "b1", 5, 5, 8)

	env.engine.Tick(context.Background())

	got, err := env.broadcasts.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	require.Equal(t, broadcast.StatusScheduled, got.Status)
	require.Equal(t, 0, got.ProcessedCount)
	require.EqualValues(t, 1, env.engine.Stats().UnroutableItems)
}

func TestPausedBroadcastIsNotDrained(t *testing.T) {
	env := newTestEnv(t)
	adapter := &fakeAdapter{}
	env.registry.Register("whatsapp", adapter)
	seedBroadcast(t, env, "b1", 12, 5, 8)

	env.engine.Tick(context.Background())

	ok, err := env.broadcasts.UpdateIfStatus(context.Background(), "b1", broadcast.StatusProcessing, map[string]any{
		"status": string(broadcast.StatusPaused),
	})
	require.NoError(t, err)
	require.True(t, ok)

	env.now = env.now.Add(time.Hour)
	env.engine.Tick(context.Background())

	got, _ := env.broadcasts.GetByID(context.Background(), "b1")
	require.Equal(t, broadcast.StatusPaused, got.Status)
	require.Equal(t, 5, got.ProcessedCount)
	require.Len(t, adapter.sent, 5)
}

func TestBroadcastSingleRecipientRemainder(t *testing.T) {
	env := newTestEnv(t)
	adapter := &fakeAdapter{}
	env.registry.Register("whatsapp", adapter)
	seedBroadcast(t, env, "b1", 6, 5, 8)

	env.engine.Tick(context.Background())
	env.now = env.now.Add(8 * time.Minute)
	env.engine.Tick(context.Background())

	got, err := env.broadcasts.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	require.Equal(t, broadcast.StatusCompleted, got.Status)
	require.Equal(t, 6, got.ProcessedCount)
	require.Len(t, adapter.sent, 6)
}
