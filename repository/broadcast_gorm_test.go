package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/omnipost/omnipost/domains/broadcast"
)

func seedTestBroadcast(t *testing.T, repo *BroadcastGormRepository, id string, total int) {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	recipients := make([]broadcast.Recipient, total)
	for i := range recipients {
		recipients[i] = broadcast.Recipient{
			ID:         fmt.Sprintf("%s-r%02d", id, i),
			Position:   i,
			ContactRef: fmt.Sprintf("contact-%02d", i),
			Status:     broadcast.RecipientPending,
		}
	}
	err := repo.Create(context.Background(), broadcast.Broadcast{
		ID:                   id,
		Channel:              "whatsapp",
		Message:              "hello",
		Status:               broadcast.StatusScheduled,
		BatchSize:            5,
		BatchIntervalMinutes: 8,
		NextBatchTime:        now,
		TotalRecipients:      total,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, recipients)
	if err != nil {
		t.Fatalf("failed to seed broadcast: %v", err)
	}
}

func TestBroadcastRepositoryPendingRecipientsFIFO(t *testing.T) {
	repo := NewBroadcastGormRepository(openTestDB(t))
	seedTestBroadcast(t, repo, "b1", 12)

	pending, err := repo.PendingRecipients(context.Background(), "b1", 5)
	if err != nil {
		t.Fatalf("failed to list pending recipients: %v", err)
	}
	if len(pending) != 5 {
		t.Fatalf("expected 5 pending recipients, got %d", len(pending))
	}
	for i, rec := range pending {
		if rec.Position != i {
			t.Fatalf("expected position %d at index %d, got %d", i, i, rec.Position)
		}
	}
}

func TestBroadcastRepositoryApplyBatch(t *testing.T) {
	repo := NewBroadcastGormRepository(openTestDB(t))
	seedTestBroadcast(t, repo, "b1", 12)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	pending, err := repo.PendingRecipients(ctx, "b1", 5)
	if err != nil {
		t.Fatalf("failed to list pending recipients: %v", err)
	}
	results := make([]broadcast.RecipientResult, len(pending))
	for i, rec := range pending {
		results[i] = broadcast.RecipientResult{RecipientID: rec.ID, OK: i != 1, SentAt: now}
		if i == 1 {
			results[i].Error = "number unreachable"
		}
	}

	next := now.Add(8 * time.Minute)
	updated, err := repo.ApplyBatch(ctx, "b1", results, next)
	if err != nil {
		t.Fatalf("failed to apply batch: %v", err)
	}
	if updated.Status != broadcast.StatusProcessing {
		t.Fatalf("expected processing, got %s", updated.Status)
	}
	if updated.ProcessedCount != 5 || updated.SuccessCount != 4 || updated.FailCount != 1 {
		t.Fatalf("unexpected counters: %+v", updated)
	}
	if !updated.NextBatchTime.Equal(next) {
		t.Fatalf("expected next batch time %v, got %v", next, updated.NextBatchTime)
	}

	remaining, err := repo.PendingRecipients(ctx, "b1", 0)
	if err != nil {
		t.Fatalf("failed to list remaining recipients: %v", err)
	}
	if len(remaining) != 7 {
		t.Fatalf("expected 7 remaining recipients, got %d", len(remaining))
	}
}

func TestBroadcastRepositoryApplyBatchIsIdempotent(t *testing.T) {
	repo := NewBroadcastGormRepository(openTestDB(t))
	seedTestBroadcast(t, repo, "b1", 5)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	pending, _ := repo.PendingRecipients(ctx, "b1", 3)
	results := make([]broadcast.RecipientResult, len(pending))
	for i, rec := range pending {
		results[i] = broadcast.RecipientResult{RecipientID: rec.ID, OK: true, SentAt: now}
	}

	if _, err := repo.ApplyBatch(ctx, "b1", results, now.Add(time.Minute)); err != nil {
		t.Fatalf("failed to apply batch: %v", err)
	}

	// Re-applying the same results must not move any recipient twice.
	flipped := make([]broadcast.RecipientResult, len(results))
	for i, res := range results {
		flipped[i] = broadcast.RecipientResult{RecipientID: res.RecipientID, OK: false, Error: "late failure", SentAt: now}
	}
	updated, err := repo.ApplyBatch(ctx, "b1", flipped, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("failed to re-apply batch: %v", err)
	}
	if updated.ProcessedCount != 3 || updated.SuccessCount != 3 || updated.FailCount != 0 {
		t.Fatalf("counters changed on re-apply: %+v", updated)
	}
}

func TestBroadcastRepositoryCompletesOnLastBatch(t *testing.T) {
	repo := NewBroadcastGormRepository(openTestDB(t))
	seedTestBroadcast(t, repo, "b1", 4)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	pending, _ := repo.PendingRecipients(ctx, "b1", 0)
	results := make([]broadcast.RecipientResult, len(pending))
	for i, rec := range pending {
		results[i] = broadcast.RecipientResult{RecipientID: rec.ID, OK: true, SentAt: now}
	}

	updated, err := repo.ApplyBatch(ctx, "b1", results, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("failed to apply batch: %v", err)
	}
	if updated.Status != broadcast.StatusCompleted {
		t.Fatalf("expected completed, got %s", updated.Status)
	}
	if updated.ProcessedCount != updated.TotalRecipients {
		t.Fatalf("expected processed == total, got %d of %d", updated.ProcessedCount, updated.TotalRecipients)
	}
}

func TestBroadcastRepositoryPauseSticksThroughApplyBatch(t *testing.T) {
	repo := NewBroadcastGormRepository(openTestDB(t))
	seedTestBroadcast(t, repo, "b1", 10)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	pending, _ := repo.PendingRecipients(ctx, "b1", 5)
	results := make([]broadcast.RecipientResult, len(pending))
	for i, rec := range pending {
		results[i] = broadcast.RecipientResult{RecipientID: rec.ID, OK: true, SentAt: now}
	}

	// Pause lands while the batch is in flight.
	ok, err := repo.UpdateIfStatus(ctx, "b1", broadcast.StatusScheduled, map[string]any{
		"status": string(broadcast.StatusPaused),
	})
	if err != nil || !ok {
		t.Fatalf("failed to pause broadcast: ok=%v err=%v", ok, err)
	}

	updated, err := repo.ApplyBatch(ctx, "b1", results, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("failed to apply batch: %v", err)
	}
	if updated.Status != broadcast.StatusPaused {
		t.Fatalf("expected the pause to stick, got %s", updated.Status)
	}
	if updated.ProcessedCount != 5 {
		t.Fatalf("expected the in-flight outcomes recorded, got %d", updated.ProcessedCount)
	}
}

func TestBroadcastRepositoryListDue(t *testing.T) {
	repo := NewBroadcastGormRepository(openTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	seed := []broadcast.Broadcast{
		{ID: "due", Status: broadcast.StatusScheduled, NextBatchTime: now.Add(-time.Minute)},
		{ID: "processing", Status: broadcast.StatusProcessing, NextBatchTime: now.Add(-time.Hour)},
		{ID: "future", Status: broadcast.StatusScheduled, NextBatchTime: now.Add(time.Hour)},
		{ID: "paused", Status: broadcast.StatusPaused, NextBatchTime: now.Add(-time.Hour)},
		{ID: "done", Status: broadcast.StatusCompleted, NextBatchTime: now.Add(-time.Hour)},
	}
	for _, b := range seed {
		b.Channel = "whatsapp"
		b.Message = "hello"
		b.BatchSize = 5
		b.BatchIntervalMinutes = 8
		b.TotalRecipients = 1
		b.CreatedAt = now
		b.UpdatedAt = now
		if err := repo.Create(ctx, b, nil); err != nil {
			t.Fatalf("failed to seed broadcast %s: %v", b.ID, err)
		}
	}

	due, err := repo.ListDue(ctx, now)
	if err != nil {
		t.Fatalf("failed to list due broadcasts: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("expected 2 due broadcasts, got %d", len(due))
	}
	if due[0].ID != "processing" || due[1].ID != "due" {
		t.Fatalf("due broadcasts out of order: %s, %s", due[0].ID, due[1].ID)
	}
}
