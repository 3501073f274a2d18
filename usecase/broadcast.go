package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/omnipost/omnipost/core/config"
	domainBroadcast "github.com/omnipost/omnipost/domains/broadcast"
	pkgError "github.com/omnipost/omnipost/pkg/error"
	"github.com/omnipost/omnipost/repository"
	"github.com/omnipost/omnipost/validations"
	"github.com/sirupsen/logrus"
)

type serviceBroadcast struct {
	repo repository.IBroadcastRepository
	cfg  config.BroadcastConfig
}

func NewBroadcastService(repo repository.IBroadcastRepository, cfg config.BroadcastConfig) domainBroadcast.IBroadcastUsecase {
	return &serviceBroadcast{repo: repo, cfg: cfg}
}

// Create persists the broadcast with its full recipient set. The first batch
// becomes due at the scheduled time; pacing fields fall back to the
// configured defaults when omitted.
func (service serviceBroadcast) Create(ctx context.Context, request domainBroadcast.CreateRequest) (domainBroadcast.Broadcast, error) {
	if err := validations.ValidateCreateBroadcast(ctx, request); err != nil {
		return domainBroadcast.Broadcast{}, err
	}

	batchSize := request.BatchSize
	if batchSize <= 0 {
		batchSize = service.cfg.DefaultBatchSize
	}
	interval := request.BatchIntervalMinutes
	if interval <= 0 {
		interval = service.cfg.DefaultIntervalMinutes
	}

	now := time.Now().UTC()
	scheduledAt := request.ScheduledAt.UTC()
	if request.ScheduledAt.IsZero() {
		scheduledAt = now
	}

	b := domainBroadcast.Broadcast{
		ID:                   uuid.NewString(),
		Channel:              strings.ToLower(strings.TrimSpace(request.Channel)),
		Message:              request.Message,
		Status:               domainBroadcast.StatusScheduled,
		BatchSize:            batchSize,
		BatchIntervalMinutes: interval,
		NextBatchTime:        scheduledAt,
		TotalRecipients:      len(request.Recipients),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	recipients := make([]domainBroadcast.Recipient, len(request.Recipients))
	for i, contact := range request.Recipients {
		recipients[i] = domainBroadcast.Recipient{
			ID:         uuid.NewString(),
			Position:   i,
			ContactRef: contact,
			Status:     domainBroadcast.RecipientPending,
		}
	}
	if err := service.repo.Create(ctx, b, recipients); err != nil {
		return domainBroadcast.Broadcast{}, err
	}

	logrus.WithFields(logrus.Fields{
		"broadcast_id":    b.ID,
		"channel":         b.Channel,
		"recipients":      humanize.Comma(int64(b.TotalRecipients)),
		"batch_size":      b.BatchSize,
		"next_batch_time": b.NextBatchTime,
	}).Info("[BROADCAST] Broadcast created")
	return b, nil
}

func (service serviceBroadcast) List(ctx context.Context) ([]domainBroadcast.Broadcast, error) {
	return service.repo.List(ctx)
}

func (service serviceBroadcast) GetByID(ctx context.Context, id string) (domainBroadcast.Broadcast, error) {
	return service.repo.GetByID(ctx, id)
}

func (service serviceBroadcast) Recipients(ctx context.Context, id string) ([]domainBroadcast.Recipient, error) {
	if _, err := service.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return service.repo.Recipients(ctx, id)
}

// Pause freezes the drain between batches. Recipients already sent stay
// sent; the remainder keeps waiting until Resume.
func (service serviceBroadcast) Pause(ctx context.Context, id string) error {
	patch := map[string]any{
		"status":     string(domainBroadcast.StatusPaused),
		"updated_at": time.Now().UTC(),
	}
	for _, expected := range []domainBroadcast.Status{domainBroadcast.StatusScheduled, domainBroadcast.StatusProcessing} {
		ok, err := service.repo.UpdateIfStatus(ctx, id, expected, patch)
		if err != nil {
			return err
		}
		if ok {
			logrus.WithField("broadcast_id", id).Info("[BROADCAST] Broadcast paused")
			return nil
		}
	}
	current, err := service.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return pkgError.ConflictError(fmt.Sprintf("broadcast %s is %s, only scheduled or processing broadcasts can be paused", id, current.Status))
}

// Resume makes the next batch due immediately; the drain picks up exactly
// where it stopped.
func (service serviceBroadcast) Resume(ctx context.Context, id string) error {
	current, err := service.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Status != domainBroadcast.StatusPaused {
		return pkgError.ConflictError(fmt.Sprintf("broadcast %s is %s, only paused broadcasts can be resumed", id, current.Status))
	}

	target := domainBroadcast.StatusScheduled
	if current.ProcessedCount > 0 {
		target = domainBroadcast.StatusProcessing
	}
	now := time.Now().UTC()
	ok, err := service.repo.UpdateIfStatus(ctx, id, domainBroadcast.StatusPaused, map[string]any{
		"status":          string(target),
		"next_batch_time": now,
		"updated_at":      now,
	})
	if err != nil {
		return err
	}
	if !ok {
		return pkgError.ConflictError(fmt.Sprintf("broadcast %s changed state while resuming", id))
	}
	logrus.WithField("broadcast_id", id).Info("[BROADCAST] Broadcast resumed")
	return nil
}
