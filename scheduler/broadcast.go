package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/omnipost/omnipost/domains/broadcast"
	"github.com/sirupsen/logrus"
)

// drainBroadcasts advances every broadcast whose next batch time has
// arrived. One broadcast drains at most one batch per tick.
func (e *Engine) drainBroadcasts(ctx context.Context, now time.Time) {
	due, err := e.deps.Broadcasts.ListDue(ctx, now)
	if err != nil {
		logrus.WithError(err).Error("[SCHEDULER] Failed to list due broadcasts")
		return
	}
	for _, b := range due {
		e.drainBatch(ctx, b)
	}
}

func (e *Engine) drainBatch(ctx context.Context, b broadcast.Broadcast) {
	log := logrus.WithFields(logrus.Fields{"broadcast_id": b.ID, "channel": b.Channel})

	adapter, ok := e.deps.Registry.Get(b.Channel)
	if !ok {
		atomic.AddInt64(&e.unroutableItems, 1)
		log.Warn("[SCHEDULER] No adapter registered for channel, batch deferred")
		return
	}

	pending, err := e.deps.Broadcasts.PendingRecipients(ctx, b.ID, b.BatchSize)
	if err != nil {
		log.WithError(err).Error("[SCHEDULER] Failed to load pending recipients")
		return
	}
	if len(pending) == 0 {
		// Counters and recipient rows disagree only after a crash between
		// recipient updates and the counter write; re-apply closes the gap.
		if _, err := e.deps.Broadcasts.ApplyBatch(ctx, b.ID, nil, e.now()); err != nil {
			log.WithError(err).Error("[SCHEDULER] Failed to reconcile drained broadcast")
		}
		return
	}

	results := make([]broadcast.RecipientResult, 0, len(pending))
	for _, rec := range pending {
		if err := e.limiter.Wait(ctx); err != nil {
			log.WithError(err).Warn("[SCHEDULER] Batch drain interrupted")
			break
		}
		sendCtx, cancel := context.WithTimeout(ctx, e.cfg.AdapterTimeout)
		sendErr := adapter.SendOne(sendCtx, b.ID, b.Message, rec.ContactRef)
		cancel()

		res := broadcast.RecipientResult{RecipientID: rec.ID, SentAt: e.now()}
		if sendErr != nil {
			res.Error = sendErr.Error()
			atomic.AddInt64(&e.recipientsFailed, 1)
			log.WithField("contact", rec.ContactRef).WithError(sendErr).Warn("[SCHEDULER] Recipient send failed")
		} else {
			res.OK = true
			atomic.AddInt64(&e.recipientsSent, 1)
		}
		results = append(results, res)
	}

	next := e.now().Add(time.Duration(b.BatchIntervalMinutes) * time.Minute)
	updated, err := e.deps.Broadcasts.ApplyBatch(ctx, b.ID, results, next)
	if err != nil {
		log.WithError(err).Error("[SCHEDULER] Failed to persist batch outcome")
		return
	}

	log.WithFields(logrus.Fields{
		"processed": humanize.Comma(int64(updated.ProcessedCount)),
		"total":     humanize.Comma(int64(updated.TotalRecipients)),
		"success":   updated.SuccessCount,
		"fail":      updated.FailCount,
	}).Info("[SCHEDULER] Broadcast batch drained")

	if updated.Status == broadcast.StatusCompleted {
		log.Info("[SCHEDULER] Broadcast completed")
	}
}
