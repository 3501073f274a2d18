package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/omnipost/omnipost/domains/broadcast"
	pkgError "github.com/omnipost/omnipost/pkg/error"
	"gorm.io/gorm"
)

type BroadcastGormRepository struct {
	db *gorm.DB
}

func NewBroadcastGormRepository(db *gorm.DB) *BroadcastGormRepository {
	return &BroadcastGormRepository{db: db}
}

// Create persists the broadcast and its full recipient set in one
// transaction. Recipient membership is immutable afterwards.
func (r *BroadcastGormRepository) Create(ctx context.Context, b broadcast.Broadcast, recipients []broadcast.Recipient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := toBroadcastModel(b)
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		for _, rec := range recipients {
			rm := toRecipientModel(b.ID, rec)
			if err := tx.Create(&rm).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *BroadcastGormRepository) GetByID(ctx context.Context, id string) (broadcast.Broadcast, error) {
	var m broadcastModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return broadcast.Broadcast{}, pkgError.NotFoundError("broadcast " + id + " not found")
		}
		return broadcast.Broadcast{}, err
	}
	return fromBroadcastModel(m), nil
}

func (r *BroadcastGormRepository) List(ctx context.Context) ([]broadcast.Broadcast, error) {
	var models []broadcastModel
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]broadcast.Broadcast, len(models))
	for i, m := range models {
		res[i] = fromBroadcastModel(m)
	}
	return res, nil
}

// ListDue returns broadcasts whose next batch is due: scheduled or already
// processing, with next_batch_time in the past.
func (r *BroadcastGormRepository) ListDue(ctx context.Context, now time.Time) ([]broadcast.Broadcast, error) {
	var models []broadcastModel
	err := r.db.WithContext(ctx).
		Where("status IN ? AND next_batch_time <= ?",
			[]string{string(broadcast.StatusScheduled), string(broadcast.StatusProcessing)}, now.UTC()).
		Order("next_batch_time").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	res := make([]broadcast.Broadcast, len(models))
	for i, m := range models {
		res[i] = fromBroadcastModel(m)
	}
	return res, nil
}

// PendingRecipients returns up to limit pending recipients in insertion
// order. This is the FIFO slice one batch drain works on.
func (r *BroadcastGormRepository) PendingRecipients(ctx context.Context, id string, limit int) ([]broadcast.Recipient, error) {
	var models []recipientModel
	q := r.db.WithContext(ctx).
		Where("broadcast_id = ? AND status = ?", id, string(broadcast.RecipientPending)).
		Order("position")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]broadcast.Recipient, len(models))
	for i, m := range models {
		res[i] = fromRecipientModel(m)
	}
	return res, nil
}

func (r *BroadcastGormRepository) Recipients(ctx context.Context, id string) ([]broadcast.Recipient, error) {
	var models []recipientModel
	if err := r.db.WithContext(ctx).Where("broadcast_id = ?", id).Order("position").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]broadcast.Recipient, len(models))
	for i, m := range models {
		res[i] = fromRecipientModel(m)
	}
	return res, nil
}

// ApplyBatch persists one batch drain atomically: recipient outcomes, the
// counters derived from the recipient rows, the recomputed status, and the
// advanced next batch time. Recipients already sent or failed are never
// transitioned again, so re-applying an interrupted batch is safe.
func (r *BroadcastGormRepository) ApplyBatch(ctx context.Context, id string, results []broadcast.RecipientResult, nextBatchTime time.Time) (broadcast.Broadcast, error) {
	var updated broadcastModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m broadcastModel
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgError.NotFoundError("broadcast " + id + " not found")
			}
			return err
		}

		for _, res := range results {
			patch := map[string]any{}
			if res.OK {
				patch["status"] = string(broadcast.RecipientSent)
				patch["sent_at"] = res.SentAt.UTC()
			} else {
				patch["status"] = string(broadcast.RecipientFailed)
				patch["error"] = res.Error
			}
			out := tx.Model(&recipientModel{}).
				Where("id = ? AND broadcast_id = ? AND status = ?", res.RecipientID, id, string(broadcast.RecipientPending)).
				Updates(patch)
			if out.Error != nil {
				return out.Error
			}
			// RowsAffected == 0 means an earlier drain already settled
			// this recipient; its outcome stands.
		}

		success, fail, err := countRecipientOutcomes(tx, id)
		if err != nil {
			return err
		}
		m.SuccessCount = success
		m.FailCount = fail
		m.ProcessedCount = success + fail
		if m.ProcessedCount > m.TotalRecipients {
			return fmt.Errorf("broadcast %s processed %d of %d recipients", id, m.ProcessedCount, m.TotalRecipients)
		}

		if m.ProcessedCount == m.TotalRecipients {
			m.Status = string(broadcast.StatusCompleted)
		} else if m.Status == string(broadcast.StatusScheduled) || m.Status == string(broadcast.StatusProcessing) {
			// A pause issued mid-drain sticks; only live broadcasts move on.
			m.Status = string(broadcast.StatusProcessing)
			m.NextBatchTime = nextBatchTime.UTC()
		}
		m.UpdatedAt = time.Now().UTC()

		if err := tx.Save(&m).Error; err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return broadcast.Broadcast{}, err
	}
	return fromBroadcastModel(updated), nil
}

func (r *BroadcastGormRepository) UpdateIfStatus(ctx context.Context, id string, expected broadcast.Status, patch map[string]any) (bool, error) {
	return updateIfStatus(r.db.WithContext(ctx).Model(&broadcastModel{}), id, string(expected), patch)
}

func countRecipientOutcomes(tx *gorm.DB, broadcastID string) (success, fail int, err error) {
	var sent, failed int64
	if err = tx.Model(&recipientModel{}).
		Where("broadcast_id = ? AND status = ?", broadcastID, string(broadcast.RecipientSent)).
		Count(&sent).Error; err != nil {
		return 0, 0, err
	}
	if err = tx.Model(&recipientModel{}).
		Where("broadcast_id = ? AND status = ?", broadcastID, string(broadcast.RecipientFailed)).
		Count(&failed).Error; err != nil {
		return 0, 0, err
	}
	return int(sent), int(failed), nil
}
