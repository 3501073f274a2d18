package repository

import (
	"context"

	"github.com/omnipost/omnipost/domains/subscriber"
	"gorm.io/gorm"
)

type SubscriberGormRepository struct {
	db *gorm.DB
}

func NewSubscriberGormRepository(db *gorm.DB) *SubscriberGormRepository {
	return &SubscriberGormRepository{db: db}
}

func (r *SubscriberGormRepository) Create(ctx context.Context, s subscriber.Subscriber) error {
	model := toSubscriberModel(s)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *SubscriberGormRepository) ListByOwner(ctx context.Context, ownerID string) ([]subscriber.Subscriber, error) {
	var models []subscriberModel
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]subscriber.Subscriber, len(models))
	for i, m := range models {
		res[i] = fromSubscriberModel(m)
	}
	return res, nil
}

func (r *SubscriberGormRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&subscriberModel{}, "id = ?", id).Error
}

// ResolveRecipients returns the active email addresses for an owner. Called
// at dispatch time so the audience is always current.
func (r *SubscriberGormRepository) ResolveRecipients(ctx context.Context, ownerID string) ([]string, error) {
	var emails []string
	err := r.db.WithContext(ctx).Model(&subscriberModel{}).
		Where("owner_id = ? AND active = ?", ownerID, true).
		Order("created_at").
		Pluck("email", &emails).Error
	if err != nil {
		return nil, err
	}
	return emails, nil
}
