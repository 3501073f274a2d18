package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	domainSubscriber "github.com/omnipost/omnipost/domains/subscriber"
	"github.com/omnipost/omnipost/repository"
	"github.com/omnipost/omnipost/validations"
	"github.com/sirupsen/logrus"
)

type serviceSubscriber struct {
	repo repository.ISubscriberRepository
}

func NewSubscriberService(repo repository.ISubscriberRepository) domainSubscriber.ISubscriberUsecase {
	return &serviceSubscriber{repo: repo}
}

func (service serviceSubscriber) Create(ctx context.Context, request domainSubscriber.CreateRequest) (domainSubscriber.Subscriber, error) {
	if err := validations.ValidateCreateSubscriber(ctx, request); err != nil {
		return domainSubscriber.Subscriber{}, err
	}

	s := domainSubscriber.Subscriber{
		ID:        uuid.NewString(),
		OwnerID:   request.OwnerID,
		Email:     request.Email,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := service.repo.Create(ctx, s); err != nil {
		return domainSubscriber.Subscriber{}, err
	}

	logrus.WithFields(logrus.Fields{"subscriber_id": s.ID, "owner_id": s.OwnerID}).Info("[SUBSCRIBER] Subscriber added")
	return s, nil
}

func (service serviceSubscriber) ListByOwner(ctx context.Context, ownerID string) ([]domainSubscriber.Subscriber, error) {
	return service.repo.ListByOwner(ctx, ownerID)
}

func (service serviceSubscriber) Delete(ctx context.Context, id string) error {
	return service.repo.Delete(ctx, id)
}
