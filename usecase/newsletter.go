package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	domainNewsletter "github.com/omnipost/omnipost/domains/newsletter"
	domainPost "github.com/omnipost/omnipost/domains/post"
	pkgError "github.com/omnipost/omnipost/pkg/error"
	"github.com/omnipost/omnipost/repository"
	"github.com/omnipost/omnipost/validations"
	"github.com/sirupsen/logrus"
)

type serviceNewsletter struct {
	repo repository.INewsletterRepository
}

func NewNewsletterService(repo repository.INewsletterRepository) domainNewsletter.INewsletterUsecase {
	return &serviceNewsletter{repo: repo}
}

func (service serviceNewsletter) Schedule(ctx context.Context, request domainNewsletter.ScheduleRequest) (domainNewsletter.Newsletter, error) {
	if err := validations.ValidateScheduleNewsletter(ctx, request); err != nil {
		return domainNewsletter.Newsletter{}, err
	}

	now := time.Now().UTC()
	n := domainNewsletter.Newsletter{
		ID:          uuid.NewString(),
		OwnerID:     request.OwnerID,
		Subject:     request.Subject,
		Body:        request.Body,
		Status:      domainPost.StatusScheduled,
		ScheduledAt: request.ScheduledAt.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := service.repo.Create(ctx, n); err != nil {
		return domainNewsletter.Newsletter{}, err
	}

	logrus.WithFields(logrus.Fields{
		"newsletter_id": n.ID,
		"owner_id":      n.OwnerID,
		"scheduled_at":  n.ScheduledAt,
	}).Info("[NEWSLETTER] Issue scheduled")
	return n, nil
}

func (service serviceNewsletter) List(ctx context.Context) ([]domainNewsletter.Newsletter, error) {
	return service.repo.List(ctx)
}

func (service serviceNewsletter) GetByID(ctx context.Context, id string) (domainNewsletter.Newsletter, error) {
	return service.repo.GetByID(ctx, id)
}

func (service serviceNewsletter) Cancel(ctx context.Context, id string) error {
	ok, err := service.repo.UpdateIfStatus(ctx, id, domainPost.StatusScheduled, map[string]any{
		"status":     string(domainPost.StatusDraft),
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if !ok {
		current, err := service.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return pkgError.ConflictError(fmt.Sprintf("newsletter %s is %s, only scheduled issues can be cancelled", id, current.Status))
	}
	logrus.WithField("newsletter_id", id).Info("[NEWSLETTER] Issue cancelled")
	return nil
}

// Retry rearms a failed issue and clears the recorded failure reason.
func (service serviceNewsletter) Retry(ctx context.Context, id string) error {
	ok, err := service.repo.UpdateIfStatus(ctx, id, domainPost.StatusFailed, map[string]any{
		"status":         string(domainPost.StatusScheduled),
		"failure_reason": "",
		"updated_at":     time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if !ok {
		current, err := service.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return pkgError.ConflictError(fmt.Sprintf("newsletter %s is %s, only failed issues can be retried", id, current.Status))
	}
	logrus.WithField("newsletter_id", id).Info("[NEWSLETTER] Issue rescheduled for retry")
	return nil
}
