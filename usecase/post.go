package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	domainPost "github.com/omnipost/omnipost/domains/post"
	pkgError "github.com/omnipost/omnipost/pkg/error"
	"github.com/omnipost/omnipost/repository"
	"github.com/omnipost/omnipost/validations"
	"github.com/sirupsen/logrus"
)

type servicePost struct {
	repo repository.IPostRepository
}

func NewPostService(repo repository.IPostRepository) domainPost.IPostUsecase {
	return &servicePost{repo: repo}
}

func (service servicePost) Schedule(ctx context.Context, request domainPost.ScheduleRequest) (domainPost.Post, error) {
	if err := validations.ValidateSchedulePost(ctx, request); err != nil {
		return domainPost.Post{}, err
	}

	now := time.Now().UTC()
	p := domainPost.Post{
		ID:          uuid.NewString(),
		Channel:     strings.ToLower(strings.TrimSpace(request.Channel)),
		Text:        request.Text,
		Hashtags:    request.Hashtags,
		ImageRef:    request.ImageRef,
		Status:      domainPost.StatusScheduled,
		ScheduledAt: request.ScheduledAt.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := service.repo.Create(ctx, p); err != nil {
		return domainPost.Post{}, err
	}

	logrus.WithFields(logrus.Fields{
		"post_id":      p.ID,
		"channel":      p.Channel,
		"scheduled_at": p.ScheduledAt,
	}).Info("[POST] Post scheduled")
	return p, nil
}

func (service servicePost) List(ctx context.Context) ([]domainPost.Post, error) {
	return service.repo.List(ctx)
}

func (service servicePost) GetByID(ctx context.Context, id string) (domainPost.Post, error) {
	return service.repo.GetByID(ctx, id)
}

// Cancel moves a scheduled post back to draft. A post the dispatcher already
// picked up cannot be cancelled.
func (service servicePost) Cancel(ctx context.Context, id string) error {
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
		return pkgError.ConflictError(fmt.Sprintf("post %s is %s, only scheduled posts can be cancelled", id, current.Status))
	}
	logrus.WithField("post_id", id).Info("[POST] Post cancelled")
	return nil
}

// Retry rearms a failed post. Its scheduled time is untouched, so the next
// tick picks it up.
func (service servicePost) Retry(ctx context.Context, id string) error {
	ok, err := service.repo.UpdateIfStatus(ctx, id, domainPost.StatusFailed, map[string]any{
		"status":     string(domainPost.StatusScheduled),
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
		return pkgError.ConflictError(fmt.Sprintf("post %s is %s, only failed posts can be retried", id, current.Status))
	}
	logrus.WithField("post_id", id).Info("[POST] Post rescheduled for retry")
	return nil
}
