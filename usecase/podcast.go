package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	domainPodcast "github.com/omnipost/omnipost/domains/podcast"
	domainPost "github.com/omnipost/omnipost/domains/post"
	pkgError "github.com/omnipost/omnipost/pkg/error"
	"github.com/omnipost/omnipost/repository"
	"github.com/omnipost/omnipost/validations"
	"github.com/sirupsen/logrus"
)

type servicePodcast struct {
	repo repository.IPodcastRepository
}

func NewPodcastService(repo repository.IPodcastRepository) domainPodcast.IPodcastUsecase {
	return &servicePodcast{repo: repo}
}

func (service servicePodcast) Schedule(ctx context.Context, request domainPodcast.ScheduleRequest) (domainPodcast.Episode, error) {
	if err := validations.ValidateScheduleEpisode(ctx, request); err != nil {
		return domainPodcast.Episode{}, err
	}

	platforms := make([]string, 0, len(request.Platforms))
	for _, p := range request.Platforms {
		platforms = append(platforms, strings.ToLower(strings.TrimSpace(p)))
	}

	now := time.Now().UTC()
	ep := domainPodcast.Episode{
		ID:          uuid.NewString(),
		Title:       request.Title,
		Description: request.Description,
		AudioRef:    request.AudioRef,
		Platforms:   platforms,
		Status:      domainPost.StatusScheduled,
		ScheduledAt: request.ScheduledAt.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := service.repo.Create(ctx, ep); err != nil {
		return domainPodcast.Episode{}, err
	}

	logrus.WithFields(logrus.Fields{
		"episode_id":   ep.ID,
		"platforms":    ep.Platforms,
		"scheduled_at": ep.ScheduledAt,
	}).Info("[PODCAST] Episode scheduled")
	return ep, nil
}

func (service servicePodcast) List(ctx context.Context) ([]domainPodcast.Episode, error) {
	return service.repo.List(ctx)
}

func (service servicePodcast) GetByID(ctx context.Context, id string) (domainPodcast.Episode, error) {
	return service.repo.GetByID(ctx, id)
}

func (service servicePodcast) Cancel(ctx context.Context, id string) error {
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
		return pkgError.ConflictError(fmt.Sprintf("episode %s is %s, only scheduled episodes can be cancelled", id, current.Status))
	}
	logrus.WithField("episode_id", id).Info("[PODCAST] Episode cancelled")
	return nil
}

func (service servicePodcast) Retry(ctx context.Context, id string) error {
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
		return pkgError.ConflictError(fmt.Sprintf("episode %s is %s, only failed episodes can be retried", id, current.Status))
	}
	logrus.WithField("episode_id", id).Info("[PODCAST] Episode rescheduled for retry")
	return nil
}
