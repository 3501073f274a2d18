package podcast

import (
	"context"
	"time"

	"github.com/omnipost/omnipost/domains/post"
)

// Channel is fixed: episodes always go through the podcast host adapter.
const Channel = "podcast"

// Episode is a podcast episode scheduled for distribution to one or more
// platforms through the podcast host.
type Episode struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	AudioRef    string      `json:"audio_ref"`
	Platforms   []string    `json:"platforms"`
	Status      post.Status `json:"status"`
	ScheduledAt time.Time   `json:"scheduled_at"`
	PublishedAt *time.Time  `json:"published_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type ScheduleRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	AudioRef    string    `json:"audio_ref"`
	Platforms   []string  `json:"platforms"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

type IPodcastUsecase interface {
	Schedule(ctx context.Context, request ScheduleRequest) (Episode, error)
	List(ctx context.Context) ([]Episode, error)
	GetByID(ctx context.Context, id string) (Episode, error)
	Cancel(ctx context.Context, id string) error
	Retry(ctx context.Context, id string) error
}
