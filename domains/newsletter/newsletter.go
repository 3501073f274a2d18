package newsletter

import (
	"context"
	"time"

	"github.com/omnipost/omnipost/domains/post"
)

// Channel is fixed: newsletters always go through the email adapter.
const Channel = "email"

// Newsletter is an email issue sent to the owner's subscriber list. The
// audience is resolved at dispatch time, not at creation time.
type Newsletter struct {
	ID             string      `json:"id"`
	OwnerID        string      `json:"owner_id"`
	Subject        string      `json:"subject"`
	Body           string      `json:"body"`
	Status         post.Status `json:"status"`
	ScheduledAt    time.Time   `json:"scheduled_at"`
	PublishedAt    *time.Time  `json:"published_at,omitempty"`
	FailureReason  string      `json:"failure_reason,omitempty"`
	RecipientCount int         `json:"recipient_count"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type ScheduleRequest struct {
	OwnerID     string    `json:"owner_id"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

type INewsletterUsecase interface {
	Schedule(ctx context.Context, request ScheduleRequest) (Newsletter, error)
	List(ctx context.Context) ([]Newsletter, error)
	GetByID(ctx context.Context, id string) (Newsletter, error)
	Cancel(ctx context.Context, id string) error
	Retry(ctx context.Context, id string) error
}
