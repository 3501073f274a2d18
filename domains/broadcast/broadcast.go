package broadcast

import (
	"context"
	"time"
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusScheduled  Status = "scheduled"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusPaused     Status = "paused"
	StatusFailed     Status = "failed"
)

type RecipientStatus string

const (
	RecipientPending RecipientStatus = "pending"
	RecipientSent    RecipientStatus = "sent"
	RecipientFailed  RecipientStatus = "failed"
)

// Recipient is one member of a broadcast's audience. Position fixes the FIFO
// drain order; membership is immutable once the broadcast is created.
type Recipient struct {
	ID         string          `json:"id"`
	Position   int             `json:"position"`
	ContactRef string          `json:"contact_ref"`
	Status     RecipientStatus `json:"status"`
	SentAt     *time.Time      `json:"sent_at,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// Broadcast is a bulk fan-out of one message to many recipients, drained in
// rate-limited batches over time.
type Broadcast struct {
	ID                   string    `json:"id"`
	Channel              string    `json:"channel"`
	Message              string    `json:"message"`
	Status               Status    `json:"status"`
	BatchSize            int       `json:"batch_size"`
	BatchIntervalMinutes int       `json:"batch_interval_minutes"`
	NextBatchTime        time.Time `json:"next_batch_time"`
	TotalRecipients      int       `json:"total_recipients"`
	ProcessedCount       int       `json:"processed_count"`
	SuccessCount         int       `json:"success_count"`
	FailCount            int       `json:"fail_count"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// RecipientResult records the outcome of one send inside a batch drain.
type RecipientResult struct {
	RecipientID string
	OK          bool
	Error       string
	SentAt      time.Time
}

type CreateRequest struct {
	Channel              string    `json:"channel,omitempty"`
	Message              string    `json:"message"`
	Recipients           []string  `json:"recipients"`
	ScheduledAt          time.Time `json:"scheduled_at"`
	BatchSize            int       `json:"batch_size,omitempty"`
	BatchIntervalMinutes int       `json:"batch_interval_minutes,omitempty"`
}

type IBroadcastUsecase interface {
	Create(ctx context.Context, request CreateRequest) (Broadcast, error)
	List(ctx context.Context) ([]Broadcast, error)
	GetByID(ctx context.Context, id string) (Broadcast, error)
	Recipients(ctx context.Context, id string) ([]Recipient, error)
	Pause(ctx context.Context, id string) error
	Resume(ctx context.Context, id string) error
}
