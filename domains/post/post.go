package post

import (
	"context"
	"time"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
	StatusFailed    Status = "failed"
)

// Post is a social post scheduled for a single platform channel.
type Post struct {
	ID          string     `json:"id"`
	Channel     string     `json:"channel"`
	Text        string     `json:"text"`
	Hashtags    []string   `json:"hashtags,omitempty"`
	ImageRef    string     `json:"image_ref,omitempty"`
	Status      Status     `json:"status"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ScheduleRequest struct {
	Channel     string    `json:"channel"`
	Text        string    `json:"text"`
	Hashtags    []string  `json:"hashtags,omitempty"`
	ImageRef    string    `json:"image_ref,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

type IPostUsecase interface {
	Schedule(ctx context.Context, request ScheduleRequest) (Post, error)
	List(ctx context.Context) ([]Post, error)
	GetByID(ctx context.Context, id string) (Post, error)
	Cancel(ctx context.Context, id string) error
	Retry(ctx context.Context, id string) error
}
