package subscriber

import (
	"context"
	"time"
)

// Subscriber is a member of an owner's mailing list.
type Subscriber struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateRequest struct {
	OwnerID string `json:"owner_id"`
	Email   string `json:"email"`
}

type ISubscriberUsecase interface {
	Create(ctx context.Context, request CreateRequest) (Subscriber, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Subscriber, error)
	Delete(ctx context.Context, id string) error
}

// Resolver expands a newsletter audience at send time so an issue always
// reflects the subscriber list as of dispatch, not as of creation.
type Resolver interface {
	ResolveRecipients(ctx context.Context, ownerID string) ([]string, error)
}
