package repository

import (
	"context"
	"time"

	"github.com/omnipost/omnipost/domains/broadcast"
	"github.com/omnipost/omnipost/domains/newsletter"
	"github.com/omnipost/omnipost/domains/podcast"
	"github.com/omnipost/omnipost/domains/post"
	"github.com/omnipost/omnipost/domains/subscriber"
)

// IPostRepository is the item store for social posts. UpdateIfStatus is the
// conditional transition primitive: the patch is applied only when the row
// still holds the expected status, and the bool reports whether it did.
type IPostRepository interface {
	Create(ctx context.Context, p post.Post) error
	GetByID(ctx context.Context, id string) (post.Post, error)
	List(ctx context.Context) ([]post.Post, error)
	Delete(ctx context.Context, id string) error
	ListDue(ctx context.Context, now time.Time) ([]post.Post, error)
	UpdateIfStatus(ctx context.Context, id string, expected post.Status, patch map[string]any) (bool, error)
}

type INewsletterRepository interface {
	Create(ctx context.Context, n newsletter.Newsletter) error
	GetByID(ctx context.Context, id string) (newsletter.Newsletter, error)
	List(ctx context.Context) ([]newsletter.Newsletter, error)
	Delete(ctx context.Context, id string) error
	ListDue(ctx context.Context, now time.Time) ([]newsletter.Newsletter, error)
	UpdateIfStatus(ctx context.Context, id string, expected post.Status, patch map[string]any) (bool, error)
}

type IPodcastRepository interface {
	Create(ctx context.Context, e podcast.Episode) error
	GetByID(ctx context.Context, id string) (podcast.Episode, error)
	List(ctx context.Context) ([]podcast.Episode, error)
	Delete(ctx context.Context, id string) error
	ListDue(ctx context.Context, now time.Time) ([]podcast.Episode, error)
	UpdateIfStatus(ctx context.Context, id string, expected post.Status, patch map[string]any) (bool, error)
}

// IBroadcastRepository persists broadcasts and their recipient sets.
// ApplyBatch writes one batch drain (recipient statuses, counters, status,
// next batch time) in a single transaction.
type IBroadcastRepository interface {
	Create(ctx context.Context, b broadcast.Broadcast, recipients []broadcast.Recipient) error
	GetByID(ctx context.Context, id string) (broadcast.Broadcast, error)
	List(ctx context.Context) ([]broadcast.Broadcast, error)
	ListDue(ctx context.Context, now time.Time) ([]broadcast.Broadcast, error)
	PendingRecipients(ctx context.Context, id string, limit int) ([]broadcast.Recipient, error)
	Recipients(ctx context.Context, id string) ([]broadcast.Recipient, error)
	ApplyBatch(ctx context.Context, id string, results []broadcast.RecipientResult, nextBatchTime time.Time) (broadcast.Broadcast, error)
	UpdateIfStatus(ctx context.Context, id string, expected broadcast.Status, patch map[string]any) (bool, error)
}

// ISubscriberRepository doubles as the newsletter audience resolver.
type ISubscriberRepository interface {
	subscriber.Resolver
	Create(ctx context.Context, s subscriber.Subscriber) error
	ListByOwner(ctx context.Context, ownerID string) ([]subscriber.Subscriber, error)
	Delete(ctx context.Context, id string) error
}
