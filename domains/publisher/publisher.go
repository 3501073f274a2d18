package publisher

import (
	"context"
)

// ItemKind identifies which schedulable entity an Item was built from.
type ItemKind string

const (
	KindPost       ItemKind = "post"
	KindNewsletter ItemKind = "newsletter"
	KindEpisode    ItemKind = "episode"
)

// Item is the channel-neutral payload handed to an adapter. Only the fields
// relevant to the item's kind are populated.
type Item struct {
	ID         string
	Kind       ItemKind
	Channel    string
	Subject    string
	Text       string
	Hashtags   []string
	ImageRef   string
	AudioRef   string
	Platforms  []string // podcast distribution targets
	Recipients []string // newsletter audience, resolved at send time
}

// PublishResult is the aggregate outcome reported by an adapter. For
// multi-recipient or multi-platform publishes, Delivered and Failed count
// the individual sub-sends; single-target channels report Delivered=1.
type PublishResult struct {
	ExternalID     string
	Delivered      int
	Failed         int
	PlatformErrors map[string]string // podcast: platform -> error message
}

// Publisher is the contract every channel adapter satisfies. Adapter
// internals (OAuth, SMTP, signing) are not this module's concern.
type Publisher interface {
	// Publish delivers a due item. It must attempt every recipient or
	// platform independently and report the aggregate; it returns an error
	// only when the publish failed as a whole.
	Publish(ctx context.Context, item Item) (PublishResult, error)

	// SendOne delivers a broadcast message to a single recipient.
	SendOne(ctx context.Context, broadcastID, message, contactRef string) error
}
