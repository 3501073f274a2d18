package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/omnipost/omnipost/domains/newsletter"
	"github.com/omnipost/omnipost/domains/podcast"
	"github.com/omnipost/omnipost/domains/post"
	"github.com/omnipost/omnipost/domains/publisher"
	"github.com/sirupsen/logrus"
)

// dispatchPosts publishes every due social post. Each item succeeds or fails
// on its own; a failing sibling never blocks the rest of the pass.
func (e *Engine) dispatchPosts(ctx context.Context, now time.Time) {
	due, err := e.deps.Posts.ListDue(ctx, now)
	if err != nil {
		logrus.WithError(err).Error("[SCHEDULER] Failed to list due posts")
		return
	}
	for _, p := range due {
		e.dispatchPost(ctx, p)
	}
}

func (e *Engine) dispatchPost(ctx context.Context, p post.Post) {
	log := logrus.WithFields(logrus.Fields{"post_id": p.ID, "channel": p.Channel})

	adapter, ok := e.deps.Registry.Get(p.Channel)
	if !ok {
		atomic.AddInt64(&e.unroutableItems, 1)
		log.Warn("[SCHEDULER] No adapter registered for channel, post stays scheduled")
		return
	}

	result, err := e.publishWithTimeout(ctx, adapter, publisher.Item{
		ID:       p.ID,
		Kind:     publisher.KindPost,
		Channel:  p.Channel,
		Text:     p.Text,
		Hashtags: p.Hashtags,
		ImageRef: p.ImageRef,
	})
	if err != nil {
		e.markPostFailed(ctx, e.deps.Posts, p.ID, log, err)
		return
	}

	publishedAt := e.now()
	ok, err = e.deps.Posts.UpdateIfStatus(ctx, p.ID, post.StatusScheduled, map[string]any{
		"status":       string(post.StatusPublished),
		"published_at": publishedAt,
		"updated_at":   publishedAt,
	})
	if err != nil {
		log.WithError(err).Error("[SCHEDULER] Failed to mark post published")
		return
	}
	if !ok {
		log.Warn("[SCHEDULER] Post left scheduled state mid-dispatch, result discarded")
		return
	}
	atomic.AddInt64(&e.itemsPublished, 1)
	log.WithField("external_id", result.ExternalID).Info("[SCHEDULER] Post published")
}

// dispatchNewsletters resolves each due newsletter's audience at send time
// and applies best-effort delivery: one reached recipient is a publish.
func (e *Engine) dispatchNewsletters(ctx context.Context, now time.Time) {
	due, err := e.deps.Newsletters.ListDue(ctx, now)
	if err != nil {
		logrus.WithError(err).Error("[SCHEDULER] Failed to list due newsletters")
		return
	}
	for _, n := range due {
		e.dispatchNewsletter(ctx, n)
	}
}

func (e *Engine) dispatchNewsletter(ctx context.Context, n newsletter.Newsletter) {
	log := logrus.WithFields(logrus.Fields{"newsletter_id": n.ID, "owner_id": n.OwnerID})

	adapter, ok := e.deps.Registry.Get(newsletter.Channel)
	if !ok {
		atomic.AddInt64(&e.unroutableItems, 1)
		log.Warn("[SCHEDULER] No email adapter registered, newsletter stays scheduled")
		return
	}

	recipients, err := e.deps.Resolver.ResolveRecipients(ctx, n.OwnerID)
	if err != nil {
		// A resolver outage is infrastructure, not content; retry next tick.
		log.WithError(err).Error("[SCHEDULER] Failed to resolve newsletter recipients")
		return
	}
	if len(recipients) == 0 {
		e.markNewsletterFailed(ctx, n.ID, log, "no resolvable recipients")
		return
	}

	result, err := e.publishWithTimeout(ctx, adapter, publisher.Item{
		ID:         n.ID,
		Kind:       publisher.KindNewsletter,
		Channel:    newsletter.Channel,
		Subject:    n.Subject,
		Text:       n.Body,
		Recipients: recipients,
	})
	if err != nil {
		e.markNewsletterFailed(ctx, n.ID, log, err.Error())
		return
	}
	if result.Delivered == 0 {
		e.markNewsletterFailed(ctx, n.ID, log,
			fmt.Sprintf("delivery failed for all %d recipients", len(recipients)))
		return
	}

	publishedAt := e.now()
	ok, err = e.deps.Newsletters.UpdateIfStatus(ctx, n.ID, post.StatusScheduled, map[string]any{
		"status":          string(post.StatusPublished),
		"published_at":    publishedAt,
		"recipient_count": result.Delivered,
		"updated_at":      publishedAt,
	})
	if err != nil {
		log.WithError(err).Error("[SCHEDULER] Failed to mark newsletter published")
		return
	}
	if !ok {
		log.Warn("[SCHEDULER] Newsletter left scheduled state mid-dispatch, result discarded")
		return
	}
	atomic.AddInt64(&e.itemsPublished, 1)
	log.WithFields(logrus.Fields{
		"delivered": result.Delivered,
		"failed":    result.Failed,
	}).Info("[SCHEDULER] Newsletter sent")
}

// dispatchEpisodes publishes due podcast episodes across their target
// platforms. Reaching at least one platform counts as published.
func (e *Engine) dispatchEpisodes(ctx context.Context, now time.Time) {
	due, err := e.deps.Episodes.ListDue(ctx, now)
	if err != nil {
		logrus.WithError(err).Error("[SCHEDULER] Failed to list due episodes")
		return
	}
	for _, ep := range due {
		e.dispatchEpisode(ctx, ep)
	}
}

func (e *Engine) dispatchEpisode(ctx context.Context, ep podcast.Episode) {
	log := logrus.WithFields(logrus.Fields{"episode_id": ep.ID, "platforms": ep.Platforms})

	adapter, ok := e.deps.Registry.Get(podcast.Channel)
	if !ok {
		atomic.AddInt64(&e.unroutableItems, 1)
		log.Warn("[SCHEDULER] No podcast adapter registered, episode stays scheduled")
		return
	}

	result, err := e.publishWithTimeout(ctx, adapter, publisher.Item{
		ID:        ep.ID,
		Kind:      publisher.KindEpisode,
		Channel:   podcast.Channel,
		Subject:   ep.Title,
		Text:      ep.Description,
		AudioRef:  ep.AudioRef,
		Platforms: ep.Platforms,
	})
	if err != nil {
		e.markEpisodeFailed(ctx, ep.ID, log, err)
		return
	}
	if len(ep.Platforms) > 0 && len(result.PlatformErrors) >= len(ep.Platforms) {
		e.markEpisodeFailed(ctx, ep.ID, log,
			fmt.Errorf("distribution failed on all %d platforms", len(ep.Platforms)))
		return
	}
	for platform, msg := range result.PlatformErrors {
		log.WithField("platform", platform).Warnf("[SCHEDULER] Episode distribution failed: %s", msg)
	}

	publishedAt := e.now()
	ok, err = e.deps.Episodes.UpdateIfStatus(ctx, ep.ID, post.StatusScheduled, map[string]any{
		"status":       string(post.StatusPublished),
		"published_at": publishedAt,
		"updated_at":   publishedAt,
	})
	if err != nil {
		log.WithError(err).Error("[SCHEDULER] Failed to mark episode published")
		return
	}
	if !ok {
		log.Warn("[SCHEDULER] Episode left scheduled state mid-dispatch, result discarded")
		return
	}
	atomic.AddInt64(&e.itemsPublished, 1)
	log.WithField("external_id", result.ExternalID).Info("[SCHEDULER] Episode published")
}

// contentRepo is the slice of the store the failure write-back needs.
type contentRepo interface {
	UpdateIfStatus(ctx context.Context, id string, expected post.Status, patch map[string]any) (bool, error)
}

func (e *Engine) markPostFailed(ctx context.Context, repo contentRepo, id string, log *logrus.Entry, cause error) {
	ok, err := repo.UpdateIfStatus(ctx, id, post.StatusScheduled, map[string]any{
		"status":     string(post.StatusFailed),
		"updated_at": e.now(),
	})
	if err != nil {
		log.WithError(err).Error("[SCHEDULER] Failed to mark item failed")
		return
	}
	if ok {
		atomic.AddInt64(&e.itemsFailed, 1)
		log.WithError(cause).Error("[SCHEDULER] Publish failed, item marked failed")
	}
}

func (e *Engine) markEpisodeFailed(ctx context.Context, id string, log *logrus.Entry, cause error) {
	e.markPostFailed(ctx, e.deps.Episodes, id, log, cause)
}

func (e *Engine) markNewsletterFailed(ctx context.Context, id string, log *logrus.Entry, reason string) {
	ok, err := e.deps.Newsletters.UpdateIfStatus(ctx, id, post.StatusScheduled, map[string]any{
		"status":         string(post.StatusFailed),
		"failure_reason": reason,
		"updated_at":     e.now(),
	})
	if err != nil {
		log.WithError(err).Error("[SCHEDULER] Failed to mark newsletter failed")
		return
	}
	if ok {
		atomic.AddInt64(&e.itemsFailed, 1)
		log.Errorf("[SCHEDULER] Newsletter failed: %s", reason)
	}
}
