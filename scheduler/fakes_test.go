package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/omnipost/omnipost/domains/broadcast"
	"github.com/omnipost/omnipost/domains/newsletter"
	"github.com/omnipost/omnipost/domains/podcast"
	"github.com/omnipost/omnipost/domains/post"
	"github.com/omnipost/omnipost/domains/publisher"
	pkgError "github.com/omnipost/omnipost/pkg/error"
)

// In-memory stand-ins for the item store, mirroring the conditional update
// semantics of the gorm repositories.

type fakePostRepo struct {
	mu    sync.Mutex
	items map[string]*post.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{items: map[string]*post.Post{}}
}

func (r *fakePostRepo) Create(_ context.Context, p post.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.ID] = &p
	return nil
}

func (r *fakePostRepo) GetByID(_ context.Context, id string) (post.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return post.Post{}, pkgError.NotFoundError("post not found")
	}
	return *p, nil
}

func (r *fakePostRepo) List(_ context.Context) ([]post.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]post.Post, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePostRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *fakePostRepo) ListDue(_ context.Context, now time.Time) ([]post.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []post.Post
	for _, p := range r.items {
		if p.Status == post.StatusScheduled && !p.ScheduledAt.After(now) {
			due = append(due, *p)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledAt.Before(due[j].ScheduledAt) })
	return due, nil
}

func (r *fakePostRepo) UpdateIfStatus(_ context.Context, id string, expected post.Status, patch map[string]any) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok || p.Status != expected {
		return false, nil
	}
	applyContentPatch(&p.Status, &p.PublishedAt, patch)
	return true, nil
}

type fakeNewsletterRepo struct {
	mu    sync.Mutex
	items map[string]*newsletter.Newsletter
}

func newFakeNewsletterRepo() *fakeNewsletterRepo {
	return &fakeNewsletterRepo{items: map[string]*newsletter.Newsletter{}}
}

func (r *fakeNewsletterRepo) Create(_ context.Context, n newsletter.Newsletter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[n.ID] = &n
	return nil
}

func (r *fakeNewsletterRepo) GetByID(_ context.Context, id string) (newsletter.Newsletter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return newsletter.Newsletter{}, pkgError.NotFoundError("newsletter not found")
	}
	return *n, nil
}

func (r *fakeNewsletterRepo) List(_ context.Context) ([]newsletter.Newsletter, error) {
	return nil, nil
}

func (r *fakeNewsletterRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *fakeNewsletterRepo) ListDue(_ context.Context, now time.Time) ([]newsletter.Newsletter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []newsletter.Newsletter
	for _, n := range r.items {
		if n.Status == post.StatusScheduled && !n.ScheduledAt.After(now) {
			due = append(due, *n)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledAt.Before(due[j].ScheduledAt) })
	return due, nil
}

func (r *fakeNewsletterRepo) UpdateIfStatus(_ context.Context, id string, expected post.Status, patch map[string]any) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok || n.Status != expected {
		return false, nil
	}
	applyContentPatch(&n.Status, &n.PublishedAt, patch)
	if reason, ok := patch["failure_reason"].(string); ok {
		n.FailureReason = reason
	}
	if count, ok := patch["recipient_count"].(int); ok {
		n.RecipientCount = count
	}
	return true, nil
}

type fakePodcastRepo struct {
	mu    sync.Mutex
	items map[string]*podcast.Episode
}

func newFakePodcastRepo() *fakePodcastRepo {
	return &fakePodcastRepo{items: map[string]*podcast.Episode{}}
}

func (r *fakePodcastRepo) Create(_ context.Context, e podcast.Episode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[e.ID] = &e
	return nil
}

func (r *fakePodcastRepo) GetByID(_ context.Context, id string) (podcast.Episode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return podcast.Episode{}, pkgError.NotFoundError("episode not found")
	}
	return *e, nil
}

func (r *fakePodcastRepo) List(_ context.Context) ([]podcast.Episode, error) { return nil, nil }

func (r *fakePodcastRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *fakePodcastRepo) ListDue(_ context.Context, now time.Time) ([]podcast.Episode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []podcast.Episode
	for _, e := range r.items {
		if e.Status == post.StatusScheduled && !e.ScheduledAt.After(now) {
			due = append(due, *e)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledAt.Before(due[j].ScheduledAt) })
	return due, nil
}

func (r *fakePodcastRepo) UpdateIfStatus(_ context.Context, id string, expected post.Status, patch map[string]any) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok || e.Status != expected {
		return false, nil
	}
	applyContentPatch(&e.Status, &e.PublishedAt, patch)
	return true, nil
}

func applyContentPatch(status *post.Status, publishedAt **time.Time, patch map[string]any) {
	if s, ok := patch["status"].(string); ok {
		*status = post.Status(s)
	}
	if at, ok := patch["published_at"].(time.Time); ok {
		t := at
		*publishedAt = &t
	}
}

type fakeBroadcastRepo struct {
	mu         sync.Mutex
	items      map[string]*broadcast.Broadcast
	recipients map[string][]*broadcast.Recipient
}

func newFakeBroadcastRepo() *fakeBroadcastRepo {
	return &fakeBroadcastRepo{
		items:      map[string]*broadcast.Broadcast{},
		recipients: map[string][]*broadcast.Recipient{},
	}
}

func (r *fakeBroadcastRepo) Create(_ context.Context, b broadcast.Broadcast, recipients []broadcast.Recipient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[b.ID] = &b
	for i := range recipients {
		rec := recipients[i]
		r.recipients[b.ID] = append(r.recipients[b.ID], &rec)
	}
	return nil
}

func (r *fakeBroadcastRepo) GetByID(_ context.Context, id string) (broadcast.Broadcast, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return broadcast.Broadcast{}, pkgError.NotFoundError("broadcast not found")
	}
	return *b, nil
}

func (r *fakeBroadcastRepo) List(_ context.Context) ([]broadcast.Broadcast, error) { return nil, nil }

func (r *fakeBroadcastRepo) ListDue(_ context.Context, now time.Time) ([]broadcast.Broadcast, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []broadcast.Broadcast
	for _, b := range r.items {
		live := b.Status == broadcast.StatusScheduled || b.Status == broadcast.StatusProcessing
		if live && !b.NextBatchTime.After(now) {
			due = append(due, *b)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextBatchTime.Before(due[j].NextBatchTime) })
	return due, nil
}

func (r *fakeBroadcastRepo) PendingRecipients(_ context.Context, id string, limit int) ([]broadcast.Recipient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []broadcast.Recipient
	for _, rec := range r.recipients[id] {
		if rec.Status == broadcast.RecipientPending {
			pending = append(pending, *rec)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Position < pending[j].Position })
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (r *fakeBroadcastRepo) Recipients(_ context.Context, id string) ([]broadcast.Recipient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]broadcast.Recipient, 0, len(r.recipients[id]))
	for _, rec := range r.recipients[id] {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeBroadcastRepo) ApplyBatch(_ context.Context, id string, results []broadcast.RecipientResult, nextBatchTime time.Time) (broadcast.Broadcast, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return broadcast.Broadcast{}, pkgError.NotFoundError("broadcast not found")
	}
	byID := map[string]*broadcast.Recipient{}
	for _, rec := range r.recipients[id] {
		byID[rec.ID] = rec
	}
	for _, res := range results {
		rec, ok := byID[res.RecipientID]
		if !ok || rec.Status != broadcast.RecipientPending {
			continue
		}
		if res.OK {
			rec.Status = broadcast.RecipientSent
			at := res.SentAt
			rec.SentAt = &at
		} else {
			rec.Status = broadcast.RecipientFailed
			rec.Error = res.Error
		}
	}
	success, fail := 0, 0
	for _, rec := range r.recipients[id] {
		switch rec.Status {
		case broadcast.RecipientSent:
			success++
		case broadcast.RecipientFailed:
			fail++
		}
	}
	b.SuccessCount = success
	b.FailCount = fail
	b.ProcessedCount = success + fail
	if b.ProcessedCount == b.TotalRecipients {
		b.Status = broadcast.StatusCompleted
	} else if b.Status == broadcast.StatusScheduled || b.Status == broadcast.StatusProcessing {
		b.Status = broadcast.StatusProcessing
		b.NextBatchTime = nextBatchTime
	}
	return *b, nil
}

func (r *fakeBroadcastRepo) UpdateIfStatus(_ context.Context, id string, expected broadcast.Status, patch map[string]any) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok || b.Status != expected {
		return false, nil
	}
	if s, ok := patch["status"].(string); ok {
		b.Status = broadcast.Status(s)
	}
	if at, ok := patch["next_batch_time"].(time.Time); ok {
		b.NextBatchTime = at
	}
	return true, nil
}

type fakeResolver struct {
	recipients []string
	err        error
}

func (r *fakeResolver) ResolveRecipients(_ context.Context, _ string) ([]string, error) {
	return r.recipients, r.err
}

// fakeAdapter records every call and replays scripted outcomes.
type fakeAdapter struct {
	mu           sync.Mutex
	published    []publisher.Item
	sent         []string
	publishErr   error
	result       publisher.PublishResult
	sendErrFor   map[string]error
	publishDelay time.Duration
}

func (a *fakeAdapter) Publish(ctx context.Context, item publisher.Item) (publisher.PublishResult, error) {
	if a.publishDelay > 0 {
		select {
		case <-time.After(a.publishDelay):
		case <-ctx.Done():
			return publisher.PublishResult{}, ctx.Err()
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.published = append(a.published, item)
	if a.publishErr != nil {
		return publisher.PublishResult{}, a.publishErr
	}
	return a.result, nil
}

func (a *fakeAdapter) SendOne(_ context.Context, _ string, _ string, contactRef string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sent = append(a.sent, contactRef)
	if err, ok := a.sendErrFor[contactRef]; ok {
		return err
	}
	return nil
}

var errAdapterDown = errors.New("platform rejected the item")
