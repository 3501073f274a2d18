package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/omnipost/omnipost/domains/publisher"
	"github.com/sirupsen/logrus"
)

// Publisher routes a channel to an operator-supplied HTTP endpoint. The
// endpoint owns the platform protocol; this adapter only speaks JSON over
// POST.
type Publisher struct {
	channel string
	url     string
	client  *http.Client
}

func NewPublisher(channel, url string, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Publisher{
		channel: channel,
		url:     url,
		client:  &http.Client{Timeout: timeout},
	}
}

type itemPayload struct {
	ID         string   `json:"id"`
	Kind       string   `json:"kind"`
	Channel    string   `json:"channel"`
	Subject    string   `json:"subject,omitempty"`
	Text       string   `json:"text,omitempty"`
	Hashtags   []string `json:"hashtags,omitempty"`
	ImageRef   string   `json:"image_ref,omitempty"`
	AudioRef   string   `json:"audio_ref,omitempty"`
	Platforms  []string `json:"platforms,omitempty"`
	Recipients []string `json:"recipients,omitempty"`
}

type publishResponse struct {
	ExternalID     string            `json:"external_id"`
	Delivered      int               `json:"delivered"`
	Failed         int               `json:"failed"`
	PlatformErrors map[string]string `json:"platform_errors,omitempty"`
}

func (p *Publisher) Publish(ctx context.Context, item publisher.Item) (publisher.PublishResult, error) {
	payload := itemPayload{
		ID:         item.ID,
		Kind:       string(item.Kind),
		Channel:    item.Channel,
		Subject:    item.Subject,
		Text:       item.Text,
		Hashtags:   item.Hashtags,
		ImageRef:   item.ImageRef,
		AudioRef:   item.AudioRef,
		Platforms:  item.Platforms,
		Recipients: item.Recipients,
	}

	body, err := p.post(ctx, payload)
	if err != nil {
		return publisher.PublishResult{}, err
	}

	var resp publishResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &resp); err != nil {
			logrus.WithField("channel", p.channel).WithError(err).Debug("[WEBHOOK] Endpoint response is not JSON, treating as accepted")
		}
	}

	result := publisher.PublishResult{
		ExternalID:     resp.ExternalID,
		Delivered:      resp.Delivered,
		Failed:         resp.Failed,
		PlatformErrors: resp.PlatformErrors,
	}
	// An endpoint that accepts the item without per-recipient accounting
	// counts as full delivery.
	if len(item.Recipients) > 0 && result.Delivered == 0 && result.Failed == 0 {
		result.Delivered = len(item.Recipients)
	}
	return result, nil
}

type sendOnePayload struct {
	BroadcastID string `json:"broadcast_id"`
	Message     string `json:"message"`
	ContactRef  string `json:"contact_ref"`
}

func (p *Publisher) SendOne(ctx context.Context, broadcastID, message, contactRef string) error {
	_, err := p.post(ctx, sendOnePayload{
		BroadcastID: broadcastID,
		Message:     message,
		ContactRef:  contactRef,
	})
	return err
}

func (p *Publisher) post(ctx context.Context, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request to channel %s failed: %w", p.channel, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("webhook endpoint for channel %s returned status %d", p.channel, resp.StatusCode)
	}
	return body, nil
}
