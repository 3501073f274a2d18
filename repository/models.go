package repository

import (
	"database/sql"
	"strings"
	"time"

	"github.com/omnipost/omnipost/domains/broadcast"
	"github.com/omnipost/omnipost/domains/newsletter"
	"github.com/omnipost/omnipost/domains/podcast"
	"github.com/omnipost/omnipost/domains/post"
	"github.com/omnipost/omnipost/domains/subscriber"
	"gorm.io/gorm"
)

// --- Persistence Models ---

type postModel struct {
	ID          string         `gorm:"primaryKey;column:id"`
	Channel     string         `gorm:"column:channel;not null"`
	Text        string         `gorm:"column:text;not null"`
	Hashtags    sql.NullString `gorm:"column:hashtags"`
	ImageRef    sql.NullString `gorm:"column:image_ref"`
	Status      string         `gorm:"column:status;default:'draft';index:idx_posts_due,priority:1"`
	ScheduledAt time.Time      `gorm:"column:scheduled_at;not null;index:idx_posts_due,priority:2"`
	PublishedAt *time.Time     `gorm:"column:published_at"`
	CreatedAt   time.Time      `gorm:"not null"`
	UpdatedAt   time.Time      `gorm:"not null"`
}

func (postModel) TableName() string { return "posts" }

type newsletterModel struct {
	ID             string         `gorm:"primaryKey;column:id"`
	OwnerID        string         `gorm:"column:owner_id;not null;index"`
	Subject        string         `gorm:"column:subject;not null"`
	Body           string         `gorm:"column:body;not null"`
	Status         string         `gorm:"column:status;default:'draft';index:idx_newsletters_due,priority:1"`
	ScheduledAt    time.Time      `gorm:"column:scheduled_at;not null;index:idx_newsletters_due,priority:2"`
	PublishedAt    *time.Time     `gorm:"column:published_at"`
	FailureReason  sql.NullString `gorm:"column:failure_reason"`
	RecipientCount int            `gorm:"column:recipient_count;default:0"`
	CreatedAt      time.Time      `gorm:"not null"`
	UpdatedAt      time.Time      `gorm:"not null"`
}

func (newsletterModel) TableName() string { return "newsletters" }

type episodeModel struct {
	ID          string         `gorm:"primaryKey;column:id"`
	Title       string         `gorm:"column:title;not null"`
	Description sql.NullString `gorm:"column:description"`
	AudioRef    string         `gorm:"column:audio_ref;not null"`
	Platforms   string         `gorm:"column:platforms;not null"`
	Status      string         `gorm:"column:status;default:'draft';index:idx_episodes_due,priority:1"`
	ScheduledAt time.Time      `gorm:"column:scheduled_at;not null;index:idx_episodes_due,priority:2"`
	PublishedAt *time.Time     `gorm:"column:published_at"`
	CreatedAt   time.Time      `gorm:"not null"`
	UpdatedAt   time.Time      `gorm:"not null"`
}

func (episodeModel) TableName() string { return "podcast_episodes" }

type broadcastModel struct {
	ID                   string    `gorm:"primaryKey;column:id"`
	Channel              string    `gorm:"column:channel;not null"`
	Message              string    `gorm:"column:message;not null"`
	Status               string    `gorm:"column:status;default:'draft';index:idx_broadcasts_due,priority:1"`
	BatchSize            int       `gorm:"column:batch_size;not null"`
	BatchIntervalMinutes int       `gorm:"column:batch_interval_minutes;not null"`
	NextBatchTime        time.Time `gorm:"column:next_batch_time;not null;index:idx_broadcasts_due,priority:2"`
	TotalRecipients      int       `gorm:"column:total_recipients;not null"`
	ProcessedCount       int       `gorm:"column:processed_count;default:0"`
	SuccessCount         int       `gorm:"column:success_count;default:0"`
	FailCount            int       `gorm:"column:fail_count;default:0"`
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
}

func (broadcastModel) TableName() string { return "broadcasts" }

type recipientModel struct {
	ID          string         `gorm:"primaryKey;column:id"`
	BroadcastID string         `gorm:"column:broadcast_id;not null;uniqueIndex:idx_broadcast_position,priority:1;index:idx_recipients_pending,priority:1"`
	Position    int            `gorm:"column:position;not null;uniqueIndex:idx_broadcast_position,priority:2"`
	ContactRef  string         `gorm:"column:contact_ref;not null"`
	Status      string         `gorm:"column:status;default:'pending';index:idx_recipients_pending,priority:2"`
	SentAt      *time.Time     `gorm:"column:sent_at"`
	Error       sql.NullString `gorm:"column:error"`
}

func (recipientModel) TableName() string { return "broadcast_recipients" }

type subscriberModel struct {
	ID        string    `gorm:"primaryKey;column:id"`
	OwnerID   string    `gorm:"column:owner_id;not null;uniqueIndex:idx_owner_email,priority:1"`
	Email     string    `gorm:"column:email;not null;uniqueIndex:idx_owner_email,priority:2"`
	Active    bool      `gorm:"column:active;default:true"`
	CreatedAt time.Time `gorm:"not null"`
}

func (subscriberModel) TableName() string { return "subscribers" }

// AutoMigrate creates or updates every table the item store owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&postModel{},
		&newsletterModel{},
		&episodeModel{},
		&broadcastModel{},
		&recipientModel{},
		&subscriberModel{},
	)
}

// --- Mappers ---

func toPostModel(p post.Post) postModel {
	return postModel{
		ID:          p.ID,
		Channel:     p.Channel,
		Text:        p.Text,
		Hashtags:    toNullString(strings.Join(p.Hashtags, ",")),
		ImageRef:    toNullString(p.ImageRef),
		Status:      string(p.Status),
		ScheduledAt: p.ScheduledAt.UTC(),
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func fromPostModel(m postModel) post.Post {
	return post.Post{
		ID:          m.ID,
		Channel:     m.Channel,
		Text:        m.Text,
		Hashtags:    splitCSV(m.Hashtags.String),
		ImageRef:    m.ImageRef.String,
		Status:      post.Status(m.Status),
		ScheduledAt: m.ScheduledAt,
		PublishedAt: m.PublishedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toNewsletterModel(n newsletter.Newsletter) newsletterModel {
	return newsletterModel{
		ID:             n.ID,
		OwnerID:        n.OwnerID,
		Subject:        n.Subject,
		Body:           n.Body,
		Status:         string(n.Status),
		ScheduledAt:    n.ScheduledAt.UTC(),
		PublishedAt:    n.PublishedAt,
		FailureReason:  toNullString(n.FailureReason),
		RecipientCount: n.RecipientCount,
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      n.UpdatedAt,
	}
}

func fromNewsletterModel(m newsletterModel) newsletter.Newsletter {
	return newsletter.Newsletter{
		ID:             m.ID,
		OwnerID:        m.OwnerID,
		Subject:        m.Subject,
		Body:           m.Body,
		Status:         post.Status(m.Status),
		ScheduledAt:    m.ScheduledAt,
		PublishedAt:    m.PublishedAt,
		FailureReason:  m.FailureReason.String,
		RecipientCount: m.RecipientCount,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toEpisodeModel(e podcast.Episode) episodeModel {
	return episodeModel{
		ID:          e.ID,
		Title:       e.Title,
		Description: toNullString(e.Description),
		AudioRef:    e.AudioRef,
		Platforms:   strings.Join(e.Platforms, ","),
		Status:      string(e.Status),
		ScheduledAt: e.ScheduledAt.UTC(),
		PublishedAt: e.PublishedAt,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func fromEpisodeModel(m episodeModel) podcast.Episode {
	return podcast.Episode{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description.String,
		AudioRef:    m.AudioRef,
		Platforms:   splitCSV(m.Platforms),
		Status:      post.Status(m.Status),
		ScheduledAt: m.ScheduledAt,
		PublishedAt: m.PublishedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toBroadcastModel(b broadcast.Broadcast) broadcastModel {
	return broadcastModel{
		ID:                   b.ID,
		Channel:              b.Channel,
		Message:              b.Message,
		Status:               string(b.Status),
		BatchSize:            b.BatchSize,
		BatchIntervalMinutes: b.BatchIntervalMinutes,
		NextBatchTime:        b.NextBatchTime.UTC(),
		TotalRecipients:      b.TotalRecipients,
		ProcessedCount:       b.ProcessedCount,
		SuccessCount:         b.SuccessCount,
		FailCount:            b.FailCount,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}
}

func fromBroadcastModel(m broadcastModel) broadcast.Broadcast {
	return broadcast.Broadcast{
		ID:                   m.ID,
		Channel:              m.Channel,
		Message:              m.Message,
		Status:               broadcast.Status(m.Status),
		BatchSize:            m.BatchSize,
		BatchIntervalMinutes: m.BatchIntervalMinutes,
		NextBatchTime:        m.NextBatchTime,
		TotalRecipients:      m.TotalRecipients,
		ProcessedCount:       m.ProcessedCount,
		SuccessCount:         m.SuccessCount,
		FailCount:            m.FailCount,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func toRecipientModel(broadcastID string, r broadcast.Recipient) recipientModel {
	return recipientModel{
		ID:          r.ID,
		BroadcastID: broadcastID,
		Position:    r.Position,
		ContactRef:  r.ContactRef,
		Status:      string(r.Status),
		SentAt:      r.SentAt,
		Error:       toNullString(r.Error),
	}
}

func fromRecipientModel(m recipientModel) broadcast.Recipient {
	return broadcast.Recipient{
		ID:         m.ID,
		Position:   m.Position,
		ContactRef: m.ContactRef,
		Status:     broadcast.RecipientStatus(m.Status),
		SentAt:     m.SentAt,
		Error:      m.Error.String,
	}
}

func toSubscriberModel(s subscriber.Subscriber) subscriberModel {
	return subscriberModel{
		ID:        s.ID,
		OwnerID:   s.OwnerID,
		Email:     s.Email,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
	}
}

func fromSubscriberModel(m subscriberModel) subscriber.Subscriber {
	return subscriber.Subscriber{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Email:     m.Email,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
	}
}

// --- Helpers ---

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
