package repository

import (
	"context"
	"time"

	"github.com/omnipost/omnipost/domains/newsletter"
	"github.com/omnipost/omnipost/domains/podcast"
	"github.com/omnipost/omnipost/domains/post"
	pkgError "github.com/omnipost/omnipost/pkg/error"
	"gorm.io/gorm"
)

// --- Posts ---

type PostGormRepository struct {
	db *gorm.DB
}

func NewPostGormRepository(db *gorm.DB) *PostGormRepository {
	return &PostGormRepository{db: db}
}

func (r *PostGormRepository) Create(ctx context.Context, p post.Post) error {
	model := toPostModel(p)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *PostGormRepository) GetByID(ctx context.Context, id string) (post.Post, error) {
	var m postModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return post.Post{}, pkgError.NotFoundError("post " + id + " not found")
		}
		return post.Post{}, err
	}
	return fromPostModel(m), nil
}

func (r *PostGormRepository) List(ctx context.Context) ([]post.Post, error) {
	var models []postModel
	if err := r.db.WithContext(ctx).Order("scheduled_at").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]post.Post, len(models))
	for i, m := range models {
		res[i] = fromPostModel(m)
	}
	return res, nil
}

func (r *PostGormRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&postModel{}, "id = ?", id).Error
}

func (r *PostGormRepository) ListDue(ctx context.Context, now time.Time) ([]post.Post, error) {
	var models []postModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", string(post.StatusScheduled), now.UTC()).
		Order("scheduled_at").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	res := make([]post.Post, len(models))
	for i, m := range models {
		res[i] = fromPostModel(m)
	}
	return res, nil
}

func (r *PostGormRepository) UpdateIfStatus(ctx context.Context, id string, expected post.Status, patch map[string]any) (bool, error) {
	return updateIfStatus(r.db.WithContext(ctx).Model(&postModel{}), id, string(expected), patch)
}

// --- Newsletters ---

type NewsletterGormRepository struct {
	db *gorm.DB
}

func NewNewsletterGormRepository(db *gorm.DB) *NewsletterGormRepository {
	return &NewsletterGormRepository{db: db}
}

func (r *NewsletterGormRepository) Create(ctx context.Context, n newsletter.Newsletter) error {
	model := toNewsletterModel(n)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *NewsletterGormRepository) GetByID(ctx context.Context, id string) (newsletter.Newsletter, error) {
	var m newsletterModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return newsletter.Newsletter{}, pkgError.NotFoundError("newsletter " + id + " not found")
		}
		return newsletter.Newsletter{}, err
	}
	return fromNewsletterModel(m), nil
}

func (r *NewsletterGormRepository) List(ctx context.Context) ([]newsletter.Newsletter, error) {
	var models []newsletterModel
	if err := r.db.WithContext(ctx).Order("scheduled_at").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]newsletter.Newsletter, len(models))
	for i, m := range models {
		res[i] = fromNewsletterModel(m)
	}
	return res, nil
}

func (r *NewsletterGormRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&newsletterModel{}, "id = ?", id).Error
}

func (r *NewsletterGormRepository) ListDue(ctx context.Context, now time.Time) ([]newsletter.Newsletter, error) {
	var models []newsletterModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", string(post.StatusScheduled), now.UTC()).
		Order("scheduled_at").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	res := make([]newsletter.Newsletter, len(models))
	for i, m := range models {
		res[i] = fromNewsletterModel(m)
	}
	return res, nil
}

func (r *NewsletterGormRepository) UpdateIfStatus(ctx context.Context, id string, expected post.Status, patch map[string]any) (bool, error) {
	return updateIfStatus(r.db.WithContext(ctx).Model(&newsletterModel{}), id, string(expected), patch)
}

// --- Podcast Episodes ---

type PodcastGormRepository struct {
	db *gorm.DB
}

func NewPodcastGormRepository(db *gorm.DB) *PodcastGormRepository {
	return &PodcastGormRepository{db: db}
}

func (r *PodcastGormRepository) Create(ctx context.Context, e podcast.Episode) error {
	model := toEpisodeModel(e)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *PodcastGormRepository) GetByID(ctx context.Context, id string) (podcast.Episode, error) {
	var m episodeModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return podcast.Episode{}, pkgError.NotFoundError("episode " + id + " not found")
		}
		return podcast.Episode{}, err
	}
	return fromEpisodeModel(m), nil
}

func (r *PodcastGormRepository) List(ctx context.Context) ([]podcast.Episode, error) {
	var models []episodeModel
	if err := r.db.WithContext(ctx).Order("scheduled_at").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]podcast.Episode, len(models))
	for i, m := range models {
		res[i] = fromEpisodeModel(m)
	}
	return res, nil
}

func (r *PodcastGormRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&episodeModel{}, "id = ?", id).Error
}

func (r *PodcastGormRepository) ListDue(ctx context.Context, now time.Time) ([]podcast.Episode, error) {
	var models []episodeModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", string(post.StatusScheduled), now.UTC()).
		Order("scheduled_at").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	res := make([]podcast.Episode, len(models))
	for i, m := range models {
		res[i] = fromEpisodeModel(m)
	}
	return res, nil
}

func (r *PodcastGormRepository) UpdateIfStatus(ctx context.Context, id string, expected post.Status, patch map[string]any) (bool, error) {
	return updateIfStatus(r.db.WithContext(ctx).Model(&episodeModel{}), id, string(expected), patch)
}

// updateIfStatus applies the patch only when the row still holds the
// expected status. RowsAffected tells whether the transition happened.
func updateIfStatus(tx *gorm.DB, id, expected string, patch map[string]any) (bool, error) {
	res := tx.Where("id = ? AND status = ?", id, expected).Updates(patch)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
