package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound so callers can use either.
var ErrNotFound = gorm.ErrRecordNotFound

// ListTopics returns every topic ordered by slug.
func ListTopics(ctx context.Context, db *gorm.DB) ([]domain.Topic, error) {
	out := []domain.Topic{}
	err := db.WithContext(ctx).Order("slug ASC").Find(&out).Error
	return out, err
}

// TopicExists reports whether a topic with the given slug exists.
func TopicExists(ctx context.Context, db *gorm.DB, slug string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Topic{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, err
}

// CreateTopic inserts a topic. A duplicate slug surfaces as the store's
// unique-violation error.
func CreateTopic(ctx context.Context, db *gorm.DB, slug, description string) (*domain.Topic, error) {
	t := &domain.Topic{Slug: slug, Description: description}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}
