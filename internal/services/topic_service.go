package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TopicService lists and creates topics.
type TopicService struct {
	DB *gorm.DB
}

// List returns every topic.
func (s *TopicService) List(ctx context.Context) ([]domain.Topic, error) {
	ctx, span := otel.Tracer("services/TopicService").Start(ctx, "List")
	defer span.End()
	return repo.ListTopics(ctx, s.DB)
}

// Create inserts a topic from {slug, description?}. A taken slug surfaces as
// the store's unique violation.
func (s *TopicService) Create(ctx context.Context, body Payload) (*domain.Topic, error) {
	ctx, span := otel.Tracer("services/TopicService").Start(ctx, "Create")
	defer span.End()

	slug, err := body.String("slug", ErrIncompleteTopic)
	if err != nil {
		return nil, err
	}
	desc, err := body.OptionalString("description")
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("topic.slug", slug))
	return repo.CreateTopic(ctx, s.DB, slug, desc)
}

// UserService reads users.
type UserService struct {
	DB *gorm.DB
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	ctx, span := otel.Tracer("services/UserService").Start(ctx, "List")
	defer span.End()
	return repo.ListUsers(ctx, s.DB)
}

// Get returns the user named username.
func (s *UserService) Get(ctx context.Context, username string) (*domain.User, error) {
	ctx, span := otel.Tracer("services/UserService").Start(ctx, "Get",
		trace.WithAttributes(attribute.String("user.username", username)))
	defer span.End()

	u, err := repo.GetUser(ctx, s.DB, username)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}
