// Package services – ArticleService
//
// This file implements ArticleService, the application-level component that
// owns listing, retrieval, voting, creation and deletion of articles. It
// validates every input before the store is queried, tells "does not exist"
// apart from "exists but is empty", and makes creates idempotent when the
// client supplies a key.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// carry article identifiers and listing parameters where applicable.
package services

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/apperr"
	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ScopeArticles is the idempotency scope of article creation.
const ScopeArticles = "article"

// ArticleList is one page of the article listing.
type ArticleList struct {
	Articles   []domain.Article `json:"articles"`
	TotalCount int64            `json:"total_count"`
	Msg        string           `json:"msg,omitempty"`
}

// ArticleService coordinates article persistence.
type ArticleService struct {
	DB             *gorm.DB
	DefaultLimit   int
	IdempotencyTTL time.Duration
}

// ParseID converts a path parameter into a numeric id.
func ParseID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}

// List returns the page of articles described by p. A topic filter naming an
// unknown topic is a 404; a known topic without articles is an empty page
// with an explanatory message.
func (s *ArticleService) List(ctx context.Context, p ListParams) (*ArticleList, error) {
	tr := otel.Tracer("services/ArticleService")
	ctx, span := tr.Start(ctx, "List")
	defer span.End()

	q, err := ParseListQuery(p, s.DefaultLimit)
	if err != nil {
		return nil, err
	}
	topic := ""
	if q.Topic != nil {
		topic = *q.Topic
	}
	span.SetAttributes(
		attribute.String("topic", topic),
		attribute.String("sort_by", q.SortBy),
		attribute.String("order", q.Order),
		attribute.Int("limit", q.Limit),
		attribute.Int("page", q.Page),
	)

	if topic != "" {
		ok, err := repo.TopicExists(ctx, s.DB, topic)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrTopicNotFound
		}
	}

	total, err := repo.CountArticles(ctx, s.DB, topic)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		out := &ArticleList{Articles: []domain.Article{}}
		if topic != "" {
			out.Msg = "No articles for this topic"
		}
		return out, nil
	}

	items, err := repo.ListArticles(ctx, s.DB, repo.ArticleQuery{
		Topic:  topic,
		SortBy: q.SortBy,
		Desc:   q.Desc(),
		Offset: q.Offset(),
		Limit:  q.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &ArticleList{Articles: items, TotalCount: total}, nil
}

// Get returns one article with its comment count.
func (s *ArticleService) Get(ctx context.Context, id int) (*domain.Article, error) {
	tr := otel.Tracer("services/ArticleService")
	ctx, span := tr.Start(ctx, "Get", trace.WithAttributes(attribute.Int("article.id", id)))
	defer span.End()

	a, err := repo.GetArticle(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrArticleNotFound
	}
	return a, err
}

// Vote applies body's inc_votes to the article and returns the updated row.
func (s *ArticleService) Vote(ctx context.Context, id int, body Payload) (*domain.Article, error) {
	tr := otel.Tracer("services/ArticleService")
	ctx, span := tr.Start(ctx, "Vote", trace.WithAttributes(attribute.Int("article.id", id)))
	defer span.End()

	inc, err := body.Int("inc_votes", ErrIncVotesMissing)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("inc_votes", inc))

	a, err := repo.IncrementArticleVotes(ctx, s.DB, id, inc)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrArticleNotFound
	}
	return a, err
}

// articleInput extracts and checks the fields of a new article. Presence is
// checked for every field before types, so a body missing one field and
// mistyping another reports the missing field.
func articleInput(body Payload) (*domain.Article, error) {
	fields := []string{"author", "title", "body", "topic"}
	vals := make(map[string]string, len(fields))
	var typeErr error
	for _, f := range fields {
		v, err := body.String(f, ErrIncompleteArticle)
		switch {
		case errors.Is(err, ErrIncompleteArticle):
			return nil, err
		case err != nil:
			if typeErr == nil {
				typeErr = err
			}
		default:
			vals[f] = v
		}
	}
	if typeErr != nil {
		return nil, typeErr
	}
	return &domain.Article{
		Author: vals["author"],
		Title:  vals["title"],
		Body:   vals["body"],
		Topic:  vals["topic"],
	}, nil
}

// Create inserts a new article. When idemKey is set and a live record exists
// for it, the previously created article is returned with replayed=true and
// nothing is inserted.
func (s *ArticleService) Create(ctx context.Context, body Payload, idemKey string) (a *domain.Article, replayed bool, err error) {
	tr := otel.Tracer("services/ArticleService")
	ctx, span := tr.Start(ctx, "Create", trace.WithAttributes(attribute.Bool("idempotent", idemKey != "")))
	defer span.End()

	if idemKey != "" {
		if prev, ok, err := s.replay(ctx, idemKey); err != nil || ok {
			return prev, ok, err
		}
	}

	in, err := articleInput(body)
	if err != nil {
		return nil, false, err
	}

	// Referenced rows are checked up front so the client learns which one is
	// missing; the foreign keys still guard against races.
	if ok, err := repo.UserExists(ctx, s.DB, in.Author); err != nil {
		return nil, false, err
	} else if !ok {
		return nil, false, apperr.Conflict(HintAuthorUnknown, nil)
	}
	if ok, err := repo.TopicExists(ctx, s.DB, in.Topic); err != nil {
		return nil, false, err
	} else if !ok {
		return nil, false, apperr.Conflict(HintTopicUnknown, nil)
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := repo.CreateArticle(ctx, tx, in)
		if err != nil {
			return apperr.WithHint(err, HintAuthorUnknown)
		}
		if idemKey != "" {
			if _, err := repo.CreateIdempotency(ctx, tx, ScopeArticles, idemKey, created.ArticleID, http.StatusCreated, s.ttl()); err != nil {
				return err
			}
		}
		a = created
		return nil
	})
	if errors.Is(err, repo.ErrDuplicate) {
		// a concurrent request with the same key won
		return s.replayOrConflict(ctx, idemKey)
	}
	if err != nil {
		return nil, false, err
	}
	return a, false, nil
}

func (s *ArticleService) replay(ctx context.Context, key string) (*domain.Article, bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, ScopeArticles, key, time.Now().UTC())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	a, err := repo.GetArticle(ctx, s.DB, rec.ResourceID)
	if errors.Is(err, repo.ErrNotFound) {
		// the article was deleted since; the key cannot be reused
		return nil, false, ErrIdempotencyKeyUsed
	}
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

func (s *ArticleService) replayOrConflict(ctx context.Context, key string) (*domain.Article, bool, error) {
	a, ok, err := s.replay(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, ErrIdempotencyKeyUsed
	}
	return a, true, nil
}

func (s *ArticleService) ttl() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return 24 * time.Hour
}

// Delete removes an article together with its comments.
func (s *ArticleService) Delete(ctx context.Context, id int) error {
	tr := otel.Tracer("services/ArticleService")
	ctx, span := tr.Start(ctx, "Delete", trace.WithAttributes(attribute.Int("article.id", id)))
	defer span.End()

	err := repo.DeleteArticle(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrArticleNotFound
	}
	return err
}
