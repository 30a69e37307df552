// Package services – CommentService
//
// CommentService lists an article's comments and creates, votes on and
// deletes individual comments. Unknown comment authors are left to the
// store's foreign key; the resulting violation carries a hint that the HTTP
// error chain turns into a 400.
package services

import (
	"context"
	"errors"
	"net/http"
	"strconv"
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

// CommentList is one page of an article's comments.
type CommentList struct {
	Comments   []domain.CommentSummary `json:"comments"`
	TotalCount int64                   `json:"total_count"`
	Msg        string                  `json:"msg,omitempty"`
}

// CommentService coordinates comment persistence.
type CommentService struct {
	DB             *gorm.DB
	DefaultLimit   int
	IdempotencyTTL time.Duration
}

// CommentScope is the idempotency scope for comments posted on articleID.
func CommentScope(articleID int) string { return "comment:" + strconv.Itoa(articleID) }

func (s *CommentService) requireArticle(ctx context.Context, articleID int) error {
	ok, err := repo.ArticleExists(ctx, s.DB, articleID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrArticleNotFound
	}
	return nil
}

// ListForArticle returns a page of the article's comments, newest first.
// Only limit and page are honoured from p.
func (s *CommentService) ListForArticle(ctx context.Context, articleID int, p ListParams) (*CommentList, error) {
	tr := otel.Tracer("services/CommentService")
	ctx, span := tr.Start(ctx, "ListForArticle", trace.WithAttributes(attribute.Int("article.id", articleID)))
	defer span.End()

	q, err := ParseListQuery(ListParams{Limit: p.Limit, Page: p.Page}, s.DefaultLimit)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("limit", q.Limit), attribute.Int("page", q.Page))

	if err := s.requireArticle(ctx, articleID); err != nil {
		return nil, err
	}

	total, err := repo.CountComments(ctx, s.DB, articleID)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return &CommentList{Comments: []domain.CommentSummary{}, Msg: "No comments for this article"}, nil
	}

	items, err := repo.ListCommentSummaries(ctx, s.DB, articleID, q.Offset(), q.Limit)
	if err != nil {
		return nil, err
	}
	return &CommentList{Comments: items, TotalCount: total}, nil
}

// commentInput checks body then username, presence before type for each.
func commentInput(body Payload) (username, text string, err error) {
	text, err = body.String("body", ErrIncompleteComment)
	if err != nil {
		return "", "", err
	}
	username, err = body.String("username", ErrIncompleteComment)
	if err != nil {
		return "", "", err
	}
	return username, text, nil
}

// Create posts a comment on articleID. With an idempotency key, a repeat of
// an earlier successful request returns the original comment and
// replayed=true.
func (s *CommentService) Create(ctx context.Context, articleID int, body Payload, idemKey string) (c *domain.Comment, replayed bool, err error) {
	tr := otel.Tracer("services/CommentService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.Int("article.id", articleID),
			attribute.Bool("idempotent", idemKey != ""),
		),
	)
	defer span.End()

	scope := CommentScope(articleID)
	if idemKey != "" {
		if prev, ok, err := s.replay(ctx, scope, idemKey); err != nil || ok {
			return prev, ok, err
		}
	}

	username, text, err := commentInput(body)
	if err != nil {
		return nil, false, err
	}
	if err := s.requireArticle(ctx, articleID); err != nil {
		return nil, false, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := repo.CreateComment(ctx, tx, articleID, username, text)
		if err != nil {
			return err
		}
		if idemKey != "" {
			if _, err := repo.CreateIdempotency(ctx, tx, scope, idemKey, created.CommentID, http.StatusCreated, s.ttl()); err != nil {
				return err
			}
		}
		c = created
		return nil
	})
	if errors.Is(err, repo.ErrDuplicate) {
		prev, ok, rerr := s.replay(ctx, scope, idemKey)
		if rerr != nil {
			return nil, false, rerr
		}
		if !ok {
			return nil, false, ErrIdempotencyKeyUsed
		}
		return prev, true, nil
	}
	if apperr.IsForeignKey(err) {
		return nil, false, s.insertFailure(ctx, articleID, err)
	}
	if err != nil {
		return nil, false, err
	}
	return c, false, nil
}

// insertFailure names the missing parent behind a foreign key violation on
// insert: the article when it was deleted after the pre-check, otherwise the
// author.
func (s *CommentService) insertFailure(ctx context.Context, articleID int, err error) error {
	if aerr := s.requireArticle(ctx, articleID); aerr != nil {
		return aerr
	}
	return apperr.WithHint(err, HintUsernameUnknown)
}

func (s *CommentService) replay(ctx context.Context, scope, key string) (*domain.Comment, bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, scope, key, time.Now().UTC())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	c, err := repo.GetComment(ctx, s.DB, rec.ResourceID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, ErrIdempotencyKeyUsed
	}
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (s *CommentService) ttl() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return 24 * time.Hour
}

// Vote applies body's inc_votes to the comment and returns the updated row.
func (s *CommentService) Vote(ctx context.Context, id int, body Payload) (*domain.Comment, error) {
	tr := otel.Tracer("services/CommentService")
	ctx, span := tr.Start(ctx, "Vote", trace.WithAttributes(attribute.Int("comment.id", id)))
	defer span.End()

	inc, err := body.Int("inc_votes", ErrIncVotesMissing)
	if err != nil {
		return nil, err
	}
	c, err := repo.IncrementCommentVotes(ctx, s.DB, id, inc)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrCommentNotFound
	}
	return c, err
}

// Delete removes a single comment.
func (s *CommentService) Delete(ctx context.Context, id int) error {
	tr := otel.Tracer("services/CommentService")
	ctx, span := tr.Start(ctx, "Delete", trace.WithAttributes(attribute.Int("comment.id", id)))
	defer span.End()

	err := repo.DeleteComment(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrCommentNotFound
	}
	return err
}
