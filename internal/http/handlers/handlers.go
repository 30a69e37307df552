// Package handlers exposes the news API over HTTP.
//
// Handlers are transport-thin: they pull path, query and body values out of
// the request, call the application services and shape success responses.
// Failures are never rendered here; every handler records the error with
// c.Error and returns, leaving the response to the error classification
// middleware.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-news-backend/internal/catalog"
	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/services"
	"github.com/tbourn/go-news-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// ArticleService lists, reads, votes on, creates and deletes articles.
type ArticleService interface {
	List(ctx context.Context, p services.ListParams) (*services.ArticleList, error)
	Get(ctx context.Context, id int) (*domain.Article, error)
	Vote(ctx context.Context, id int, body services.Payload) (*domain.Article, error)
	// Create reports replayed=true when idemKey matched an earlier create.
	Create(ctx context.Context, body services.Payload, idemKey string) (*domain.Article, bool, error)
	Delete(ctx context.Context, id int) error
}

// CommentService manages the comments of an article.
type CommentService interface {
	ListForArticle(ctx context.Context, articleID int, p services.ListParams) (*services.CommentList, error)
	Create(ctx context.Context, articleID int, body services.Payload, idemKey string) (*domain.Comment, bool, error)
	Vote(ctx context.Context, id int, body services.Payload) (*domain.Comment, error)
	Delete(ctx context.Context, id int) error
}

// TopicService lists and creates topics.
type TopicService interface {
	List(ctx context.Context) ([]domain.Topic, error)
	Create(ctx context.Context, body services.Payload) (*domain.Topic, error)
}

// UserService reads users.
type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, username string) (*domain.User, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints of the API.
type Handlers struct {
	articles ArticleService
	comments CommentService
	topics   TopicService
	users    UserService
	catalog  catalog.Catalog
}

// New constructs Handlers bound to the given services and endpoint catalog.
func New(articles ArticleService, comments CommentService, topics TopicService, users UserService, cat catalog.Catalog) *Handlers {
	return &Handlers{articles: articles, comments: comments, topics: topics, users: users, catalog: cat}
}

//
// Helpers
//

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (int, error) {
	return services.ParseID(c.Param(name))
}

// listParams collects the listing query parameters; "p" is accepted as an
// alias of "page".
func listParams(c *gin.Context) services.ListParams {
	q := c.Request.URL.Query()
	return services.ListParams{
		Topic:  utils.QueryParam(q, "topic"),
		SortBy: utils.QueryParam(q, "sort_by"),
		Order:  utils.QueryParam(q, "order"),
		Limit:  utils.QueryParam(q, "limit"),
		Page:   utils.QueryParam(q, "page", "p"),
	}
}

// payload decodes the JSON request body.
func payload(c *gin.Context) (services.Payload, error) {
	return services.DecodePayload(c.Request.Body)
}

// abort records err for the error middleware.
func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
