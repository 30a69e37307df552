// Package handlers – response envelopes.
//
// Every success body wraps its payload in a named key, e.g.
//
//	HTTP/1.1 200 OK
//	{ "article": { "article_id": 1, "title": "...", "comment_count": 11 } }
//
// Error bodies are written by middleware.ErrorHandler as
// middleware.ErrorResponse:
//
//	HTTP/1.1 404 Not Found
//	{ "request_id": "...", "code": "not_found", "msg": "Article not found" }
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/http/middleware"
)

// ArticleResponse wraps a single article.
type ArticleResponse struct {
	Article *domain.Article `json:"article"`
}

// CommentResponse wraps a single comment.
type CommentResponse struct {
	Comment *domain.Comment `json:"comment"`
}

// TopicResponse wraps a single topic.
type TopicResponse struct {
	Topic *domain.Topic `json:"topic"`
}

// TopicsResponse lists topics.
type TopicsResponse struct {
	Topics []domain.Topic `json:"topics"`
}

// UserResponse wraps a single user.
type UserResponse struct {
	User *domain.User `json:"user"`
}

// UsersResponse lists users.
type UsersResponse struct {
	Users []domain.User `json:"users"`
}

// VoteRequest is the body of the vote endpoints.
type VoteRequest struct {
	IncVotes int `json:"inc_votes" example:"1"`
}

// NewArticleRequest is the body of POST /articles.
type NewArticleRequest struct {
	Author string `json:"author" example:"lurker"`
	Title  string `json:"title"  example:"A new article"`
	Body   string `json:"body"   example:"Body text"`
	Topic  string `json:"topic"  example:"paper"`
}

// NewCommentRequest is the body of POST /articles/{article_id}/comments.
type NewCommentRequest struct {
	Username string `json:"username" example:"lurker"`
	Body     string `json:"body"     example:"Great read"`
}

// NewTopicRequest is the body of POST /topics.
type NewTopicRequest struct {
	Slug        string `json:"slug"        example:"dogs"`
	Description string `json:"description" example:"Not cats"`
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// created answers a create request: 201 for a new resource, or 200 with
// Idempotency-Replayed when the key matched an earlier create.
func created(c *gin.Context, replayed bool, body any) {
	if replayed {
		c.Header(middleware.HeaderIdempotencyReplayed, "true")
		ok(c, http.StatusOK, body)
		return
	}
	ok(c, http.StatusCreated, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
