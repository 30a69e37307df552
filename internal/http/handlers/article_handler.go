// Article HTTP handlers.
//
// This file exposes REST endpoints for article resources:
//   - GET    /articles                (list, filter, sort, paginate)
//   - POST   /articles                (create, idempotent with Idempotency-Key)
//   - GET    /articles/{article_id}   (read)
//   - PATCH  /articles/{article_id}   (vote)
//   - DELETE /articles/{article_id}   (delete with comments)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-news-backend/internal/http/middleware"
)

// ListArticles godoc
// @ID          listArticles
// @Summary     List articles
// @Description Returns a page of articles, each with its comment count, and the unpaginated total. An existing topic without articles yields an empty list and a msg.
// @Tags        Articles
// @Produce     json
//
// @Param       topic    query  string  false  "Topic slug"          example(mitch)
// @Param       sort_by  query  string  false  "Sort column"         Enums(article_id, title, topic, author, created_at, votes, comment_count) default(created_at)
// @Param       order    query  string  false  "Sort direction"      Enums(asc, desc) default(desc)
// @Param       limit    query  int     false  "Page size"           minimum(1) default(10)
// @Param       page     query  int     false  "Page number (alias p)" minimum(1) default(1)
//
// @Success     200  {object}  services.ArticleList
// @Failure     400  {object}  middleware.ErrorResponse  "Invalid column, order, topic, limit or page"
// @Failure     404  {object}  middleware.ErrorResponse  "Topic does not exist"
// @Failure     500  {object}  middleware.ErrorResponse  "Internal error"
// @Router      /articles [get]
func (h *Handlers) ListArticles(c *gin.Context) {
	out, err := h.articles.List(c.Request.Context(), listParams(c))
	if err != nil {
		abort(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// GetArticle godoc
// @ID          getArticle
// @Summary     Get an article
// @Tags        Articles
// @Produce     json
// @Param       article_id  path  int  true  "Article ID"  example(1)
// @Success     200  {object}  handlers.ArticleResponse
// @Failure     400  {object}  middleware.ErrorResponse  "Invalid id"
// @Failure     404  {object}  middleware.ErrorResponse  "Article not found"
// @Router      /articles/{article_id} [get]
func (h *Handlers) GetArticle(c *gin.Context) {
	id, err := pathID(c, "article_id")
	if err != nil {
		abort(c, err)
		return
	}
	a, err := h.articles.Get(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	ok(c, http.StatusOK, ArticleResponse{Article: a})
}

// VoteArticle godoc
// @ID          voteArticle
// @Summary     Vote on an article
// @Description Adds inc_votes (which may be negative) to the article's votes in a single update.
// @Tags        Articles
// @Accept      json
// @Produce     json
// @Param       article_id  path  int                    true  "Article ID"  example(1)
// @Param       body        body  handlers.VoteRequest   true  "Vote delta"
// @Success     200  {object}  handlers.ArticleResponse
// @Failure     400  {object}  middleware.ErrorResponse  "inc_votes missing or not an integer"
// @Failure     404  {object}  middleware.ErrorResponse  "Article not found"
// @Router      /articles/{article_id} [patch]
func (h *Handlers) VoteArticle(c *gin.Context) {
	id, err := pathID(c, "article_id")
	if err != nil {
		abort(c, err)
		return
	}
	body, err := payload(c)
	if err != nil {
		abort(c, err)
		return
	}
	a, err := h.articles.Vote(c.Request.Context(), id, body)
	if err != nil {
		abort(c, err)
		return
	}
	ok(c, http.StatusOK, ArticleResponse{Article: a})
}

// CreateArticle godoc
// @ID          createArticle
// @Summary     Create an article
// @Description Supports idempotency via the Idempotency-Key header; a repeated key returns the original article with 200 and Idempotency-Replayed: true.
// @Tags        Articles
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string                      false  "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.NewArticleRequest  true   "New article"
// @Success     201  {object}  handlers.ArticleResponse
// @Success     200  {object}  handlers.ArticleResponse  "Replayed"
// @Failure     400  {object}  middleware.ErrorResponse  "Incomplete article, wrong data type, unknown author or topic"
// @Router      /articles [post]
func (h *Handlers) CreateArticle(c *gin.Context) {
	body, err := payload(c)
	if err != nil {
		abort(c, err)
		return
	}
	key, _ := middleware.GetIdempotencyKey(c)
	a, replayed, err := h.articles.Create(c.Request.Context(), body, key)
	if err != nil {
		abort(c, err)
		return
	}
	created(c, replayed, ArticleResponse{Article: a})
}

// DeleteArticle godoc
// @ID          deleteArticle
// @Summary     Delete an article and its comments
// @Tags        Articles
// @Param       article_id  path  int  true  "Article ID"  example(1)
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  middleware.ErrorResponse  "Invalid id"
// @Failure     404  {object}  middleware.ErrorResponse  "Article not found"
// @Router      /articles/{article_id} [delete]
func (h *Handlers) DeleteArticle(c *gin.Context) {
	id, err := pathID(c, "article_id")
	if err != nil {
		abort(c, err)
		return
	}
	if err := h.articles.Delete(c.Request.Context(), id); err != nil {
		abort(c, err)
		return
	}
	noContent(c)
}
