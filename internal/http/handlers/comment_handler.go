// Comment HTTP handlers.
//
//   - GET    /articles/{article_id}/comments
//   - POST   /articles/{article_id}/comments  (idempotent with Idempotency-Key)
//   - PATCH  /comments/{comment_id}
//   - DELETE /comments/{comment_id}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-news-backend/internal/http/middleware"
)

// ListComments godoc
// @ID          listComments
// @Summary     List an article's comments
// @Description Newest first. An existing article without comments yields an empty list and a msg.
// @Tags        Comments
// @Produce     json
// @Param       article_id  path   int  true   "Article ID"  example(1)
// @Param       limit       query  int  false  "Page size"   minimum(1) default(10)
// @Param       page        query  int  false  "Page number (alias p)" minimum(1) default(1)
// @Success     200  {object}  services.CommentList
// @Failure     400  {object}  middleware.ErrorResponse  "Invalid id, limit or page"
// @Failure     404  {object}  middleware.ErrorResponse  "Article not found"
// @Router      /articles/{article_id}/comments [get]
func (h *Handlers) ListComments(c *gin.Context) {
	id, err := pathID(c, "article_id")
	if err != nil {
		abort(c, err)
		return
	}
	out, err := h.comments.ListForArticle(c.Request.Context(), id, listParams(c))
	if err != nil {
		abort(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// PostComment godoc
// @ID          postComment
// @Summary     Comment on an article
// @Tags        Comments
// @Accept      json
// @Produce     json
// @Param       article_id       path    int                         true   "Article ID"  example(1)
// @Param       Idempotency-Key  header  string                      false  "Idempotency key for safe retries"
// @Param       body             body    handlers.NewCommentRequest  true   "New comment"
// @Success     201  {object}  handlers.CommentResponse
// @Success     200  {object}  handlers.CommentResponse  "Replayed"
// @Failure     400  {object}  middleware.ErrorResponse  "Incomplete comment, wrong data type or unknown username"
// @Failure     404  {object}  middleware.ErrorResponse  "Article not found"
// @Router      /articles/{article_id}/comments [post]
func (h *Handlers) PostComment(c *gin.Context) {
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
	key, _ := middleware.GetIdempotencyKey(c)
	cm, replayed, err := h.comments.Create(c.Request.Context(), id, body, key)
	if err != nil {
		abort(c, err)
		return
	}
	created(c, replayed, CommentResponse{Comment: cm})
}

// VoteComment godoc
// @ID          voteComment
// @Summary     Vote on a comment
// @Tags        Comments
// @Accept      json
// @Produce     json
// @Param       comment_id  path  int                   true  "Comment ID"  example(1)
// @Param       body        body  handlers.VoteRequest  true  "Vote delta"
// @Success     200  {object}  handlers.CommentResponse
// @Failure     400  {object}  middleware.ErrorResponse
// @Failure     404  {object}  middleware.ErrorResponse  "Comment does not exist"
// @Router      /comments/{comment_id} [patch]
func (h *Handlers) VoteComment(c *gin.Context) {
	id, err := pathID(c, "comment_id")
	if err != nil {
		abort(c, err)
		return
	}
	body, err := payload(c)
	if err != nil {
		abort(c, err)
		return
	}
	cm, err := h.comments.Vote(c.Request.Context(), id, body)
	if err != nil {
		abort(c, err)
		return
	}
	ok(c, http.StatusOK, CommentResponse{Comment: cm})
}

// DeleteComment godoc
// @ID          deleteComment
// @Summary     Delete a comment
// @Tags        Comments
// @Param       comment_id  path  int  true  "Comment ID"  example(1)
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  middleware.ErrorResponse  "Invalid id"
// @Failure     404  {object}  middleware.ErrorResponse  "Comment does not exist"
// @Router      /comments/{comment_id} [delete]
func (h *Handlers) DeleteComment(c *gin.Context) {
	id, err := pathID(c, "comment_id")
	if err != nil {
		abort(c, err)
		return
	}
	if err := h.comments.Delete(c.Request.Context(), id); err != nil {
		abort(c, err)
		return
	}
	noContent(c)
}
