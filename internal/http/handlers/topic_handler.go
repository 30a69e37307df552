package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetAPI godoc
// @ID          getAPI
// @Summary     Describe the API
// @Description Serves the static catalog of every endpoint, keyed by "METHOD /path".
// @Tags        Meta
// @Produce     json
// @Success     200  {object}  catalog.Catalog
// @Router      / [get]
func (h *Handlers) GetAPI(c *gin.Context) {
	ok(c, http.StatusOK, h.catalog)
}

// ListTopics godoc
// @ID          listTopics
// @Summary     List topics
// @Tags        Topics
// @Produce     json
// @Success     200  {object}  handlers.TopicsResponse
// @Router      /topics [get]
func (h *Handlers) ListTopics(c *gin.Context) {
	topics, err := h.topics.List(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	ok(c, http.StatusOK, TopicsResponse{Topics: topics})
}

// CreateTopic godoc
// @ID          createTopic
// @Summary     Create a topic
// @Tags        Topics
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.NewTopicRequest  true  "New topic"
// @Success     201  {object}  handlers.TopicResponse
// @Failure     400  {object}  middleware.ErrorResponse  "Incomplete topic, wrong data type or already exists"
// @Router      /topics [post]
func (h *Handlers) CreateTopic(c *gin.Context) {
	body, err := payload(c)
	if err != nil {
		abort(c, err)
		return
	}
	t, err := h.topics.Create(c.Request.Context(), body)
	if err != nil {
		abort(c, err)
		return
	}
	ok(c, http.StatusCreated, TopicResponse{Topic: t})
}

// ListUsers godoc
// @ID          listUsers
// @Summary     List users
// @Tags        Users
// @Produce     json
// @Success     200  {object}  handlers.UsersResponse
// @Router      /users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	ok(c, http.StatusOK, UsersResponse{Users: users})
}

// GetUser godoc
// @ID          getUser
// @Summary     Get a user
// @Tags        Users
// @Produce     json
// @Param       username  path  string  true  "Username"  example(butter_bridge)
// @Success     200  {object}  handlers.UserResponse
// @Failure     404  {object}  middleware.ErrorResponse  "User does not exist"
// @Router      /users/{username} [get]
func (h *Handlers) GetUser(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		abort(c, err)
		return
	}
	ok(c, http.StatusOK, UserResponse{User: u})
}
