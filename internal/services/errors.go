// Package services defines the business logic for topics, users, articles
// and comments. This file centralizes the client-facing error values returned
// by service methods.
//
// Every value is an *apperr.Error: the HTTP error chain renders its message
// verbatim with the status implied by its kind. Services never choose status
// codes themselves.
package services

import "github.com/tbourn/go-news-backend/internal/apperr"

// Listing parameters.
var (
	ErrInvalidColumn = apperr.Validation("Invalid column")
	ErrInvalidOrder  = apperr.Validation("Invalid order")
	ErrInvalidLimit  = apperr.Validation("Invalid limit")
	ErrInvalidPage   = apperr.Validation("Invalid page")
	ErrInvalidTopic  = apperr.Validation("Invalid topic")
	ErrInvalidID     = apperr.Validation("Invalid id")
)

// Request bodies.
var (
	ErrMalformedBody      = apperr.Validation("Malformed JSON body")
	ErrWrongDataType      = apperr.Validation("Wrong data type")
	ErrIncVotesMissing    = apperr.Validation("inc_votes key is not found")
	ErrIncompleteComment  = apperr.Validation("Incomplete comment")
	ErrIncompleteArticle  = apperr.Validation("Incomplete article")
	ErrIncompleteTopic    = apperr.Validation("Incomplete topic")
	ErrIdempotencyKeyUsed = apperr.Validation("Idempotency-Key already used")
)

// Missing resources.
var (
	ErrArticleNotFound = apperr.NotFound("Article not found")
	ErrCommentNotFound = apperr.NotFound("Comment does not exist")
	ErrTopicNotFound   = apperr.NotFound("Topic does not exist")
	ErrUserNotFound    = apperr.NotFound("User does not exist")
)

// Hints attached to inserts; they apply when the store reports a
// foreign-key violation.
const (
	HintUsernameUnknown = "Username does not exist"
	HintAuthorUnknown   = "Author does not exist"
	HintTopicUnknown    = "Topic does not exist"
)
