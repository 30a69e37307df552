// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the error classification chain. Handlers never write
// error responses themselves: they record the failure with c.Error(err) and
// return. ErrorHandler then runs an ordered list of classifiers against the
// last recorded error; the first one that recognises it decides the status
// and message. Anything no classifier claims becomes a logged 500.
//
// The default chain is:
//
//  1. Explicit: the error is an *apperr.Error and carries its own message.
//  2. MalformedInput: the store rejected a literal (SQLSTATE 22P02).
//  3. ConstraintViolation: foreign-key or unique violation reported by the
//     store, using the hint attached by the service when present.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tbourn/go-news-backend/internal/apperr"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Msg string `json:"msg" example:"Article not found"`
}

// Verdict is a classifier's decision about an error.
type Verdict struct {
	Status int
	Code   string
	Msg    string
	// Kind labels the api_errors_total counter.
	Kind apperr.Kind
}

// Classifier inspects err and reports whether it recognised it.
type Classifier func(err error) (Verdict, bool)

const (
	msgInvalidID      = "Invalid id"
	msgUnknownUser    = "Username does not exist"
	msgAlreadyExists  = "Resource already exists"
	msgInternalServer = "Internal server error"
)

var apiErrors = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "api_errors_total",
		Help: "Error responses by classified kind.",
	},
	[]string{"kind"},
)

func init() {
	prometheus.MustRegister(apiErrors)
}

func verdictFor(k apperr.Kind, msg string) Verdict {
	return Verdict{Status: k.Status(), Code: k.Code(), Msg: msg, Kind: k}
}

// Explicit honours errors raised deliberately by the service layer.
func Explicit(err error) (Verdict, bool) {
	ae, ok := apperr.As(err)
	if !ok || ae.Kind == apperr.KindInternal {
		return Verdict{}, false
	}
	return verdictFor(ae.Kind, ae.Msg), true
}

// MalformedInput maps a store-side invalid literal to 400 "Invalid id".
func MalformedInput(err error) (Verdict, bool) {
	if !apperr.IsInvalidText(err) {
		return Verdict{}, false
	}
	return verdictFor(apperr.KindValidation, msgInvalidID), true
}

// ConstraintViolation maps integrity violations to 400. For foreign keys the
// message is the hint attached with apperr.WithHint, defaulting to the
// unknown-username message.
func ConstraintViolation(err error) (Verdict, bool) {
	switch {
	case apperr.IsForeignKey(err):
		msg := msgUnknownUser
		if h, ok := apperr.Hint(err); ok && h != "" {
			msg = h
		}
		return verdictFor(apperr.KindConflict, msg), true
	case apperr.IsUnique(err):
		return verdictFor(apperr.KindConflict, msgAlreadyExists), true
	}
	return Verdict{}, false
}

// DefaultChain is the classifier order used by the router.
func DefaultChain() []Classifier {
	return []Classifier{Explicit, MalformedInput, ConstraintViolation}
}

// Classify runs chain against err, falling back to a 500 verdict. The second
// result is false when the fallback was used.
func Classify(err error, chain ...Classifier) (Verdict, bool) {
	for _, cl := range chain {
		if v, ok := cl(err); ok {
			return v, true
		}
	}
	return verdictFor(apperr.KindInternal, msgInternalServer), false
}

// ErrorHandler renders the last error recorded on the context once the
// handlers have returned. Nothing is written when the response was already
// committed or no error was recorded.
//
// Place it after Logger() and Recovery() so the fallback can log through the
// request-scoped logger.
func ErrorHandler(chain ...Classifier) gin.HandlerFunc {
	if len(chain) == 0 {
		chain = DefaultChain()
	}
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		v, matched := Classify(err, chain...)
		if !matched {
			LoggerFrom(c).Error().Err(err).Msg("unhandled error")
		}
		apiErrors.WithLabelValues(v.Kind.String()).Inc()
		c.AbortWithStatusJSON(v.Status, ErrorResponse{
			RequestID: requestIDFrom(c),
			Code:      v.Code,
			Msg:       v.Msg,
		})
	}
}

// AbortWithError writes an error body directly. It is used by middleware that
// rejects requests before any handler runs.
func AbortWithError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: requestIDFrom(c),
		Code:      code,
		Msg:       msg,
	})
}

// NoRoute answers unmatched paths with 400 "Invalid path", or 404 when
// strict is set.
func NoRoute(strict bool) gin.HandlerFunc {
	status := http.StatusBadRequest
	code := apperr.KindValidation.Code()
	if strict {
		status = http.StatusNotFound
		code = apperr.KindNotFound.Code()
	}
	return func(c *gin.Context) {
		AbortWithError(c, status, code, "Invalid path")
	}
}

// NoMethod answers a known path requested with an unsupported method.
func NoMethod() gin.HandlerFunc {
	return func(c *gin.Context) {
		AbortWithError(c, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	}
}
