// Package apperr defines the tagged error type shared by the service layer and
// the HTTP error chain, together with helpers that recognise constraint
// failures reported by the supported stores (Postgres via pgx or lib/pq, and
// SQLite).
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Kind classifies an application error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	// KindConflict is a referential-integrity problem the client can fix.
	KindConflict
)

// Status maps the kind to an HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Code is the stable machine-readable error code for the kind.
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is an error the service layer raised on purpose. Msg is safe to show
// to clients verbatim; Err, when set, is the underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a 400 error carrying msg.
func Validation(msg string) *Error { return &Error{Kind: KindValidation, Msg: msg} }

// NotFound returns a 404 error carrying msg.
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Msg: msg} }

// Conflict returns a referential-integrity error carrying msg.
func Conflict(msg string, cause error) *Error {
	return &Error{Kind: KindConflict, Msg: msg, Err: cause}
}

// Internal wraps an unexpected failure.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Msg: "Internal server error", Err: cause}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// hinted attaches a client-facing message to a raw store error without
// classifying it. The error chain decides whether the hint applies.
type hinted struct {
	err  error
	hint string
}

func (h *hinted) Error() string { return h.err.Error() }
func (h *hinted) Unwrap() error { return h.err }

// WithHint annotates err with the message to use if it turns out to be a
// foreign-key violation. A nil err stays nil.
func WithHint(err error, hint string) error {
	if err == nil {
		return nil
	}
	return &hinted{err: err, hint: hint}
}

// Hint returns the outermost hint attached with WithHint.
func Hint(err error) (string, bool) {
	var h *hinted
	if errors.As(err, &h) {
		return h.hint, true
	}
	return "", false
}

// Postgres SQLSTATE codes the error chain understands.
const (
	CodeInvalidText = "22P02"
	CodeForeignKey  = "23503"
	CodeUnique      = "23505"
)

// SQLState returns the Postgres SQLSTATE carried by err, from either pgx or
// lib/pq, or "" when err did not come from Postgres.
func SQLState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// IsInvalidText reports a malformed literal such as a non-numeric id.
func IsInvalidText(err error) bool {
	return err != nil && SQLState(err) == CodeInvalidText
}

// IsForeignKey reports a foreign-key violation.
func IsForeignKey(err error) bool {
	if err == nil {
		return false
	}
	if SQLState(err) == CodeForeignKey || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// IsUnique reports a unique or primary-key violation.
func IsUnique(err error) bool {
	if err == nil {
		return false
	}
	if SQLState(err) == CodeUnique || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
