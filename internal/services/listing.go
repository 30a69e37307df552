package services

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"

	"github.com/tbourn/go-news-backend/internal/utils"
)

// ListParams holds the raw query-string values of a listing request. A nil
// pointer means the parameter was not sent.
type ListParams struct {
	Topic  *string
	SortBy *string
	Order  *string
	Limit  *string
	Page   *string
}

// ListQuery is the validated form of ListParams shared by the article and
// comment listings.
type ListQuery struct {
	Topic  *string `json:"topic"`
	SortBy string  `json:"sort_by" validate:"oneof=article_id title topic author created_at votes comment_count"`
	Order  string  `json:"order"   validate:"oneof=asc desc"`
	Limit  int     `json:"limit"   validate:"min=1,max=1000"`
	Page   int     `json:"page"    validate:"min=1,max=1000000"`
}

// Desc reports whether results are sorted descending.
func (q ListQuery) Desc() bool { return q.Order == "desc" }

// Offset is the number of rows skipped before the current page.
func (q ListQuery) Offset() int { return utils.Offset(q.Page, q.Limit) }

const (
	defaultSortBy = "created_at"
	defaultOrder  = "desc"
	maxLimit      = 1000
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
	fold         = cases.Fold()
)

// validatorInstance returns the shared validator, reporting json tag names
// as field names.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// fieldErrors maps a failing field to the error reported to clients.
var fieldErrors = map[string]error{
	"sort_by": ErrInvalidColumn,
	"order":   ErrInvalidOrder,
	"limit":   ErrInvalidLimit,
	"page":    ErrInvalidPage,
}

// ParseListQuery validates p. Absent values take their defaults: sort by
// created_at, descending, defaultLimit rows, first page. sort_by and order
// are matched case-insensitively. An empty topic is rejected, as are a limit
// above 1000 and a page above 1000000.
func ParseListQuery(p ListParams, defaultLimit int) (ListQuery, error) {
	if defaultLimit < 1 {
		defaultLimit = 10
	}
	defaultLimit = min(defaultLimit, maxLimit)
	q := ListQuery{SortBy: defaultSortBy, Order: defaultOrder, Limit: defaultLimit, Page: 1}

	if p.Topic != nil {
		t := strings.TrimSpace(*p.Topic)
		if t == "" {
			return q, ErrInvalidTopic
		}
		q.Topic = &t
	}
	if p.SortBy != nil {
		q.SortBy = fold.String(strings.TrimSpace(*p.SortBy))
	}
	if p.Order != nil {
		q.Order = fold.String(strings.TrimSpace(*p.Order))
	}
	if p.Limit != nil {
		n, err := strconv.Atoi(strings.TrimSpace(*p.Limit))
		if err != nil {
			return q, ErrInvalidLimit
		}
		q.Limit = n
	}
	if p.Page != nil {
		n, err := strconv.Atoi(strings.TrimSpace(*p.Page))
		if err != nil {
			return q, ErrInvalidPage
		}
		q.Page = n
	}

	if err := validatorInstance().Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			if mapped, ok := fieldErrors[verrs[0].Field()]; ok {
				return q, mapped
			}
		}
		return q, err
	}
	return q, nil
}
