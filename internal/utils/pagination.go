// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"math"
	"net/url"
)

// Offset returns the number of rows to skip before page (1-based) when each
// page holds limit rows. Pages below 1 are treated as the first page, and
// the result saturates at math.MaxInt instead of wrapping.
//
// Example:
//
//	utils.Offset(3, 10) // 20
func Offset(page, limit int) int {
	if page < 1 || limit < 1 {
		return 0
	}
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

// QueryParam returns the value of the first of keys present in v, or nil
// when none is. A present but empty value is returned as a pointer to "",
// so callers can tell "?topic=" from no topic at all.
//
// Example:
//
//	page := utils.QueryParam(r.URL.Query(), "page", "p")
func QueryParam(v url.Values, keys ...string) *string {
	for _, k := range keys {
		if vals, ok := v[k]; ok && len(vals) > 0 {
			s := vals[0]
			return &s
		}
	}
	return nil
}
