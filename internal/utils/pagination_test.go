package utils

import (
	"math"
	"net/url"
	"testing"
)

func TestOffset(t *testing.T) {
	cases := []struct {
		page, limit, want int
	}{
		{1, 10, 0},
		{2, 10, 10},
		{3, 5, 10},
		{0, 10, 0},
		{-4, 10, 0},
		{2, 0, 0},
		{math.MaxInt, 10, math.MaxInt},
		{math.MaxInt/10 + 1, 10, math.MaxInt/10 * 10},
	}
	for _, tc := range cases {
		if got := Offset(tc.page, tc.limit); got != tc.want {
			t.Fatalf("Offset(%d, %d) = %d; want %d", tc.page, tc.limit, got, tc.want)
		}
	}
}

func TestQueryParam(t *testing.T) {
	v, _ := url.ParseQuery("p=3&topic=&limit=5&limit=9")

	if got := QueryParam(v, "page", "p"); got == nil || *got != "3" {
		t.Fatalf("alias lookup = %v; want 3", got)
	}
	if got := QueryParam(v, "topic"); got == nil || *got != "" {
		t.Fatalf("empty value should be present, got %v", got)
	}
	if got := QueryParam(v, "limit"); got == nil || *got != "5" {
		t.Fatalf("first value wins, got %v", got)
	}
	if got := QueryParam(v, "order"); got != nil {
		t.Fatalf("absent key should be nil, got %q", *got)
	}

	v2, _ := url.ParseQuery("page=1&p=2")
	if got := QueryParam(v2, "page", "p"); *got != "1" {
		t.Fatalf("earlier key should win, got %q", *got)
	}
}
