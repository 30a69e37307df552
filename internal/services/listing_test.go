package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListQuery_Defaults(t *testing.T) {
	q, err := ParseListQuery(ListParams{}, 0)
	require.NoError(t, err)
	assert.Nil(t, q.Topic)
	assert.Equal(t, "created_at", q.SortBy)
	assert.True(t, q.Desc())
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 0, q.Offset())

	q, err = ParseListQuery(ListParams{}, 25)
	require.NoError(t, err)
	assert.Equal(t, 25, q.Limit)

	q, err = ParseListQuery(ListParams{}, 5000)
	require.NoError(t, err)
	assert.Equal(t, 1000, q.Limit)
}

func TestParseListQuery_UpperBounds(t *testing.T) {
	q, err := ParseListQuery(ListParams{Limit: strp("1000"), Page: strp("1000000")}, 10)
	require.NoError(t, err)
	assert.Equal(t, 999999*1000, q.Offset())
}

func TestParseListQuery_Valid(t *testing.T) {
	q, err := ParseListQuery(ListParams{
		Topic:  strp(" cats "),
		SortBy: strp("Comment_Count"),
		Order:  strp("ASC"),
		Limit:  strp("5"),
		Page:   strp("3"),
	}, 10)
	require.NoError(t, err)
	require.NotNil(t, q.Topic)
	assert.Equal(t, "cats", *q.Topic)
	assert.Equal(t, "comment_count", q.SortBy)
	assert.False(t, q.Desc())
	assert.Equal(t, 10, q.Offset())
}

func TestParseListQuery_Errors(t *testing.T) {
	tests := []struct {
		name string
		p    ListParams
		want error
	}{
		{"unknown column", ListParams{SortBy: strp("not_valid_column")}, ErrInvalidColumn},
		{"injection attempt", ListParams{SortBy: strp("votes; DROP TABLE articles")}, ErrInvalidColumn},
		{"empty column", ListParams{SortBy: strp("")}, ErrInvalidColumn},
		{"bad order", ListParams{Order: strp("sideways")}, ErrInvalidOrder},
		{"empty topic", ListParams{Topic: strp("  ")}, ErrInvalidTopic},
		{"non-numeric limit", ListParams{Limit: strp("ten")}, ErrInvalidLimit},
		{"zero limit", ListParams{Limit: strp("0")}, ErrInvalidLimit},
		{"negative limit", ListParams{Limit: strp("-3")}, ErrInvalidLimit},
		{"non-numeric page", ListParams{Page: strp("two")}, ErrInvalidPage},
		{"zero page", ListParams{Page: strp("0")}, ErrInvalidPage},
		{"limit above cap", ListParams{Limit: strp("1001")}, ErrInvalidLimit},
		{"page above cap", ListParams{Page: strp("1000001")}, ErrInvalidPage},
		{"max int page", ListParams{Page: strp("9223372036854775807")}, ErrInvalidPage},
		{"page beyond int", ListParams{Page: strp("99999999999999999999")}, ErrInvalidPage},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseListQuery(tc.p, 10)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
