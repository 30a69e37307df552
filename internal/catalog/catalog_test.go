package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, c)

	for _, k := range c.Keys() {
		assert.NotEmpty(t, c[k].Description, k)
	}
	ep, ok := c["GET /api/articles"]
	require.True(t, ok)
	assert.Contains(t, ep.Queries, "sort_by")
	assert.Contains(t, string(ep.ExampleResponse), "total_count")

	again, _ := Load()
	assert.Equal(t, len(c), len(again))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "GET /api/articles", Key("get", "/api/articles", "/api"))
	assert.Equal(t, "PATCH /api/comments/:comment_id", Key("PATCH", "/v2/comments/:comment_id", "/v2"))
	assert.Equal(t, "GET /health", Key("GET", "/health", "/v2"))
	assert.Equal(t, "GET /api/users", Key("GET", "/users", "/"))
	assert.Equal(t, "GET /api", Key("GET", "/v2", "/v2"))
	assert.Equal(t, "GET /api", Key("GET", "/", "/"))
}

func TestKeys_Sorted(t *testing.T) {
	c := Catalog{"b": {}, "a": {}, "c": {}}
	assert.Equal(t, []string{"a", "b", "c"}, c.Keys())
}
