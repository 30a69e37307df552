// Package catalog holds the static description of the public API served by
// GET /api.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed endpoints.json
var endpointsJSON []byte

// Endpoint documents one route.
type Endpoint struct {
	Description     string          `json:"description"`
	Queries         []string        `json:"queries,omitempty"`
	ExampleRequest  json.RawMessage `json:"exampleRequest,omitempty"`
	ExampleResponse json.RawMessage `json:"exampleResponse,omitempty"`
}

// Catalog maps "METHOD /path" to its documentation.
type Catalog map[string]Endpoint

var (
	loaded  Catalog
	loadErr error
	once    sync.Once
)

// Load decodes the embedded catalog once and returns it.
func Load() (Catalog, error) {
	once.Do(func() {
		var c Catalog
		if err := json.Unmarshal(endpointsJSON, &c); err != nil {
			loadErr = fmt.Errorf("catalog: decode endpoints: %w", err)
			return
		}
		loaded = c
	})
	return loaded, loadErr
}

// Key builds the catalog key for a route, replacing basePath with "/api" so
// the document reads the same whatever prefix the API is mounted under.
func Key(method, path, basePath string) string {
	base := strings.TrimSuffix(basePath, "/")
	switch {
	case base == "/api":
	case path == base || (base == "" && path == "/"):
		path = "/api"
	case strings.HasPrefix(path, base+"/"):
		path = "/api" + strings.TrimPrefix(path, base)
	}
	return strings.ToUpper(method) + " " + path
}

// Keys returns the documented routes in sorted order.
func (c Catalog) Keys() []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
