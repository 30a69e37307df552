// Package docs publishes the Swagger 2.0 document of the API to swag so the
// Swagger UI can serve it. Paths are derived from the endpoint catalog, which
// keeps the UI and GET /api describing the same routes.
package docs

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/swaggo/swag"

	"github.com/tbourn/go-news-backend/internal/catalog"
)

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": %s
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "News API",
	Description:      "Topics, articles, comments and users of a news forum.",
	InfoInstanceName: "swagger",
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

var (
	registerOnce sync.Once
	registerErr  error
)

// Register renders the document for cat mounted at basePath and registers it
// with swag. Only the first call has any effect.
func Register(cat catalog.Catalog, basePath string) error {
	registerOnce.Do(func() {
		paths, err := Paths(cat)
		if err != nil {
			registerErr = err
			return
		}
		SwaggerInfo.BasePath = basePath
		SwaggerInfo.SwaggerTemplate = fmt.Sprintf(docTemplate, paths)
		swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
	})
	return registerErr
}

type parameter struct {
	Name        string         `json:"name"`
	In          string         `json:"in"`
	Required    bool           `json:"required"`
	Type        string         `json:"type,omitempty"`
	Description string         `json:"description,omitempty"`
	Schema      map[string]any `json:"schema,omitempty"`
}

type response struct {
	Description string          `json:"description"`
	Examples    json.RawMessage `json:"examples,omitempty"`
}

type operation struct {
	Summary    string              `json:"summary"`
	Tags       []string            `json:"tags,omitempty"`
	Consumes   []string            `json:"consumes,omitempty"`
	Produces   []string            `json:"produces"`
	Parameters []parameter         `json:"parameters,omitempty"`
	Responses  map[string]response `json:"responses"`
}

var pathParam = regexp.MustCompile(`:([A-Za-z_]+)`)

// Paths converts the catalog into a Swagger "paths" object. Catalog paths
// are relative to /api; the document's basePath carries the prefix.
func Paths(cat catalog.Catalog) (string, error) {
	out := map[string]map[string]operation{}
	for _, key := range cat.Keys() {
		method, path, found := strings.Cut(key, " ")
		if !found {
			return "", fmt.Errorf("docs: malformed catalog key %q", key)
		}
		ep := cat[key]

		rel := strings.TrimPrefix(path, "/api")
		if rel == "" {
			rel = "/"
		}
		op := operation{
			Summary:   ep.Description,
			Produces:  []string{"application/json"},
			Responses: map[string]response{},
		}
		if seg := strings.SplitN(strings.TrimPrefix(rel, "/"), "/", 2)[0]; seg != "" {
			op.Tags = []string{seg}
		}
		for _, m := range pathParam.FindAllStringSubmatch(rel, -1) {
			typ := "integer"
			if m[1] == "username" {
				typ = "string"
			}
			op.Parameters = append(op.Parameters, parameter{Name: m[1], In: "path", Required: true, Type: typ})
		}
		for _, q := range ep.Queries {
			op.Parameters = append(op.Parameters, parameter{Name: q, In: "query", Type: "string"})
		}
		if len(ep.ExampleRequest) > 0 {
			op.Consumes = []string{"application/json"}
			op.Parameters = append(op.Parameters, parameter{
				Name: "body", In: "body", Required: true,
				Schema: map[string]any{"type": "object", "example": ep.ExampleRequest},
			})
		}

		status := http.StatusOK
		switch method {
		case http.MethodPost:
			status = http.StatusCreated
		case http.MethodDelete:
			status = http.StatusNoContent
		}
		res := response{Description: http.StatusText(status)}
		if len(ep.ExampleResponse) > 0 {
			res.Examples = json.RawMessage(`{"application/json":` + string(ep.ExampleResponse) + `}`)
		}
		op.Responses[fmt.Sprint(status)] = res

		swPath := pathParam.ReplaceAllString(rel, "{$1}")
		if out[swPath] == nil {
			out[swPath] = map[string]operation{}
		}
		out[swPath][strings.ToLower(method)] = op
	}

	b, err := json.MarshalIndent(out, "    ", "    ")
	if err != nil {
		return "", fmt.Errorf("docs: encode paths: %w", err)
	}
	return string(b), nil
}
