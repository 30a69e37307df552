// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// Metrics() feeds two families of Prometheus collectors:
//
//   - traffic: request count, latency, in-flight gauge and response size,
//     labelled by method, route and status. The route label is the matched
//     route in catalog form (/api/articles/:article_id), so dashboards do not
//     change when API_BASE_PATH moves the API. Requests that match no route
//     share the label "unmatched".
//   - writes: news_writes_total{resource, outcome} for every POST, PATCH and
//     DELETE under the API, where resource is the last static route segment
//     (articles, comments, topics) and outcome is one of created, replayed,
//     voted, deleted or rejected.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tbourn/go-news-backend/internal/catalog"
)

// unmatchedPath labels requests that hit no registered route.
const unmatchedPath = "unmatched"

const (
	outcomeCreated  = "created"
	outcomeReplayed = "replayed"
	outcomeVoted    = "voted"
	outcomeDeleted  = "deleted"
	outcomeRejected = "rejected"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// no status label: keeps the histogram small
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// Article listings with full bodies are the largest payloads; a page of
	// 1000 stays under a few MiB.
	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_response_size_bytes",
			Help: "Size of HTTP responses in bytes.",
			Buckets: []float64{
				128, 512, 1 << 10, 4 << 10, 16 << 10,
				64 << 10, 256 << 10, 1 << 20, 4 << 20,
			},
		},
		[]string{"method", "path"},
	)

	newsWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_writes_total",
			Help: "Write requests against news resources by outcome.",
		},
		[]string{"resource", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize, newsWrites)
}

// Metrics returns a Gin middleware that records the collectors above.
// basePath is the prefix the API routes are mounted under.
//
//	r.Use(middleware.Metrics(cfg.APIBasePath))
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
func Metrics(basePath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		method := c.Request.Method
		route := routeLabel(method, c.FullPath(), basePath)
		status := c.Writer.Status()

		httpReqs.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		httpLat.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		// -1 when nothing was written (204)
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, route).Observe(float64(size))
		}

		if res := writeResource(route); res != "" {
			replayed := c.Writer.Header().Get(HeaderIdempotencyReplayed) == "true"
			if out := writeOutcome(method, status, replayed); out != "" {
				newsWrites.WithLabelValues(res, out).Inc()
			}
		}
	}
}

// routeLabel maps a matched gin route to its catalog path.
func routeLabel(method, fullPath, basePath string) string {
	if fullPath == "" {
		return unmatchedPath
	}
	if !strings.HasPrefix(fullPath, strings.TrimSuffix(basePath, "/")) {
		return fullPath
	}
	return strings.TrimPrefix(catalog.Key(method, fullPath, basePath), strings.ToUpper(method)+" ")
}

// writeResource names the resource behind an API route: its last segment
// that is not a parameter. Routes outside /api/ have none.
func writeResource(route string) string {
	rest, ok := strings.CutPrefix(route, "/api/")
	if !ok {
		return ""
	}
	segs := strings.Split(rest, "/")
	for i := len(segs) - 1; i >= 0; i-- {
		if s := segs[i]; s != "" && !strings.HasPrefix(s, ":") && !strings.HasPrefix(s, "*") {
			return s
		}
	}
	return ""
}

func writeOutcome(method string, status int, replayed bool) string {
	switch method {
	case http.MethodPost, http.MethodPatch, http.MethodDelete:
	default:
		return ""
	}
	switch {
	case status >= http.StatusBadRequest:
		return outcomeRejected
	case replayed:
		return outcomeReplayed
	case method == http.MethodPost:
		return outcomeCreated
	case method == http.MethodPatch:
		return outcomeVoted
	default:
		return outcomeDeleted
	}
}
