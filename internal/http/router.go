// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, error
// classification, metrics, CORS, security headers, idempotency, and rate
// limiting.
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/catalog"
	"github.com/tbourn/go-news-backend/internal/config"
	"github.com/tbourn/go-news-backend/internal/docs"
	"github.com/tbourn/go-news-backend/internal/http/handlers"
	"github.com/tbourn/go-news-backend/internal/http/middleware"
	"github.com/tbourn/go-news-backend/internal/repo"
	"github.com/tbourn/go-news-backend/internal/services"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. gzip: wraps the writer for everything below it
//  3. RequestID: generate/propagate correlation id
//  4. Logger: structured logs with PII scrubbing
//  5. Recovery: capture panics after logger
//  6. Body size limiter
//  7. Metrics
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per IP, bypass on replay)
//  10. CORS and Security headers
//  11. ErrorHandler: innermost, so the error body is written before any
//     outer middleware reads the status
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) error {
	cat, err := catalog.Load()
	if err != nil {
		return err
	}

	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Response compression (clients sending Accept-Encoding: gzip)
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", "/swagger"})))

	// 3) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 4) Structured logging with redaction
	r.Use(middleware.Logger(middleware.LogOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))

	// 5) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 6) Global body size limit
	r.Use(limitBody(maxBodyBytes))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics(cfg.APIBasePath))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
			Scope:  idempotencyScope,
		},
		func(ctx context.Context, scope, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, scope, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	r.Use(rl.Handler())

	// 10) CORS posture (allow all if none configured)
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", middleware.HeaderIdempotencyReplayed},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// ACAO: * even without an Origin header
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		corsCfg.AllowAllOrigins = true
	} else {
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// 11) Error classification chain
	r.Use(middleware.ErrorHandler(middleware.DefaultChain()...))

	// Fallbacks
	r.NoRoute(middleware.NoRoute(cfg.NotFoundStrict))
	r.NoMethod(middleware.NoMethod())

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		if err := docs.Register(cat, cfg.APIBasePath); err != nil {
			return err
		}
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← db
	h := handlers.New(
		&services.ArticleService{DB: db, DefaultLimit: cfg.DefaultPageLimit, IdempotencyTTL: cfg.IdempotencyTTL},
		&services.CommentService{DB: db, DefaultLimit: cfg.DefaultPageLimit, IdempotencyTTL: cfg.IdempotencyTTL},
		&services.TopicService{DB: db},
		&services.UserService{DB: db},
		cat,
	)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api"
	r.GET(rootPath(apiBase), h.GetAPI)
	api := groupWithPrefix(r, apiBase)
	{
		// Topics
		api.GET("/topics", h.ListTopics)
		api.POST("/topics", h.CreateTopic)

		// Articles
		api.GET("/articles", h.ListArticles)
		api.POST("/articles", h.CreateArticle)
		api.GET("/articles/:article_id", h.GetArticle)
		api.PATCH("/articles/:article_id", h.VoteArticle)
		api.DELETE("/articles/:article_id", h.DeleteArticle)

		// Comments
		api.GET("/articles/:article_id/comments", h.ListComments)
		api.POST("/articles/:article_id/comments", h.PostComment)
		api.PATCH("/comments/:comment_id", h.VoteComment)
		api.DELETE("/comments/:comment_id", h.DeleteComment)

		// Users
		api.GET("/users", h.ListUsers)
		api.GET("/users/:username", h.GetUser)
	}
	return nil
}

// idempotencyScope maps a create route to the scope its keys are recorded
// under. Other routes have no scope.
func idempotencyScope(c *gin.Context) string {
	route := c.FullPath()
	switch {
	case strings.HasSuffix(route, "/articles/:article_id/comments"):
		id, err := services.ParseID(c.Param("article_id"))
		if err != nil {
			return ""
		}
		return services.CommentScope(id)
	case strings.HasSuffix(route, "/articles"):
		return services.ScopeArticles
	}
	return ""
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

// rootPath is the absolute path of the API description endpoint.
func rootPath(prefix string) string {
	if prefix == "" {
		return "/"
	}
	return prefix
}
