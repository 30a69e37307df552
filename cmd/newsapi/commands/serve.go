package commands

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	httpapi "github.com/tbourn/go-news-backend/internal/http"
	"github.com/tbourn/go-news-backend/internal/observability"
	"github.com/tbourn/go-news-backend/internal/repo"
	"github.com/tbourn/go-news-backend/internal/seed"
)

var (
	// Serve flags
	port          string
	seedOnStart   bool
	purgeInterval time.Duration
)

// serveCmd starts the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the news API",
	Long: `Serve the news API until SIGINT or SIGTERM, then drain in-flight
requests and flush traces.

Examples:
  newsapi serve                        # Listen on $PORT (default 8080)
  newsapi serve --port 9090 --seed     # Seed the dataset first`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&port, "port", "", "Listen port (overrides PORT)")
	serveCmd.Flags().BoolVar(&seedOnStart, "seed", false, "Reset the database to the bundled dataset before serving")
	serveCmd.Flags().DurationVar(&purgeInterval, "purge-interval", time.Hour, "How often expired idempotency records are deleted (0 disables)")
}

func runServe(ctx context.Context) error {
	if port != "" {
		cfg.Port = port
	}

	shutdownTracing, err := observability.Setup(ctx, cfg.OTEL, rootCmd.Version, cfg.GinMode)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn().Err(err).Msg("trace shutdown")
		}
	}()

	db, done, err := openDB()
	if err != nil {
		return err
	}
	defer done()

	if cfg.AutoMigrate || seedOnStart {
		if err := repo.AutoMigrate(db); err != nil {
			return err
		}
	}
	if seedOnStart {
		if err := seed.Seed(ctx, db); err != nil {
			return err
		}
		log.Info().Msg("database seeded")
	}

	r := gin.New()
	if err := httpapi.RegisterRoutes(r, db, cfg); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	if purgeInterval > 0 {
		go purgeLoop(ctx, db, purgeInterval)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("base_path", cfg.APIBasePath).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.WriteTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

// purgeLoop deletes expired idempotency records every interval until ctx ends.
func purgeLoop(ctx context.Context, db *gorm.DB, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeIdempotency(ctx, db, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("purge idempotency")
				continue
			}
			if n > 0 {
				log.Debug().Int64("purged", n).Msg("expired idempotency keys removed")
			}
		}
	}
}
