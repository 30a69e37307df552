// Package commands implements the newsapi command line.
package commands

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/config"
	"github.com/tbourn/go-news-backend/internal/repo"
	"github.com/tbourn/go-news-backend/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X ...commands.version=...".
var version = ""

var (
	// Global flags
	dbDriver string
	dbPath   string
	dbURL    string

	cfg config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "newsapi",
	Short: "News API - topics, articles, comments and users over REST",
	Long: `newsapi serves the news REST API and manages its database.

Configuration comes from the environment (and a .env file when present);
the database flags below override DB_DRIVER, DB_PATH and DATABASE_URL.`,
	Version:       sysutil.FirstNonEmpty(version, "dev"),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		overrideEnv("DB_DRIVER", dbDriver)
		overrideEnv("DB_PATH", dbPath)
		overrideEnv("DATABASE_URL", dbURL)

		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		cfg = loaded
		sysutil.SetupLogging(cfg.LogLevel, cfg.LogPretty, os.Stderr)
		gin.SetMode(cfg.GinMode)
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbDriver, "db-driver", "", "Database driver: sqlite, postgres or pq")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db-path", "", "SQLite database file")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Postgres connection URL")
}

func overrideEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

// openDB connects to the configured store and closes it when done returns.
func openDB() (db *gorm.DB, done func(), err error) {
	db, err = repo.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return db, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}, nil
}
