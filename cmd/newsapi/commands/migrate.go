package commands

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-news-backend/internal/repo"
)

var purgeExpired bool

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Create or update the tables, indexes and foreign keys of the news schema.

Examples:
  newsapi migrate                      # Apply the schema
  newsapi migrate --purge              # Also drop expired Idempotency-Key records`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, done, err := openDB()
		if err != nil {
			return err
		}
		defer done()

		if err := repo.AutoMigrate(db); err != nil {
			return err
		}
		log.Info().Str("driver", cfg.DBDriver).Msg("schema migrated")

		if purgeExpired {
			n, err := repo.PurgeIdempotency(cmd.Context(), db, time.Now().UTC())
			if err != nil {
				return err
			}
			log.Info().Int64("purged", n).Msg("expired idempotency keys removed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolVar(&purgeExpired, "purge", false, "Delete expired idempotency records")
}
