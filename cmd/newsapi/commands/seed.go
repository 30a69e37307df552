package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-news-backend/internal/repo"
	"github.com/tbourn/go-news-backend/internal/seed"
)

// seedCmd replaces the database contents with the bundled dataset.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reset the database to the bundled dataset",
	Long: `Migrate the schema, empty every table and insert the bundled topics,
users, articles and comments. Existing data is lost.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, done, err := openDB()
		if err != nil {
			return err
		}
		defer done()

		if err := repo.AutoMigrate(db); err != nil {
			return err
		}
		if err := seed.Seed(cmd.Context(), db); err != nil {
			return err
		}
		log.Info().Msg("database seeded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
