// Package seed loads the bundled news dataset into a database. The same data
// backs local development (`newsapi seed`) and the HTTP test suites.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-news-backend/internal/domain"
)

//go:embed data/news.json
var newsJSON []byte

// Dataset is the full set of rows inserted by Seed.
type Dataset struct {
	Topics   []domain.Topic   `json:"topics"`
	Users    []domain.User    `json:"users"`
	Articles []domain.Article `json:"articles"`
	Comments []domain.Comment `json:"comments"`
}

// Load decodes the embedded dataset.
func Load() (*Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(newsJSON, &ds); err != nil {
		return nil, fmt.Errorf("seed: decode dataset: %w", err)
	}
	return &ds, nil
}

// Seed empties every table and inserts the embedded dataset in one
// transaction. The schema must already exist.
func Seed(ctx context.Context, db *gorm.DB) error {
	ds, err := Load()
	if err != nil {
		return err
	}
	return Apply(ctx, db, ds)
}

// Apply replaces the contents of every table with ds.
func Apply(ctx context.Context, db *gorm.DB, ds *Dataset) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wipe := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []any{&domain.Idempotency{}, &domain.Comment{}, &domain.Article{}, &domain.User{}, &domain.Topic{}} {
			if err := wipe.Delete(model).Error; err != nil {
				return fmt.Errorf("seed: wipe %T: %w", model, err)
			}
		}

		ins := tx.Omit(clause.Associations)
		if len(ds.Topics) > 0 {
			if err := ins.Create(&ds.Topics).Error; err != nil {
				return fmt.Errorf("seed: topics: %w", err)
			}
		}
		if len(ds.Users) > 0 {
			if err := ins.Create(&ds.Users).Error; err != nil {
				return fmt.Errorf("seed: users: %w", err)
			}
		}
		if len(ds.Articles) > 0 {
			if err := ins.Create(&ds.Articles).Error; err != nil {
				return fmt.Errorf("seed: articles: %w", err)
			}
		}
		if len(ds.Comments) > 0 {
			if err := ins.Create(&ds.Comments).Error; err != nil {
				return fmt.Errorf("seed: comments: %w", err)
			}
		}
		return resetSequences(tx)
	})
}

// resetSequences moves Postgres serial sequences past the explicit ids that
// were just inserted. Other dialects track this on their own.
func resetSequences(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	for _, s := range []struct{ table, col string }{{"articles", "article_id"}, {"comments", "comment_id"}} {
		q := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%s', '%s'), COALESCE(MAX(%s), 0) + 1, false) FROM %s",
			s.table, s.col, s.col, s.table)
		if err := tx.Exec(q).Error; err != nil {
			return fmt.Errorf("seed: reset %s sequence: %w", s.table, err)
		}
	}
	return nil
}
