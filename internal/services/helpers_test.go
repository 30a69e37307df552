package services

import (
	"context"
	"strings"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-news-backend/internal/repo"
	"github.com/tbourn/go-news-backend/internal/seed"
)

// newServiceDB returns an isolated in-memory database holding the seed data.
func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:svc_" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repo.AutoMigrate(db))
	require.NoError(t, seed.Seed(context.Background(), db))
	return db
}

func strp(s string) *string { return &s }

// mustPayload decodes a JSON literal, failing the test on error.
func mustPayload(t *testing.T, js string) Payload {
	t.Helper()
	p, err := DecodePayload(strings.NewReader(js))
	require.NoError(t, err)
	return p
}
