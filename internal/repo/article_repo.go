// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Article model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. Every
// value reaches the store as a bound parameter; identifiers in ORDER BY come
// from a fixed whitelist.
//
// Error semantics:
//   - A missing article yields ErrNotFound (gorm.ErrRecordNotFound).
//   - Constraint violations and connectivity failures are propagated raw so
//     the HTTP error chain can classify them.
//
// Functions:
//
//   - ListArticles(ctx, db, q) -> []domain.Article, error
//     Filtered, sorted and paginated articles with a derived comment_count.
//
//   - CountArticles(ctx, db, topic) -> int64, error
//     Size of the filtered set before pagination.
//
//   - GetArticle(ctx, db, id) -> *domain.Article, error
//
//   - CreateArticle(ctx, db, a) -> *domain.Article, error
//
//   - IncrementArticleVotes(ctx, db, id, inc) -> *domain.Article, error
//     Relative update plus read-back inside one transaction.
//
//   - DeleteArticle(ctx, db, id) -> error
//     Deletes the article's comments, then the article, in one transaction.
package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-news-backend/internal/domain"
)

// articleSortColumns maps accepted sort keys to the SQL expression used in
// ORDER BY.
var articleSortColumns = map[string]string{
	"article_id":    "articles.article_id",
	"title":         "articles.title",
	"topic":         "articles.topic",
	"author":        "articles.author",
	"created_at":    "articles.created_at",
	"votes":         "articles.votes",
	"comment_count": "comment_count",
}

// IsArticleSortColumn reports whether col may be used to sort articles.
func IsArticleSortColumn(col string) bool {
	_, ok := articleSortColumns[col]
	return ok
}

// ArticleQuery describes one page of the article listing.
type ArticleQuery struct {
	Topic  string // empty means every topic
	SortBy string // key of articleSortColumns
	Desc   bool
	Offset int
	Limit  int
}

// withCommentCount selects articles with the number of comments referencing
// each one.
func withCommentCount(db *gorm.DB) *gorm.DB {
	return db.Model(&domain.Article{}).
		Select("articles.*, COUNT(comments.comment_id) AS comment_count").
		Joins("LEFT JOIN comments ON comments.article_id = articles.article_id").
		Group("articles.article_id")
}

// ListArticles returns the page of articles described by q. Ties on the sort
// column are broken by article_id in the same direction.
func ListArticles(ctx context.Context, db *gorm.DB, q ArticleQuery) ([]domain.Article, error) {
	col, ok := articleSortColumns[q.SortBy]
	if !ok {
		return nil, fmt.Errorf("repo: unsupported sort column %q", q.SortBy)
	}

	tx := withCommentCount(db.WithContext(ctx))
	if q.Topic != "" {
		tx = tx.Where("articles.topic = ?", q.Topic)
	}
	tx = tx.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: col, Raw: true}, Desc: q.Desc},
		{Column: clause.Column{Name: "articles.article_id", Raw: true}, Desc: q.Desc},
	}})
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit).Offset(q.Offset)
	}

	out := []domain.Article{}
	err := tx.Find(&out).Error
	return out, err
}

// CountArticles returns the number of articles in topic, or in total when
// topic is empty.
func CountArticles(ctx context.Context, db *gorm.DB, topic string) (int64, error) {
	var total int64
	tx := db.WithContext(ctx).Model(&domain.Article{})
	if topic != "" {
		tx = tx.Where("topic = ?", topic)
	}
	err := tx.Count(&total).Error
	return total, err
}

// GetArticle fetches one article with its comment_count, or ErrNotFound.
func GetArticle(ctx context.Context, db *gorm.DB, id int) (*domain.Article, error) {
	var a domain.Article
	err := withCommentCount(db.WithContext(ctx)).
		Where("articles.article_id = ?", id).
		Take(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ArticleExists reports whether an article with id exists.
func ArticleExists(ctx context.Context, db *gorm.DB, id int) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Article{}).Where("article_id = ?", id).Count(&n).Error
	return n > 0, err
}

// CreateArticle inserts a. CreatedAt defaults to now (UTC) and the returned
// article has a zero comment_count.
func CreateArticle(ctx context.Context, db *gorm.DB, a *domain.Article) (*domain.Article, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(a).Error; err != nil {
		return nil, err
	}
	a.CommentCount = 0
	return a, nil
}

// IncrementArticleVotes adds inc to the article's votes with a single
// relative UPDATE and returns the updated row. The update and the read-back
// share one transaction.
func IncrementArticleVotes(ctx context.Context, db *gorm.DB, id, inc int) (*domain.Article, error) {
	var out *domain.Article
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Article{}).
			Where("article_id = ?", id).
			UpdateColumn("votes", gorm.Expr("votes + ?", inc))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		a, err := GetArticle(ctx, tx, id)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteArticle removes the article and every comment on it. Nothing is
// deleted when the article does not exist.
func DeleteArticle(ctx context.Context, db *gorm.DB, id int) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Where("article_id = ?", id).Delete(&domain.Article{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
