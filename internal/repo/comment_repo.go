package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-news-backend/internal/domain"
)

// ListCommentSummaries returns a page of an article's comments, newest first,
// trimmed to the summary projection.
func ListCommentSummaries(ctx context.Context, db *gorm.DB, articleID, offset, limit int) ([]domain.CommentSummary, error) {
	out := []domain.CommentSummary{}
	tx := db.WithContext(ctx).
		Model(&domain.Comment{}).
		Select("comment_id, body, author, votes, created_at").
		Where("article_id = ?", articleID).
		Order("created_at DESC, comment_id DESC")
	if limit > 0 {
		tx = tx.Offset(offset).Limit(limit)
	}
	err := tx.Find(&out).Error
	return out, err
}

// CountComments returns the number of comments on an article.
func CountComments(ctx context.Context, db *gorm.DB, articleID int) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Comment{}).Where("article_id = ?", articleID).Count(&total).Error
	return total, err
}

// GetComment fetches a comment by id, or ErrNotFound.
func GetComment(ctx context.Context, db *gorm.DB, id int) (*domain.Comment, error) {
	var c domain.Comment
	if err := db.WithContext(ctx).Where("comment_id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateComment inserts a comment with zero votes, stamped now (UTC).
func CreateComment(ctx context.Context, db *gorm.DB, articleID int, author, body string) (*domain.Comment, error) {
	c := &domain.Comment{
		ArticleID: articleID,
		Author:    author,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// IncrementCommentVotes adds inc to the comment's votes and returns the row.
func IncrementCommentVotes(ctx context.Context, db *gorm.DB, id, inc int) (*domain.Comment, error) {
	var out *domain.Comment
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Comment{}).
			Where("comment_id = ?", id).
			UpdateColumn("votes", gorm.Expr("votes + ?", inc))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		c, err := GetComment(ctx, tx, id)
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteComment removes a comment, returning ErrNotFound when nothing matched.
func DeleteComment(ctx context.Context, db *gorm.DB, id int) error {
	res := db.WithContext(ctx).Where("comment_id = ?", id).Delete(&domain.Comment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
