// Package domain defines the persistence models for topics, users, articles
// and comments. These types are mapped with GORM and form the core data layer
// of the news API.
package domain

import (
	"encoding/json"
	"time"
)

// TimeLayout is the wire format of every timestamp: UTC, millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTime renders t in TimeLayout after converting it to UTC.
func FormatTime(t time.Time) string { return t.UTC().Format(TimeLayout) }

// Topic is a subject articles are filed under. The slug doubles as the
// primary key and is what articles reference.
type Topic struct {
	Slug        string `json:"slug"        gorm:"type:varchar(64);primaryKey"`
	Description string `json:"description" gorm:"type:text;not null;default:''"`
}

// TableName returns the database table name for Topic.
func (Topic) TableName() string { return "topics" }

// User is a read-only account referenced by articles and comments.
type User struct {
	Username  string `json:"username"   gorm:"type:varchar(64);primaryKey"`
	Name      string `json:"name"       gorm:"type:varchar(255);not null"`
	AvatarURL string `json:"avatar_url" gorm:"column:avatar_url;type:text"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Article is a post filed under a topic and written by a user.
//
// Fields:
//   - ArticleID: serial primary key.
//   - Topic / Author: foreign keys to topics.slug and users.username.
//   - Comments: has-many side of comments.article_id; never loaded.
//   - Votes: running tally, only ever changed by a relative update.
//   - CommentCount: derived from a LEFT JOIN on comments. It is read-only
//     and never created as a column.
type Article struct {
	ArticleID    int       `json:"article_id"    gorm:"column:article_id;primaryKey;autoIncrement"`
	Title        string    `json:"title"         gorm:"type:varchar(255);not null"`
	Topic        string    `json:"topic"         gorm:"type:varchar(64);not null;index:idx_articles_topic"`
	Author       string    `json:"author"        gorm:"type:varchar(64);not null;index:idx_articles_author"`
	Body         string    `json:"body"          gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at"    gorm:"not null;index:idx_articles_created"`
	Votes        int       `json:"votes"         gorm:"not null;default:0"`
	CommentCount int       `json:"comment_count" gorm:"column:comment_count;->;-:migration"`

	TopicRef  Topic     `json:"-" gorm:"foreignKey:Topic;references:Slug"`
	AuthorRef User      `json:"-" gorm:"foreignKey:Author;references:Username"`
	Comments  []Comment `json:"-" gorm:"foreignKey:ArticleID;references:ArticleID"`
}

// TableName returns the database table name for Article.
func (Article) TableName() string { return "articles" }

// MarshalJSON renders CreatedAt in TimeLayout.
func (a Article) MarshalJSON() ([]byte, error) {
	type alias Article
	return json.Marshal(struct {
		alias
		CreatedAt string `json:"created_at"`
	}{alias(a), FormatTime(a.CreatedAt)})
}

// Comment is a user's reply on an article. Comments are not cascade-deleted
// by the database; removing an article deletes its comments explicitly.
type Comment struct {
	CommentID int       `json:"comment_id" gorm:"column:comment_id;primaryKey;autoIncrement"`
	ArticleID int       `json:"article_id" gorm:"column:article_id;not null;index:idx_article_comments,priority:1"`
	Body      string    `json:"body"       gorm:"type:text;not null"`
	Author    string    `json:"author"     gorm:"type:varchar(64);not null"`
	Votes     int       `json:"votes"      gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index:idx_article_comments,priority:2"`

	AuthorRef User `json:"-" gorm:"foreignKey:Author;references:Username"`
}

// TableName returns the database table name for Comment.
func (Comment) TableName() string { return "comments" }

// MarshalJSON renders CreatedAt in TimeLayout.
func (c Comment) MarshalJSON() ([]byte, error) {
	type alias Comment
	return json.Marshal(struct {
		alias
		CreatedAt string `json:"created_at"`
	}{alias(c), FormatTime(c.CreatedAt)})
}

// CommentSummary is the trimmed projection returned by comment listings.
type CommentSummary struct {
	CommentID int       `json:"comment_id" gorm:"column:comment_id"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	Votes     int       `json:"votes"`
	CreatedAt time.Time `json:"created_at"`
}

// MarshalJSON renders CreatedAt in TimeLayout.
func (s CommentSummary) MarshalJSON() ([]byte, error) {
	type alias CommentSummary
	return json.Marshal(struct {
		alias
		CreatedAt string `json:"created_at"`
	}{alias(s), FormatTime(s.CreatedAt)})
}
