package services

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-news-backend/internal/apperr"
	"github.com/tbourn/go-news-backend/internal/repo"
)

func newCommentService(t *testing.T) *CommentService {
	return &CommentService{DB: newServiceDB(t), DefaultLimit: 10, IdempotencyTTL: time.Hour}
}

func TestCommentScope(t *testing.T) {
	assert.Equal(t, "comment:7", CommentScope(7))
}

func TestCommentService_ListForArticle(t *testing.T) {
	s := newCommentService(t)
	ctx := context.Background()

	out, err := s.ListForArticle(ctx, 1, ListParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 11, out.TotalCount)
	require.Len(t, out.Comments, 10)
	assert.Equal(t, 5, out.Comments[0].CommentID)
	for i := 1; i < len(out.Comments); i++ {
		assert.False(t, out.Comments[i].CreatedAt.After(out.Comments[i-1].CreatedAt), "not newest first at %d", i)
	}

	page2, err := s.ListForArticle(ctx, 1, ListParams{Page: strp("2")})
	require.NoError(t, err)
	require.Len(t, page2.Comments, 1)
	assert.Equal(t, 9, page2.Comments[0].CommentID)

	// sorting parameters are not part of the comment listing
	_, err = s.ListForArticle(ctx, 1, ListParams{SortBy: strp("nonsense")})
	require.NoError(t, err)

	_, err = s.ListForArticle(ctx, 1, ListParams{Limit: strp("x")})
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestCommentService_ListForArticle_EmptyVsMissing(t *testing.T) {
	s := newCommentService(t)
	ctx := context.Background()

	out, err := s.ListForArticle(ctx, 2, ListParams{})
	require.NoError(t, err)
	assert.NotNil(t, out.Comments)
	assert.Empty(t, out.Comments)
	assert.Equal(t, "No comments for this article", out.Msg)

	_, err = s.ListForArticle(ctx, 999, ListParams{})
	assert.ErrorIs(t, err, ErrArticleNotFound)
}

func TestCommentService_Create(t *testing.T) {
	s := newCommentService(t)
	ctx := context.Background()

	c, replayed, err := s.Create(ctx, 2, mustPayload(t, `{"username":"lurker","body":"first!"}`), "")
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Equal(t, 19, c.CommentID)
	assert.Equal(t, 2, c.ArticleID)
	assert.Equal(t, "lurker", c.Author)
	assert.Equal(t, 0, c.Votes)
	assert.WithinDuration(t, time.Now(), c.CreatedAt, time.Minute)

	out, err := s.ListForArticle(ctx, 2, ListParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, out.TotalCount)
}

func TestCommentService_Create_Validation(t *testing.T) {
	s := newCommentService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		article int
		body    string
		want    error
	}{
		{"missing body", 1, `{"username":"lurker"}`, ErrIncompleteComment},
		{"non-string body", 1, `{"username":"lurker","body":42}`, ErrWrongDataType},
		{"missing username", 1, `{"body":"hi"}`, ErrIncompleteComment},
		{"body checked before article", 999, `{"username":"lurker"}`, ErrIncompleteComment},
		{"unknown article", 999, `{"username":"lurker","body":"hi"}`, ErrArticleNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := s.Create(ctx, tc.article, mustPayload(t, tc.body), "")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCommentService_Create_UnknownUserIsHintedConstraint(t *testing.T) {
	s := newCommentService(t)

	_, _, err := s.Create(context.Background(), 1, mustPayload(t, `{"username":"nobody","body":"hi"}`), "")
	require.Error(t, err)
	assert.True(t, apperr.IsForeignKey(err), "err = %v", err)
	hint, ok := apperr.Hint(err)
	require.True(t, ok)
	assert.Equal(t, "Username does not exist", hint)
}

func TestCommentService_InsertFailure_NamesMissingParent(t *testing.T) {
	s := newCommentService(t)
	ctx := context.Background()
	fk := &pgconn.PgError{Code: apperr.CodeForeignKey, Message: "insert or update on table \"comments\" violates foreign key constraint"}

	// article still present: the author is the missing row
	err := s.insertFailure(ctx, 2, fk)
	hint, ok := apperr.Hint(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, HintUsernameUnknown, hint)

	// article removed after the pre-check
	require.NoError(t, repo.DeleteArticle(ctx, s.DB, 2))
	err = s.insertFailure(ctx, 2, fk)
	assert.ErrorIs(t, err, ErrArticleNotFound)
	_, ok = apperr.Hint(err)
	assert.False(t, ok)
}

func TestCommentService_Create_Idempotent(t *testing.T) {
	s := newCommentService(t)
	ctx := context.Background()
	body := `{"username":"lurker","body":"once"}`

	first, _, err := s.Create(ctx, 3, mustPayload(t, body), "k")
	require.NoError(t, err)

	again, replayed, err := s.Create(ctx, 3, mustPayload(t, body), "k")
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.CommentID, again.CommentID)

	// same key under another article is a separate scope
	other, replayed, err := s.Create(ctx, 5, mustPayload(t, body), "k")
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.NotEqual(t, first.CommentID, other.CommentID)

	n, err := repo.CountComments(ctx, s.DB, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestCommentService_Vote(t *testing.T) {
	s := newCommentService(t)
	ctx := context.Background()

	c, err := s.Vote(ctx, 1, mustPayload(t, `{"inc_votes":4}`))
	require.NoError(t, err)
	assert.Equal(t, 20, c.Votes)

	c, err = s.Vote(ctx, 1, mustPayload(t, `{"inc_votes":-30}`))
	require.NoError(t, err)
	assert.Equal(t, -10, c.Votes)

	_, err = s.Vote(ctx, 1, mustPayload(t, `{"votes":1}`))
	assert.ErrorIs(t, err, ErrIncVotesMissing)

	_, err = s.Vote(ctx, 1, mustPayload(t, `{"inc_votes":"1"}`))
	assert.ErrorIs(t, err, ErrWrongDataType)

	_, err = s.Vote(ctx, 999, mustPayload(t, `{"inc_votes":1}`))
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestCommentService_Delete(t *testing.T) {
	s := newCommentService(t)
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, 5))
	out, err := s.ListForArticle(ctx, 1, ListParams{Limit: strp("20")})
	require.NoError(t, err)
	assert.EqualValues(t, 10, out.TotalCount)
	for _, c := range out.Comments {
		assert.NotEqual(t, 5, c.CommentID)
	}

	assert.ErrorIs(t, s.Delete(ctx, 5), ErrCommentNotFound)
}
