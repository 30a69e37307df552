package services

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-news-backend/internal/apperr"
	"github.com/tbourn/go-news-backend/internal/repo"
)

func newArticleService(t *testing.T) *ArticleService {
	return &ArticleService{DB: newServiceDB(t), DefaultLimit: 10, IdempotencyTTL: time.Hour}
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	id, err = ParseID("-1")
	require.NoError(t, err)
	assert.Equal(t, -1, id)

	for _, raw := range []string{"one", "", "1.5", "99999999999999999999"} {
		_, err := ParseID(raw)
		assert.ErrorIs(t, err, ErrInvalidID, raw)
	}
}

func TestArticleService_List_Default(t *testing.T) {
	s := newArticleService(t)

	out, err := s.List(context.Background(), ListParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 13, out.TotalCount)
	require.Len(t, out.Articles, 10)
	assert.Empty(t, out.Msg)

	ids := []int{}
	for _, a := range out.Articles[:5] {
		ids = append(ids, a.ArticleID)
	}
	assert.Equal(t, []int{3, 6, 2, 13, 12}, ids)
}

func TestArticleService_List_SortByAuthorAsc(t *testing.T) {
	s := newArticleService(t)

	out, err := s.List(context.Background(), ListParams{SortBy: strp("author"), Order: strp("asc"), Limit: strp("20")})
	require.NoError(t, err)
	require.Len(t, out.Articles, 13)
	assert.True(t, sort.SliceIsSorted(out.Articles, func(i, j int) bool {
		return out.Articles[i].Author < out.Articles[j].Author
	}))
}

func TestArticleService_List_CommentCounts(t *testing.T) {
	s := newArticleService(t)

	out, err := s.List(context.Background(), ListParams{SortBy: strp("comment_count"), Limit: strp("20")})
	require.NoError(t, err)
	counts := map[int]int{}
	for _, a := range out.Articles {
		counts[a.ArticleID] = a.CommentCount
	}
	assert.Equal(t, 11, counts[1])
	assert.Equal(t, 0, counts[2])
	assert.Equal(t, 2, counts[9])
	assert.Equal(t, 1, out.Articles[0].ArticleID)
}

func TestArticleService_List_Topic(t *testing.T) {
	s := newArticleService(t)
	ctx := context.Background()

	out, err := s.List(ctx, ListParams{Topic: strp("cats")})
	require.NoError(t, err)
	assert.EqualValues(t, 1, out.TotalCount)
	require.Len(t, out.Articles, 1)
	assert.Equal(t, "cats", out.Articles[0].Topic)

	empty, err := s.List(ctx, ListParams{Topic: strp("paper")})
	require.NoError(t, err)
	assert.NotNil(t, empty.Articles)
	assert.Empty(t, empty.Articles)
	assert.Equal(t, "No articles for this topic", empty.Msg)

	_, err = s.List(ctx, ListParams{Topic: strp("dogs")})
	assert.ErrorIs(t, err, ErrTopicNotFound)

	_, err = s.List(ctx, ListParams{Topic: strp("")})
	assert.ErrorIs(t, err, ErrInvalidTopic)
}

func TestArticleService_List_Pagination(t *testing.T) {
	s := newArticleService(t)

	out, err := s.List(context.Background(), ListParams{Limit: strp("5"), Page: strp("3")})
	require.NoError(t, err)
	assert.EqualValues(t, 13, out.TotalCount)
	assert.Len(t, out.Articles, 3)

	beyond, err := s.List(context.Background(), ListParams{Limit: strp("5"), Page: strp("9")})
	require.NoError(t, err)
	assert.Empty(t, beyond.Articles)
	assert.EqualValues(t, 13, beyond.TotalCount)
}

func TestArticleService_Get(t *testing.T) {
	s := newArticleService(t)

	a, err := s.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Living in the shadow of a great man", a.Title)
	assert.Equal(t, 11, a.CommentCount)
	assert.Equal(t, 100, a.Votes)

	_, err = s.Get(context.Background(), 999)
	assert.ErrorIs(t, err, ErrArticleNotFound)
}

func TestArticleService_Vote(t *testing.T) {
	s := newArticleService(t)
	ctx := context.Background()

	a, err := s.Vote(ctx, 1, mustPayload(t, `{"inc_votes":100}`))
	require.NoError(t, err)
	assert.Equal(t, 200, a.Votes)

	a, err = s.Vote(ctx, 1, mustPayload(t, `{"inc_votes":-10}`))
	require.NoError(t, err)
	assert.Equal(t, 190, a.Votes)

	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 190, got.Votes)

	_, err = s.Vote(ctx, 1, mustPayload(t, `{}`))
	assert.ErrorIs(t, err, ErrIncVotesMissing)

	_, err = s.Vote(ctx, 1, mustPayload(t, `{"inc_votes":"cat"}`))
	assert.ErrorIs(t, err, ErrWrongDataType)

	_, err = s.Vote(ctx, 999, mustPayload(t, `{"inc_votes":1}`))
	assert.ErrorIs(t, err, ErrArticleNotFound)
}

func TestArticleService_Create(t *testing.T) {
	s := newArticleService(t)
	ctx := context.Background()

	a, replayed, err := s.Create(ctx, mustPayload(t, `{"author":"lurker","title":"New","body":"text","topic":"paper"}`), "")
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Equal(t, 14, a.ArticleID)
	assert.Equal(t, 0, a.Votes)
	assert.Equal(t, 0, a.CommentCount)
	assert.False(t, a.CreatedAt.IsZero())

	out, err := s.List(ctx, ListParams{Topic: strp("paper")})
	require.NoError(t, err)
	assert.EqualValues(t, 1, out.TotalCount)
}

func TestArticleService_Create_Validation(t *testing.T) {
	s := newArticleService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		body string
		want error
	}{
		{"missing title", `{"author":"lurker","body":"b","topic":"cats"}`, ErrIncompleteArticle},
		{"blank body", `{"author":"lurker","title":"t","body":"","topic":"cats"}`, ErrIncompleteArticle},
		{"wrong type", `{"author":"lurker","title":5,"body":"b","topic":"cats"}`, ErrWrongDataType},
		{"missing beats wrong type", `{"author":1,"title":"t","body":"b"}`, ErrIncompleteArticle},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := s.Create(ctx, mustPayload(t, tc.body), "")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestArticleService_Create_UnknownReferences(t *testing.T) {
	s := newArticleService(t)
	ctx := context.Background()

	_, _, err := s.Create(ctx, mustPayload(t, `{"author":"nobody","title":"t","body":"b","topic":"cats"}`), "")
	ae, ok := apperr.As(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, apperr.KindConflict, ae.Kind)
	assert.Equal(t, "Author does not exist", ae.Msg)

	_, _, err = s.Create(ctx, mustPayload(t, `{"author":"lurker","title":"t","body":"b","topic":"dogs"}`), "")
	ae, ok = apperr.As(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, "Topic does not exist", ae.Msg)
	assert.Equal(t, 400, ae.Kind.Status())
}

func TestArticleService_Create_Idempotent(t *testing.T) {
	s := newArticleService(t)
	ctx := context.Background()
	body := `{"author":"lurker","title":"Once","body":"b","topic":"cats"}`

	first, replayed, err := s.Create(ctx, mustPayload(t, body), "key-1")
	require.NoError(t, err)
	assert.False(t, replayed)

	second, replayed, err := s.Create(ctx, mustPayload(t, body), "key-1")
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.ArticleID, second.ArticleID)

	n, err := repo.CountArticles(ctx, s.DB, "")
	require.NoError(t, err)
	assert.EqualValues(t, 14, n)

	require.NoError(t, s.Delete(ctx, first.ArticleID))
	_, _, err = s.Create(ctx, mustPayload(t, body), "key-1")
	assert.ErrorIs(t, err, ErrIdempotencyKeyUsed)
}

func TestArticleService_Delete(t *testing.T) {
	s := newArticleService(t)
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, 1))
	_, err := s.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrArticleNotFound)

	n, err := repo.CountComments(ctx, s.DB, 1)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.ErrorIs(t, s.Delete(ctx, 1), ErrArticleNotFound)
}
