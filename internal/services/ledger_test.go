package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"culturemap/internal/apperror"
	"culturemap/internal/auth"
	"culturemap/internal/models"
	"culturemap/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newLedger(t *testing.T) (*LedgerService, *gorm.DB) {
	conn := testutil.NewDB(t)
	return NewLedgerService(conn, zap.NewNop()), conn
}

func place(id uint) models.Target {
	return models.Target{Kind: models.KindPlace, ID: id}
}

func countRows(t *testing.T, conn *gorm.DB, model interface{}, userID uint, target models.Target) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(model).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, target.Kind, target.ID).
		Count(&n).Error)
	return n
}

func TestToggleFavoritePairs(t *testing.T) {
	s, conn := newLedger(t)
	ctx := context.Background()
	p := place(7)

	out, err := s.ToggleFavorite(ctx, userB, p)
	require.NoError(t, err)
	assert.Equal(t, Created, out)
	assert.EqualValues(t, 1, countRows(t, conn, &models.Favorite{}, userB.ID, p))

	out, err = s.ToggleFavorite(ctx, userB, p)
	require.NoError(t, err)
	assert.Equal(t, Deleted, out)
	assert.EqualValues(t, 0, countRows(t, conn, &models.Favorite{}, userB.ID, p))

	// favorites of one target do not affect another kind with the same id
	_, err = s.ToggleFavorite(ctx, userB, models.Target{Kind: models.KindEvent, ID: 7})
	require.NoError(t, err)
	out, err = s.ToggleFavorite(ctx, userB, p)
	require.NoError(t, err)
	assert.Equal(t, Created, out)
}

func TestToggleFavoriteRequiresIdentity(t *testing.T) {
	s, _ := newLedger(t)

	_, err := s.ToggleFavorite(context.Background(), nil, place(1))
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestConcurrentToggleKeepsOneRow(t *testing.T) {
	s, conn := newLedger(t)
	ctx := context.Background()
	p := place(3)

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		deleted int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := s.ToggleFavorite(ctx, userA, p)
			if err != nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			switch out {
			case Created:
				created++
			case Deleted:
				deleted++
			}
		}()
	}
	wg.Wait()

	rows := countRows(t, conn, &models.Favorite{}, userA.ID, p)
	assert.LessOrEqual(t, rows, int64(1))
	assert.EqualValues(t, created-deleted, rows)
}

func TestUpsertVoteScenario(t *testing.T) {
	s, conn := newLedger(t)
	ctx := context.Background()
	p := place(1)

	out, vote, err := s.UpsertVote(ctx, userB, p, 5)
	require.NoError(t, err)
	assert.Equal(t, Created, out)
	assert.Equal(t, 5, vote.Value)

	sum, err := s.Summarize(ctx, p)
	require.NoError(t, err)
	require.NotNil(t, sum.Mean)
	assert.InDelta(t, 5.0, *sum.Mean, 1e-9)
	assert.EqualValues(t, 1, sum.Count)

	out, vote, err = s.UpsertVote(ctx, userB, p, 3)
	require.NoError(t, err)
	assert.Equal(t, Updated, out)
	assert.Equal(t, 3, vote.Value)
	assert.False(t, vote.UpdatedAt.Before(vote.CreatedAt))

	sum, err = s.Summarize(ctx, p)
	require.NoError(t, err)
	require.NotNil(t, sum.Mean)
	assert.InDelta(t, 3.0, *sum.Mean, 1e-9)
	assert.EqualValues(t, 1, sum.Count)
	assert.EqualValues(t, 1, countRows(t, conn, &models.Vote{}, userB.ID, p))
}

func TestUpsertVoteValidation(t *testing.T) {
	s, _ := newLedger(t)

	for _, v := range []int{0, -1, 6} {
		_, _, err := s.UpsertVote(context.Background(), userA, place(1), v)
		var verr *apperror.ValidationError
		require.True(t, errors.As(err, &verr), "value %d", v)
		assert.Equal(t, "value", verr.Field)
	}

	_, _, err := s.UpsertVote(context.Background(), nil, place(1), 3)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestConcurrentUpsertConverges(t *testing.T) {
	s, conn := newLedger(t)
	ctx := context.Background()
	p := place(9)

	const workers = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(value int) {
			defer wg.Done()
			out, _, err := s.UpsertVote(ctx, userA, p, value)
			if !assert.NoError(t, err) {
				return
			}
			if out == Created {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(i%5 + 1)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.EqualValues(t, 1, countRows(t, conn, &models.Vote{}, userA.ID, p))
}

func TestSummaryAcrossUsers(t *testing.T) {
	s, _ := newLedger(t)
	ctx := context.Background()
	p := place(2)

	empty, err := s.Summarize(ctx, p)
	require.NoError(t, err)
	assert.Nil(t, empty.Mean)
	assert.EqualValues(t, 0, empty.Count)

	var wg sync.WaitGroup
	for i, v := range []int{5, 4, 3, 4} {
		wg.Add(1)
		go func(id uint, value int) {
			defer wg.Done()
			_, _, err := s.UpsertVote(ctx, &auth.Principal{ID: id, Role: auth.RoleUser}, p, value)
			assert.NoError(t, err)
		}(uint(100+i), v)
	}
	wg.Wait()

	sum, err := s.Summarize(ctx, p)
	require.NoError(t, err)
	require.NotNil(t, sum.Mean)
	assert.InDelta(t, 4.0, *sum.Mean, 1e-9)
	assert.EqualValues(t, 4, sum.Count)

	other, err := s.Summarize(ctx, models.Target{Kind: models.KindEvent, ID: 2})
	require.NoError(t, err)
	assert.Nil(t, other.Mean)
}

func TestAddComment(t *testing.T) {
	s, _ := newLedger(t)
	ctx := context.Background()
	p := place(4)

	c, err := s.AddComment(ctx, userA, p, "  <b>Great</b> views   ")
	require.NoError(t, err)
	assert.Equal(t, "Great views", c.Text)
	assert.Equal(t, "Ana", c.AuthorName)

	_, err = s.AddComment(ctx, userA, p, "<p>   </p>")
	var verr *apperror.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "text", verr.Field)

	_, err = s.AddComment(ctx, userA, p, strings.Repeat("é", models.MaxCommentLength))
	assert.NoError(t, err)
	_, err = s.AddComment(ctx, userA, p, strings.Repeat("é", models.MaxCommentLength+1))
	assert.True(t, errors.As(err, &verr))

	_, err = s.AddComment(ctx, nil, p, "hello")
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestListCommentsNewestFirst(t *testing.T) {
	s, _ := newLedger(t)
	ctx := context.Background()
	p := place(5)

	for _, text := range []string{"one", "two", "three"} {
		_, err := s.AddComment(ctx, userA, p, text)
		require.NoError(t, err)
	}
	_, err := s.AddComment(ctx, userA, place(6), "elsewhere")
	require.NoError(t, err)

	page, err := s.ListComments(ctx, p, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "three", page.Items[0].Text)
	assert.Equal(t, "two", page.Items[1].Text)

	page, err = s.ListComments(ctx, p, 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "one", page.Items[0].Text)
}

func TestListFavorites(t *testing.T) {
	s, _ := newLedger(t)
	ctx := context.Background()

	_, err := s.ToggleFavorite(ctx, userA, place(1))
	require.NoError(t, err)
	_, err = s.ToggleFavorite(ctx, userA, models.Target{Kind: models.KindEvent, ID: 2})
	require.NoError(t, err)
	_, err = s.ToggleFavorite(ctx, userB, place(3))
	require.NoError(t, err)

	favs, err := s.ListFavorites(ctx, userA)
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, models.Target{Kind: models.KindEvent, ID: 2}, favs[0].Target())
	assert.Equal(t, place(1), favs[1].Target())

	_, err = s.ListFavorites(ctx, nil)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}
