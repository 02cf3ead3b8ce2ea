package memory

import (
	"context"
	"errors"
	"testing"

	"xblog/internal/models"
	"xblog/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleStore_AddGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewArticleStore()

	a := models.NewArticle("alice", "T", "C")
	require.NoError(t, s.Add(ctx, a))
	require.NotZero(t, a.ID())

	got, ok, err := s.Get(ctx, a.ID())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "T", got.Title)

	require.ErrorIs(t, s.Add(ctx, a), repository.ErrAlreadyPersisted)

	require.NoError(t, s.Delete(ctx, got))
	_, ok, err = s.Get(ctx, a.ID())
	require.NoError(t, err)
	assert.False(t, ok)

	require.ErrorIs(t, s.Delete(ctx, got), repository.ErrNotPersisted)
}

func TestArticleStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewArticleStore()
	a := models.NewArticle("alice", "T", "C")
	require.NoError(t, s.Add(ctx, a))

	got, _, _ := s.Get(ctx, a.ID())
	got.Edit("changed", "changed")
	_, err := got.ReplyDiscuss("bob", 0, "x")
	require.NoError(t, err)

	again, _, _ := s.Get(ctx, a.ID())
	assert.Equal(t, "T", again.Title)
	assert.Equal(t, 0, again.NumberOfDiscuss())
}

func TestArticleStore_DoCommits(t *testing.T) {
	ctx := context.Background()
	s := NewArticleStore()
	a := models.NewArticle("alice", "T", "C")
	require.NoError(t, s.Add(ctx, a))

	err := s.Do(ctx, func(ctx context.Context) error {
		a.Edit("T2", "C2")
		return s.Save(ctx, a)
	})
	require.NoError(t, err)

	got, _, _ := s.Get(ctx, a.ID())
	assert.Equal(t, "T2", got.Title)
}

func TestArticleStore_DoStagesUntilCommit(t *testing.T) {
	ctx := context.Background()
	s := NewArticleStore()

	var id int64
	err := s.Do(ctx, func(ctx context.Context) error {
		a := models.NewArticle("alice", "T", "C")
		require.NoError(t, s.Add(ctx, a))
		id = a.ID()

		_, ok, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.False(t, ok, "до commit статья не видна")
		return nil
	})
	require.NoError(t, err)

	_, ok, _ := s.Get(ctx, id)
	assert.True(t, ok)
}

func TestArticleStore_DoRollsBackEverything(t *testing.T) {
	ctx := context.Background()
	s := NewArticleStore()
	keep := models.NewArticle("alice", "keep", "C")
	require.NoError(t, s.Add(ctx, keep))

	boom := errors.New("boom")
	var added int64
	err := s.Do(ctx, func(ctx context.Context) error {
		a := models.NewArticle("alice", "T", "C")
		require.NoError(t, s.Add(ctx, a))
		added = a.ID()

		keep.Edit("lost", "lost")
		require.NoError(t, s.Save(ctx, keep))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, ok, _ := s.Get(ctx, added)
	assert.False(t, ok)
	got, _, _ := s.Get(ctx, keep.ID())
	assert.Equal(t, "keep", got.Title)
}

func TestArticleStore_CommitIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := NewArticleStore()
	a := models.NewArticle("alice", "T", "C")
	require.NoError(t, s.Add(ctx, a))
	ghost := models.NewArticle("alice", "ghost", "C")
	ghost.AssignID(999)

	err := s.Do(ctx, func(ctx context.Context) error {
		a.Edit("T2", "C2")
		require.NoError(t, s.Save(ctx, a))
		return s.Save(ctx, ghost)
	})
	require.ErrorIs(t, err, repository.ErrNotPersisted)

	got, _, _ := s.Get(ctx, a.ID())
	assert.Equal(t, "T", got.Title)
}

func TestArticleStore_NestedScopeRejected(t *testing.T) {
	ctx := context.Background()
	s := NewArticleStore()

	err := s.Do(ctx, func(ctx context.Context) error {
		return s.Do(ctx, func(context.Context) error { return nil })
	})
	require.ErrorIs(t, err, repository.ErrNestedScope)
}

func TestArticleStore_CanceledContextDiscardsScope(t *testing.T) {
	s := NewArticleStore()
	ctx, cancel := context.WithCancel(context.Background())

	var id int64
	err := s.Do(ctx, func(ctx context.Context) error {
		a := models.NewArticle("alice", "T", "C")
		require.NoError(t, s.Add(ctx, a))
		id = a.ID()
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)

	_, ok, _ := s.Get(context.Background(), id)
	assert.False(t, ok)
}

func TestArticleStore_IDsNotReused(t *testing.T) {
	ctx := context.Background()
	s := NewArticleStore()

	a := models.NewArticle("alice", "T", "C")
	require.NoError(t, s.Add(ctx, a))
	require.NoError(t, s.Delete(ctx, a))

	b := models.NewArticle("alice", "T", "C")
	require.NoError(t, s.Add(ctx, b))
	assert.NotEqual(t, a.ID(), b.ID())

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()

	require.NoError(t, s.CreateUser(ctx, &models.User{Username: "alice", Role: models.RoleAdmin}))

	taken, err := s.IsUsernameTaken(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, taken)

	u, err := s.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.NotZero(t, u.ID)

	_, err = s.GetByUsername(ctx, "bob")
	require.ErrorIs(t, err, repository.ErrUserNotFound)

	err = s.CreateUser(ctx, &models.User{Username: "alice", PasswordHash: "other", Role: models.RoleUser})
	require.ErrorIs(t, err, repository.ErrUsernameTaken)
	u, err = s.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
}
