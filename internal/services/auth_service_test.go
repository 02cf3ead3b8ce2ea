package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"xblog/internal/models"
	"xblog/internal/repository/memory"
	"xblog/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Мок-репозиторий (заглушка)
type mockUserRepo struct {
	users    map[string]*models.User
	lastUser *models.User
}

func (m *mockUserRepo) IsUsernameTaken(_ context.Context, username string) (bool, error) {
	_, exists := m.users[username]
	return exists, nil
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *models.User) error {
	m.users[user.Username] = user
	m.lastUser = user
	return nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func TestRegisterUser(t *testing.T) {
	repo := &mockUserRepo{users: make(map[string]*models.User)}
	service := NewAuthService(repo)

	err := service.RegisterUser(context.Background(), &models.User{Username: "testuser"}, "secret")
	require.NoError(t, err)

	require.NotNil(t, repo.lastUser)
	assert.NotEmpty(t, repo.lastUser.PasswordHash)
	assert.NotEqual(t, "secret", repo.lastUser.PasswordHash)
	assert.Equal(t, models.RoleUser, repo.lastUser.Role)

	err = service.RegisterUser(context.Background(), &models.User{Username: "testuser"}, "other")
	require.ErrorIs(t, err, ErrUsernameTaken)

	err = service.RegisterUser(context.Background(), &models.User{Username: "  "}, "secret")
	require.ErrorIs(t, err, ErrInvalidUser)
}

func TestRegisterUser_ConcurrentSameName(t *testing.T) {
	ctx := context.Background()
	service := NewAuthService(memory.NewUserStore())

	const n = 4
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- service.RegisterUser(ctx, &models.User{Username: "dup"}, fmt.Sprintf("pw%d", i))
		}(i)
	}
	wg.Wait()
	close(errs)

	var ok int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, ErrUsernameTaken)
	}
	assert.Equal(t, 1, ok)
}

func TestVerify(t *testing.T) {
	repo := &mockUserRepo{users: make(map[string]*models.User)}
	service := NewAuthService(repo)

	hashed, err := utils.HashPassword("secret")
	require.NoError(t, err)
	repo.users["testuser"] = &models.User{ID: 1, Username: "testuser", PasswordHash: hashed, Role: models.RoleUser}

	assert.True(t, service.Verify(context.Background(), "testuser", "secret"))
	assert.False(t, service.Verify(context.Background(), "testuser", "wrong"))
	assert.False(t, service.Verify(context.Background(), "unknown", "secret"))

	u, err := service.Authenticate(context.Background(), "testuser", "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	_, err = service.Authenticate(context.Background(), "testuser", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHasAuth(t *testing.T) {
	repo := &mockUserRepo{users: map[string]*models.User{
		"admin": {Username: "admin", Role: models.RoleAdmin},
		"user":  {Username: "user", Role: models.RoleUser},
	}}
	service := NewAuthService(repo)
	ctx := context.Background()

	assert.True(t, service.HasAuth(ctx, "admin", models.CapArticleManager))
	assert.True(t, service.HasAuth(ctx, "admin", models.CapPublicDiscuss))
	assert.False(t, service.HasAuth(ctx, "user", models.CapArticleManager))
	assert.True(t, service.HasAuth(ctx, "user", models.CapPublicDiscuss))
	assert.False(t, service.HasAuth(ctx, "unknown", models.CapPublicDiscuss))
}

func TestArticleService_WithAuthService(t *testing.T) {
	ctx := context.Background()
	repo := &mockUserRepo{users: make(map[string]*models.User)}
	auth := NewAuthService(repo)
	require.NoError(t, auth.RegisterUser(ctx, &models.User{Username: "alice", Role: models.RoleAdmin}, "pw"))
	require.NoError(t, auth.RegisterUser(ctx, &models.User{Username: "bob"}, "pw"))

	store := memory.NewArticleStore()
	svc := NewArticleService(store, store, auth)

	a, err := svc.Publish(ctx, "T", "C", alice)
	require.NoError(t, err)

	_, err = svc.Publish(ctx, "T", "C", bob)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.ReplyArticle(ctx, a.ID(), 0, "hi", bob)
	require.NoError(t, err)
}
