package memory

import (
	"context"
	"sync"
	"time"

	"xblog/internal/models"
	"xblog/internal/repository"
)

type UserStore struct {
	mu     sync.RWMutex
	users  map[string]models.User
	nextID int64
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]models.User)}
}

func (s *UserStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Username]; ok {
		return repository.ErrUsernameTaken
	}
	s.nextID++
	now := time.Now().UTC()
	user.ID = s.nextID
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.Username] = *user
	return nil
}

func (s *UserStore) IsUsernameTaken(_ context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[username]
	return ok, nil
}

func (s *UserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}
