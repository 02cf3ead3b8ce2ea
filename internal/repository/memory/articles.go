// Package memory - хранилище в памяти процесса с теми же контрактами, что и postgres.
package memory

import (
	"context"
	"maps"
	"sync"

	"xblog/internal/models"
	"xblog/internal/repository"
)

type scopeKey struct{}

// scope копит изменения до commit.
type scope struct {
	ops []op
}

type op func(m map[int64]*models.Article) error

// ArticleStore реализует repository.ArticleRepo и repository.UnitOfWork.
// Наружу отдаются только копии агрегатов, поэтому изменения
// становятся видимы лишь после Save и commit.
type ArticleStore struct {
	mu       sync.RWMutex
	articles map[int64]*models.Article
	nextID   int64
}

func NewArticleStore() *ArticleStore {
	return &ArticleStore{articles: make(map[int64]*models.Article)}
}

var (
	_ repository.ArticleRepo = (*ArticleStore)(nil)
	_ repository.UnitOfWork  = (*ArticleStore)(nil)
)

func (s *ArticleStore) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(scopeKey{}).(*scope); ok {
		return repository.ErrNestedScope
	}
	sc := &scope{}
	if err := fn(context.WithValue(ctx, scopeKey{}, sc)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(sc.ops)
}

// commit применяет операции к копии карты и подменяет её, только если все прошли.
func (s *ArticleStore) commit(ops []op) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.articles)
	for _, o := range ops {
		if err := o(next); err != nil {
			return err
		}
	}
	s.articles = next
	return nil
}

// apply ставит операцию в текущую транзакцию или выполняет сразу, если её нет.
func (s *ArticleStore) apply(ctx context.Context, o op) error {
	if sc, ok := ctx.Value(scopeKey{}).(*scope); ok {
		sc.ops = append(sc.ops, o)
		return nil
	}
	return s.commit([]op{o})
}

func (s *ArticleStore) Add(ctx context.Context, a *models.Article) error {
	if a.ID() != 0 {
		return repository.ErrAlreadyPersisted
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.mu.Unlock()

	a.AssignID(id)
	snapshot := a.Clone()
	return s.apply(ctx, func(m map[int64]*models.Article) error {
		m[id] = snapshot
		return nil
	})
}

// Get читает только зафиксированное состояние.
func (s *ArticleStore) Get(_ context.Context, id int64) (*models.Article, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.articles[id]
	if !ok {
		return nil, false, nil
	}
	return a.Clone(), true, nil
}

func (s *ArticleStore) GetAll(_ context.Context) ([]*models.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Article, 0, len(s.articles))
	for _, a := range s.articles {
		out = append(out, a.Clone())
	}
	return out, nil
}

func (s *ArticleStore) Save(ctx context.Context, a *models.Article) error {
	if a.ID() == 0 {
		return repository.ErrNotPersisted
	}
	id, snapshot := a.ID(), a.Clone()
	return s.apply(ctx, func(m map[int64]*models.Article) error {
		if _, ok := m[id]; !ok {
			return repository.ErrNotPersisted
		}
		m[id] = snapshot
		return nil
	})
}

func (s *ArticleStore) Delete(ctx context.Context, a *models.Article) error {
	id := a.ID()
	return s.apply(ctx, func(m map[int64]*models.Article) error {
		if _, ok := m[id]; !ok {
			return repository.ErrNotPersisted
		}
		delete(m, id)
		return nil
	})
}
