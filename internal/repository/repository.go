package repository

import (
	"context"
	"errors"

	"xblog/internal/models"
)

var (
	// ErrAlreadyPersisted - Add для статьи, у которой уже есть идентификатор.
	ErrAlreadyPersisted = errors.New("статья уже сохранена")
	// ErrNotPersisted - Save/Delete для статьи, которой нет в хранилище.
	ErrNotPersisted = errors.New("статья не сохранена")
	// ErrNestedScope - попытка открыть транзакцию внутри уже открытой.
	ErrNestedScope = errors.New("транзакция уже открыта")
)

// ArticleRepo хранит агрегаты статей вместе с их ветками обсуждения.
// Мутации внутри UnitOfWork.Do попадают в транзакцию из контекста.
type ArticleRepo interface {
	Add(ctx context.Context, a *models.Article) error
	// Get возвращает (статья, true) или (nil, false), если статьи нет.
	// err - только сбой хранилища.
	Get(ctx context.Context, id int64) (*models.Article, bool, error)
	GetAll(ctx context.Context) ([]*models.Article, error)
	Save(ctx context.Context, a *models.Article) error
	Delete(ctx context.Context, a *models.Article) error
}

// UnitOfWork открывает транзакцию, передаёт её через контекст в fn
// и фиксирует изменения, только если fn вернула nil.
// При любой ошибке (в том числе при commit) ни одно изменение не видно.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
