package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"xblog/internal/models"
)

type articleRepo struct{ db *pgxpool.Pool }

func NewArticleRepo(db *pgxpool.Pool) ArticleRepo { return &articleRepo{db: db} }

type articleRow struct {
	id          int64
	author      string
	title       string
	content     string
	discussOpen bool
	createdAt   time.Time
	updatedAt   time.Time
}

func (row articleRow) restore(discusses []models.Discuss) *models.Article {
	return models.RestoreArticle(row.id, row.author, row.title, row.content, row.discussOpen,
		discusses, row.createdAt, row.updatedAt)
}

func (r *articleRepo) Add(ctx context.Context, a *models.Article) error {
	if a.ID() != 0 {
		return ErrAlreadyPersisted
	}
	q := conn(ctx, r.db)

	const ins = `
		INSERT INTO articles (author, title, content, discuss_open, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id int64
	if err := q.QueryRow(ctx, ins,
		a.Author(), a.Title, a.Content, a.CanReply(), a.CreatedAt, a.UpdatedAt,
	).Scan(&id); err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	a.AssignID(id)

	return insertDiscusses(ctx, q, a.Discusses(0, a.NumberOfDiscuss()))
}

func (r *articleRepo) Get(ctx context.Context, id int64) (*models.Article, bool, error) {
	q := conn(ctx, r.db)

	const sel = `
		SELECT id, author, title, content, discuss_open, created_at, updated_at
		FROM articles WHERE id = $1
	`
	var row articleRow
	err := q.QueryRow(ctx, sel, id).Scan(
		&row.id, &row.author, &row.title, &row.content, &row.discussOpen, &row.createdAt, &row.updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	const selDiscuss = `
		SELECT article_id, id, author, content, reply_to, created_at
		FROM discusses WHERE article_id = $1
		ORDER BY id
	`
	rows, err := q.Query(ctx, selDiscuss, id)
	if err != nil {
		return nil, false, err
	}
	discusses, err := pgx.CollectRows(rows, scanDiscuss)
	if err != nil {
		return nil, false, err
	}
	return row.restore(discusses), true, nil
}

func (r *articleRepo) GetAll(ctx context.Context) ([]*models.Article, error) {
	q := conn(ctx, r.db)

	const sel = `
		SELECT id, author, title, content, discuss_open, created_at, updated_at
		FROM articles
		ORDER BY created_at DESC
	`
	rows, err := q.Query(ctx, sel)
	if err != nil {
		return nil, err
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (articleRow, error) {
		var a articleRow
		err := row.Scan(&a.id, &a.author, &a.title, &a.content, &a.discussOpen, &a.createdAt, &a.updatedAt)
		return a, err
	})
	if err != nil {
		return nil, err
	}

	const selDiscuss = `
		SELECT article_id, id, author, content, reply_to, created_at
		FROM discusses
		ORDER BY article_id, id
	`
	rows, err = q.Query(ctx, selDiscuss)
	if err != nil {
		return nil, err
	}
	all, err := pgx.CollectRows(rows, scanDiscuss)
	if err != nil {
		return nil, err
	}
	byArticle := make(map[int64][]models.Discuss, len(list))
	for _, d := range all {
		byArticle[d.ArticleID] = append(byArticle[d.ArticleID], d)
	}

	out := make([]*models.Article, 0, len(list))
	for _, row := range list {
		out = append(out, row.restore(byArticle[row.id]))
	}
	return out, nil
}

// Save обновляет поля статьи и дописывает ответы, которых ещё нет в таблице.
func (r *articleRepo) Save(ctx context.Context, a *models.Article) error {
	if a.ID() == 0 {
		return ErrNotPersisted
	}
	q := conn(ctx, r.db)

	const upd = `
		UPDATE articles
		SET title = $1, content = $2, discuss_open = $3, updated_at = $4
		WHERE id = $5
	`
	tag, err := q.Exec(ctx, upd, a.Title, a.Content, a.CanReply(), a.UpdatedAt, a.ID())
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotPersisted
	}

	var stored int64
	const last = `SELECT COALESCE(MAX(id), 0) FROM discusses WHERE article_id = $1`
	if err := q.QueryRow(ctx, last, a.ID()).Scan(&stored); err != nil {
		return err
	}

	var fresh []models.Discuss
	for _, d := range a.Discusses(0, a.NumberOfDiscuss()) {
		if d.ID > stored {
			fresh = append(fresh, d)
		}
	}
	return insertDiscusses(ctx, q, fresh)
}

// Delete удаляет статью; ответы уходят каскадом (ON DELETE CASCADE).
func (r *articleRepo) Delete(ctx context.Context, a *models.Article) error {
	tag, err := conn(ctx, r.db).Exec(ctx, "DELETE FROM articles WHERE id = $1", a.ID())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotPersisted
	}
	return nil
}

func insertDiscusses(ctx context.Context, q querier, list []models.Discuss) error {
	if len(list) == 0 {
		return nil
	}
	const ins = `
		INSERT INTO discusses (article_id, id, author, content, reply_to, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	batch := &pgx.Batch{}
	for _, d := range list {
		batch.Queue(ins, d.ArticleID, d.ID, d.Author, d.Content, d.ReplyTo, d.CreatedAt)
	}
	br := q.SendBatch(ctx, batch)
	for range list {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert discuss: %w", err)
		}
	}
	return br.Close()
}

func scanDiscuss(row pgx.CollectableRow) (models.Discuss, error) {
	var d models.Discuss
	err := row.Scan(&d.ArticleID, &d.ID, &d.Author, &d.Content, &d.ReplyTo, &d.CreatedAt)
	return d, err
}
