package models

import (
	"errors"
	"time"
)

// ErrReplyRejected - обсуждение статьи закрыто для новых ответов.
var ErrReplyRejected = errors.New("обсуждение закрыто")

// Article - агрегат статьи: содержимое, ветка обсуждения и флаг открытости.
// Идентификатор присваивает репозиторий при Add (0 - статья ещё не сохранена).
type Article struct {
	id          int64
	author      string
	Title       string
	Content     string
	discussOpen bool
	discusses   []Discuss
	lastDiscuss int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Discuss - запись в ветке обсуждения статьи.
// ReplyTo хранит переданный клиентом discussId как есть.
type Discuss struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"articleId"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	ReplyTo   int64     `json:"replyTo"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewArticle создаёт новую статью с пустой веткой и открытым обсуждением.
func NewArticle(author, title, content string) *Article {
	now := time.Now().UTC()
	return &Article{
		author:      author,
		Title:       title,
		Content:     content,
		discussOpen: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// RestoreArticle собирает агрегат из сохранённого состояния (для репозиториев).
// Записи ветки должны идти в порядке добавления.
func RestoreArticle(id int64, author, title, content string, discussOpen bool, discusses []Discuss, createdAt, updatedAt time.Time) *Article {
	a := &Article{
		id:          id,
		author:      author,
		Title:       title,
		Content:     content,
		discussOpen: discussOpen,
		discusses:   append([]Discuss(nil), discusses...),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
	for _, d := range a.discusses {
		if d.ID > a.lastDiscuss {
			a.lastDiscuss = d.ID
		}
	}
	return a
}

func (a *Article) ID() int64      { return a.id }
func (a *Article) Author() string { return a.author }

// AssignID вызывается репозиторием при первом сохранении.
func (a *Article) AssignID(id int64) {
	a.id = id
	for i := range a.discusses {
		a.discusses[i].ArticleID = id
	}
}

// Edit перезаписывает заголовок и текст. Автор и идентификатор не меняются.
func (a *Article) Edit(title, content string) {
	a.Title = title
	a.Content = content
	a.UpdatedAt = time.Now().UTC()
}

// ReplyDiscuss добавляет ответ в конец ветки.
// Если обсуждение закрыто - ErrReplyRejected, ветка не меняется.
func (a *Article) ReplyDiscuss(author string, discussID int64, content string) (Discuss, error) {
	if !a.discussOpen {
		return Discuss{}, ErrReplyRejected
	}
	a.lastDiscuss++
	d := Discuss{
		ID:        a.lastDiscuss,
		ArticleID: a.id,
		Author:    author,
		Content:   content,
		ReplyTo:   discussID,
		CreatedAt: time.Now().UTC(),
	}
	a.discusses = append(a.discusses, d)
	return d, nil
}

func (a *Article) NumberOfDiscuss() int { return len(a.discusses) }

func (a *Article) CanReply() bool { return a.discussOpen }

func (a *Article) CloseDiscuss() { a.discussOpen = false }

func (a *Article) OpenDiscuss() { a.discussOpen = true }

// Discusses возвращает копию полуинтервала [begin, end) ветки.
// Границы за пределами ветки обрезаются, пустой интервал даёт пустой срез.
func (a *Article) Discusses(begin, end int) []Discuss {
	if begin < 0 {
		begin = 0
	}
	if end > len(a.discusses) {
		end = len(a.discusses)
	}
	if begin >= end {
		return []Discuss{}
	}
	out := make([]Discuss, end-begin)
	copy(out, a.discusses[begin:end])
	return out
}

// Clone - глубокая копия агрегата.
func (a *Article) Clone() *Article {
	c := *a
	c.discusses = append([]Discuss(nil), a.discusses...)
	return &c
}
