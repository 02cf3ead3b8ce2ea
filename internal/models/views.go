package models

import "time"

// ArticleDTO - полное представление статьи.
type ArticleDTO struct {
	ID              int64     `json:"id"`
	Author          string    `json:"author"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	DiscussOpen     bool      `json:"discussOpen"`
	NumberOfDiscuss int       `json:"numberOfDiscuss"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ArticleSummaryDTO - строка списка статей.
type ArticleSummaryDTO struct {
	ID              int64     `json:"id"`
	Author          string    `json:"author"`
	Title           string    `json:"title"`
	NumberOfDiscuss int       `json:"numberOfDiscuss"`
	CreatedAt       time.Time `json:"createdAt"`
}

// DiscussDTO - ответ в ветке вместе с заголовком статьи.
type DiscussDTO struct {
	Discuss
	ArticleTitle string `json:"articleTitle"`
}

func NewArticleDTO(a *Article) ArticleDTO {
	return ArticleDTO{
		ID:              a.ID(),
		Author:          a.Author(),
		Title:           a.Title,
		Content:         a.Content,
		DiscussOpen:     a.CanReply(),
		NumberOfDiscuss: a.NumberOfDiscuss(),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func NewArticleSummaryDTO(a *Article) ArticleSummaryDTO {
	return ArticleSummaryDTO{
		ID:              a.ID(),
		Author:          a.Author(),
		Title:           a.Title,
		NumberOfDiscuss: a.NumberOfDiscuss(),
		CreatedAt:       a.CreatedAt,
	}
}

func NewDiscussDTO(a *Article, d Discuss) DiscussDTO {
	return DiscussDTO{Discuss: d, ArticleTitle: a.Title}
}

// NewDiscussDTOs проецирует полуинтервал [begin, end) ветки статьи.
func NewDiscussDTOs(a *Article, begin, end int) []DiscussDTO {
	list := a.Discusses(begin, end)
	out := make([]DiscussDTO, 0, len(list))
	for _, d := range list {
		out = append(out, NewDiscussDTO(a, d))
	}
	return out
}

// swagger:model ArticleRequest
type ArticleRequest struct {
	Title   string `json:"title"   example:"Unit of Work в Go"`
	Content string `json:"content" example:"<p>Контент</p>"`
}

// swagger:model ReplyRequest
type ReplyRequest struct {
	DiscussID int64  `json:"discussId" example:"0"`
	Content   string `json:"content"   example:"Спасибо за статью"`
}
