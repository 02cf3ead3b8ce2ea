package services

import "fmt"

// DiscussPageSize - число ответов на странице обсуждения.
const DiscussPageSize = 10

type discussMode int

const (
	discussAll discussMode = iota
	discussRange
	discussPage
)

// DiscussQuery выбирает часть ветки: целиком, полуинтервал или страницу.
// Нулевое значение равно AllDiscuss().
type DiscussQuery struct {
	mode       discussMode
	begin, end int
	page       int
}

func AllDiscuss() DiscussQuery { return DiscussQuery{mode: discussAll} }

// DiscussRange - ответы с индексами [begin, end). Выход за границы ветки не ошибка.
func DiscussRange(begin, end int) DiscussQuery {
	return DiscussQuery{mode: discussRange, begin: begin, end: end}
}

// DiscussPage - страница с номером n, нумерация с 1.
func DiscussPage(n int) DiscussQuery { return DiscussQuery{mode: discussPage, page: n} }

func (q DiscussQuery) validate() error {
	if q.mode == discussPage && q.page < 1 {
		return fmt.Errorf("%w: нет страницы %d", ErrInvalidRequest, q.page)
	}
	return nil
}

// bounds переводит запрос в полуинтервал над веткой длины total.
func (q DiscussQuery) bounds(total int) (int, int) {
	switch q.mode {
	case discussRange:
		return q.begin, q.end
	case discussPage:
		if q.page > TotalPages(total) {
			return total, total
		}
		return (q.page - 1) * DiscussPageSize, q.page * DiscussPageSize
	default:
		return 0, total
	}
}

// TotalPages - ceil(n / DiscussPageSize).
func TotalPages(n int) int {
	return (n + DiscussPageSize - 1) / DiscussPageSize
}
