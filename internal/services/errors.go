package services

import (
	"errors"
	"fmt"

	"xblog/internal/models"
)

var (
	// ErrUnauthorized - общий признак отказа в доступе; *AuthError сводится к нему через errors.Is.
	ErrUnauthorized = errors.New("доступ запрещён")
	// ErrNotFound - статьи нет.
	ErrNotFound = errors.New("статья не найдена")
	// ErrInvalidRequest - параметр нарушает предусловие (например, номер страницы < 1).
	ErrInvalidRequest = errors.New("некорректный запрос")
	// ErrReplyRejected - обсуждение закрыто.
	ErrReplyRejected = models.ErrReplyRejected
)

// AuthError - неверные учётные данные или нет нужного права.
type AuthError struct {
	Capability models.Capability
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("доступ запрещён: требуется %s", e.Capability)
}

func (e *AuthError) Is(target error) bool { return target == ErrUnauthorized }
