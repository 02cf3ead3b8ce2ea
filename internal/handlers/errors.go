package handlers

import (
	"errors"
	"net/http"

	"xblog/internal/logger"
	"xblog/internal/services"
	"xblog/internal/utils/helpers"

	"go.uber.org/zap"
)

// writeError переводит ошибки сервиса в HTTP-статусы.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var authErr *services.AuthError
	switch {
	case errors.As(err, &authErr):
		helpers.Error(w, http.StatusForbidden, authErr.Error())
	case errors.Is(err, services.ErrNotFound):
		helpers.Error(w, http.StatusNotFound, services.ErrNotFound.Error())
	case errors.Is(err, services.ErrInvalidRequest):
		helpers.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrReplyRejected):
		helpers.Error(w, http.StatusConflict, services.ErrReplyRejected.Error())
	default:
		logger.WithCtx(r.Context()).Error("внутренняя ошибка", zap.String("path", r.URL.Path), zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
