package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"xblog/internal/logger"
	"xblog/internal/models"
	"xblog/internal/services"
	"xblog/internal/utils/helpers"

	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Username string `json:"username" example:"bob"`
	Password string `json:"password" example:"secret"`
}

type profileResponse struct {
	ID           int64               `json:"id"`
	Username     string              `json:"username"`
	Role         string              `json:"role"`
	Capabilities []models.Capability `json:"capabilities"`
}

// Register godoc
// @Summary Регистрация нового пользователя
// @Description Роль всегда user (PUBLIC_DISCUSS). Авторы и админы заводятся отдельно.
// @Tags auth
// @Accept json
// @Produce json
// @Param input body registerRequest true "Данные регистрации"
// @Success 201 {object} profileResponse
// @Failure 400 {object} helpers.Response
// @Failure 409 {object} helpers.Response
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка декодирования JSON в Register", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	logger.WithCtx(r.Context()).Info("Регистрация пользователя", zap.String("username", req.Username))

	user := &models.User{Username: req.Username, Role: models.RoleUser}
	err := h.authService.RegisterUser(r.Context(), user, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidUser):
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrUsernameTaken):
		helpers.Error(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, r, err)
		return
	}

	helpers.JSON(w, http.StatusCreated, newProfile(user))
}

// Me godoc
// @Summary Текущий пользователь
// @Description Проверяет Basic-auth и возвращает роль и права.
// @Tags auth
// @Produce json
// @Success 200 {object} profileResponse
// @Failure 401 {object} helpers.Response
// @Security BasicAuth
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cred, ok := credentials(w, r)
	if !ok {
		return
	}
	user, err := h.authService.Authenticate(r.Context(), cred.Username, cred.Password)
	if err != nil {
		w.Header().Set("WWW-Authenticate", `Basic realm="xblog"`)
		helpers.Error(w, http.StatusUnauthorized, err.Error())
		return
	}
	helpers.JSON(w, http.StatusOK, newProfile(user))
}

func newProfile(u *models.User) profileResponse {
	caps := []models.Capability{}
	for _, c := range []models.Capability{models.CapArticleManager, models.CapPublicDiscuss} {
		if u.HasCapability(c) {
			caps = append(caps, c)
		}
	}
	return profileResponse{ID: u.ID, Username: u.Username, Role: u.Role, Capabilities: caps}
}
