package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"xblog/internal/logger"
	"xblog/internal/models"
	"xblog/internal/services"
	"xblog/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type ArticleHandler struct {
	svc services.ArticleService
}

func NewArticleHandler(svc services.ArticleService) *ArticleHandler {
	return &ArticleHandler{svc: svc}
}

// Publish
// @Summary      Опубликовать статью
// @Description  Создаёт статью от имени пользователя из Basic-auth. Требует ARTICLE_MANAGER.
// @Tags         articles
// @Accept       json
// @Produce      json
// @Param        body  body      models.ArticleRequest  true  "Заголовок и текст"
// @Success      201   {object}  models.ArticleDTO
// @Failure      400   {object}  helpers.Response
// @Failure      403   {object}  helpers.Response
// @Security     BasicAuth
// @Router       /api/articles [post]
func (h *ArticleHandler) Publish(w http.ResponseWriter, r *http.Request) {
	cred, ok := credentials(w, r)
	if !ok {
		return
	}
	var req models.ArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithCtx(r.Context()).Warn("ошибка декодирования JSON при публикации статьи", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	a, err := h.svc.Publish(r.Context(), req.Title, req.Content, cred)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, models.NewArticleDTO(a))
}

// Edit
// @Summary      Редактировать статью
// @Tags         articles
// @Accept       json
// @Produce      json
// @Param        id    path      int                    true  "ID статьи"
// @Param        body  body      models.ArticleRequest  true  "Новые заголовок и текст"
// @Success      200   {object}  models.ArticleDTO
// @Failure      403   {object}  helpers.Response
// @Failure      404   {object}  helpers.Response
// @Security     BasicAuth
// @Router       /api/articles/{id} [patch]
func (h *ArticleHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}
	cred, ok := credentials(w, r)
	if !ok {
		return
	}
	var req models.ArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	a, err := h.svc.Edit(r.Context(), id, req.Title, req.Content, cred)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, models.NewArticleDTO(a))
}

// GetArticle
// @Summary      Статья по ID
// @Tags         articles
// @Produce      json
// @Param        id   path      int  true  "ID статьи"
// @Success      200  {object}  models.ArticleDTO
// @Failure      404  {object}  helpers.Response
// @Router       /api/articles/{id} [get]
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}
	dto, err := h.svc.GetArticle(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, dto)
}

// ListArticles
// @Summary      Список статей
// @Tags         articles
// @Produce      json
// @Success      200  {array}  models.ArticleSummaryDTO
// @Router       /api/articles [get]
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListArticleSummaries(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, list)
}

// Draft
// @Summary      Снять статью (draft)
// @Tags         articles
// @Param        id  path  int  true  "ID статьи"
// @Success      204
// @Failure      403  {object}  helpers.Response
// @Failure      404  {object}  helpers.Response
// @Security     BasicAuth
// @Router       /api/articles/{id} [delete]
func (h *ArticleHandler) Draft(w http.ResponseWriter, r *http.Request) {
	h.gate(w, r, h.svc.Draft)
}

// CloseDiscuss
// @Summary      Закрыть обсуждение
// @Tags         discuss
// @Param        id  path  int  true  "ID статьи"
// @Success      204
// @Failure      403  {object}  helpers.Response
// @Failure      404  {object}  helpers.Response
// @Security     BasicAuth
// @Router       /api/articles/{id}/discuss/close [post]
func (h *ArticleHandler) CloseDiscuss(w http.ResponseWriter, r *http.Request) {
	h.gate(w, r, h.svc.CloseDiscuss)
}

// OpenDiscuss
// @Summary      Открыть обсуждение
// @Tags         discuss
// @Param        id  path  int  true  "ID статьи"
// @Success      204
// @Failure      403  {object}  helpers.Response
// @Failure      404  {object}  helpers.Response
// @Security     BasicAuth
// @Router       /api/articles/{id}/discuss/open [post]
func (h *ArticleHandler) OpenDiscuss(w http.ResponseWriter, r *http.Request) {
	h.gate(w, r, h.svc.OpenDiscuss)
}

// Reply
// @Summary      Ответить в обсуждении
// @Description  Требует PUBLIC_DISCUSS. discussId передаётся в ответ как есть.
// @Tags         discuss
// @Accept       json
// @Produce      json
// @Param        id    path      int                  true  "ID статьи"
// @Param        body  body      models.ReplyRequest  true  "Ответ"
// @Success      201   {object}  models.DiscussDTO
// @Failure      403   {object}  helpers.Response
// @Failure      404   {object}  helpers.Response
// @Failure      409   {object}  helpers.Response
// @Security     BasicAuth
// @Router       /api/articles/{id}/discuss [post]
func (h *ArticleHandler) Reply(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}
	cred, ok := credentials(w, r)
	if !ok {
		return
	}
	var req models.ReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	dto, err := h.svc.ReplyArticle(r.Context(), id, req.DiscussID, req.Content, cred)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, dto)
}

// ListDiscuss
// @Summary      Ответы статьи
// @Description  ?page=N - страница по 10 (с 1); ?begin=B&end=E - полуинтервал; без параметров - вся ветка.
// @Tags         discuss
// @Produce      json
// @Param        id     path      int  true   "ID статьи"
// @Param        page   query     int  false  "Номер страницы"
// @Param        begin  query     int  false  "Начало интервала"
// @Param        end    query     int  false  "Конец интервала (не включая)"
// @Success      200    {array}   models.DiscussDTO
// @Failure      400    {object}  helpers.Response
// @Failure      404    {object}  helpers.Response
// @Router       /api/articles/{id}/discuss [get]
func (h *ArticleHandler) ListDiscuss(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}
	q, err := discussQuery(r)
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := h.svc.ListDiscuss(r.Context(), id, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, list)
}

// DiscussStats
// @Summary      Число ответов и страниц
// @Tags         discuss
// @Produce      json
// @Param        id   path      int  true  "ID статьи"
// @Success      200  {object}  map[string]int
// @Failure      404  {object}  helpers.Response
// @Router       /api/articles/{id}/discuss/pages [get]
func (h *ArticleHandler) DiscussStats(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}
	total, err := h.svc.NumberOfDiscuss(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pages, err := h.svc.TotalPagesOfDiscuss(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]int{"numberOfDiscuss": total, "totalPages": pages})
}

// CanReply
// @Summary      Можно ли ответить
// @Description  Любой отказ (нет прав, нет статьи) даёт false, а не ошибку.
// @Tags         discuss
// @Produce      json
// @Param        id   path      int  true  "ID статьи"
// @Success      200  {object}  map[string]bool
// @Security     BasicAuth
// @Router       /api/articles/{id}/discuss/can-reply [get]
func (h *ArticleHandler) CanReply(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}
	username, password, _ := r.BasicAuth()
	can := h.svc.CanReply(r.Context(), id, services.Credentials{Username: username, Password: password})
	helpers.JSON(w, http.StatusOK, map[string]bool{"canReply": can})
}

// gate - общий обработчик для Draft/CloseDiscuss/OpenDiscuss.
func (h *ArticleHandler) gate(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, id int64, cred services.Credentials) error,
) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}
	cred, ok := credentials(w, r)
	if !ok {
		return
	}
	if err := fn(r.Context(), id, cred); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- helpers ---

func articleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// credentials читает Basic-auth; без него отвечает 401.
func credentials(w http.ResponseWriter, r *http.Request) (services.Credentials, bool) {
	username, password, ok := r.BasicAuth()
	if !ok {
		w.Header().Set("WWW-Authenticate", `Basic realm="xblog"`)
		helpers.Error(w, http.StatusUnauthorized, "требуется авторизация")
		return services.Credentials{}, false
	}
	return services.Credentials{Username: username, Password: password}, true
}

func discussQuery(r *http.Request) (services.DiscussQuery, error) {
	v := r.URL.Query()
	if p := v.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return services.DiscussQuery{}, errors.New("invalid page")
		}
		return services.DiscussPage(n), nil
	}
	if v.Has("begin") || v.Has("end") {
		begin, err1 := strconv.Atoi(v.Get("begin"))
		end, err2 := strconv.Atoi(v.Get("end"))
		if err1 != nil || err2 != nil {
			return services.DiscussQuery{}, errors.New("invalid begin/end")
		}
		return services.DiscussRange(begin, end), nil
	}
	return services.AllDiscuss(), nil
}
