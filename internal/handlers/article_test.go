package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"xblog/internal/handlers"
	"xblog/internal/models"
	"xblog/internal/repository/memory"
	"xblog/internal/routes"
	"xblog/internal/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func newRouter(t *testing.T) *mux.Router {
	t.Helper()
	ctx := context.Background()

	users := memory.NewUserStore()
	auth := services.NewAuthService(users)
	require.NoError(t, auth.RegisterUser(ctx, &models.User{Username: "alice", Role: models.RoleAdmin}, "pw"))
	require.NoError(t, auth.RegisterUser(ctx, &models.User{Username: "bob"}, "pw"))

	store := memory.NewArticleStore()
	svc := services.NewArticleService(store, store, auth)

	router := mux.NewRouter()
	routes.InitRoutes(router, handlers.NewAuthHandler(auth), handlers.NewArticleHandler(svc))
	return router
}

func do(t *testing.T, router http.Handler, method, path, user, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if user != "" {
		req.SetBasicAuth(user, "pw")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestArticleFlow(t *testing.T) {
	router := newRouter(t)

	rec, env := do(t, router, http.MethodPost, "/api/articles", "alice", `{"title":"T","content":"C"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	var created models.ArticleDTO
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "T", created.Title)
	assert.True(t, created.DiscussOpen)

	rec, env = do(t, router, http.MethodPost, "/api/articles/1/discuss", "bob", `{"discussId":0,"content":"hi"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var reply models.DiscussDTO
	require.NoError(t, json.Unmarshal(env.Data, &reply))
	assert.Equal(t, "bob", reply.Author)

	rec, env = do(t, router, http.MethodGet, "/api/articles/1/discuss?page=1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page []models.DiscussDTO
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page, 1)

	rec, env = do(t, router, http.MethodGet, "/api/articles/1/discuss/pages", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]int
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, map[string]int{"numberOfDiscuss": 1, "totalPages": 1}, stats)

	rec, _ = do(t, router, http.MethodPost, "/api/articles/1/discuss/close", "alice", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/api/articles/1/discuss", "bob", `{"content":"late"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = do(t, router, http.MethodGet, "/api/articles/1/discuss/can-reply", "bob", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"canReply":false}`, string(env.Data))

	rec, env = do(t, router, http.MethodGet, "/api/articles", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.ArticleSummaryDTO
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].NumberOfDiscuss)

	rec, _ = do(t, router, http.MethodDelete, "/api/articles/1", "alice", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/api/articles/1", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorStatuses(t *testing.T) {
	router := newRouter(t)
	rec, _ := do(t, router, http.MethodPost, "/api/articles", "alice", `{"title":"T","content":"C"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/api/articles", "", `{"title":"T","content":"C"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	rec, env := do(t, router, http.MethodPatch, "/api/articles/1", "bob", `{"title":"x","content":"x"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, env.Error, string(models.CapArticleManager))

	rec, _ = do(t, router, http.MethodPatch, "/api/articles/42", "alice", `{"title":"x","content":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/api/articles/1/discuss?page=0", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/api/articles/1/discuss?begin=a&end=2", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/api/articles", "alice", `{bad json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListDiscussRange(t *testing.T) {
	router := newRouter(t)
	rec, _ := do(t, router, http.MethodPost, "/api/articles", "alice", `{"title":"T","content":"C"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	for i := 0; i < 3; i++ {
		rec, _ = do(t, router, http.MethodPost, "/api/articles/1/discuss", "alice", `{"content":"x"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, env := do(t, router, http.MethodGet, "/api/articles/1/discuss?begin=1&end=10", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.DiscussDTO
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].ID)

	rec, env = do(t, router, http.MethodGet, "/api/articles/1/discuss", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 3)
}

func TestAuthRegisterAndMe(t *testing.T) {
	router := newRouter(t)

	rec, env := do(t, router, http.MethodPost, "/api/auth/register", "", `{"username":"carol","password":"pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, string(env.Data), `"role":"user"`)

	rec, _ = do(t, router, http.MethodPost, "/api/auth/register", "", `{"username":"carol","password":"pw"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/api/auth/register", "", `{"username":"","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, router, http.MethodGet, "/api/auth/me", "carol", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), string(models.CapPublicDiscuss))
	assert.NotContains(t, string(env.Data), string(models.CapArticleManager))

	rec, _ = do(t, router, http.MethodGet, "/api/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// зарегистрированный пользователь может отвечать, но не публиковать
	rec, _ = do(t, router, http.MethodPost, "/api/articles", "carol", `{"title":"T","content":"C"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
