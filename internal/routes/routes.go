package routes

import (
	"net/http"

	"xblog/internal/handlers"
	"xblog/internal/middleware"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
)

func InitRoutes(router *mux.Router, authH *handlers.AuthHandler, articleH *handlers.ArticleHandler) {
	router.Use(middleware.RequestID, middleware.Recoverer, middleware.Logging)

	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	api := router.PathPrefix("/api").Subrouter()

	// --- Аккаунт ---
	api.HandleFunc("/auth/register", authH.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", authH.Me).Methods(http.MethodGet)

	// --- Чтение, без авторизации ---
	api.HandleFunc("/articles", articleH.ListArticles).Methods(http.MethodGet)
	api.HandleFunc("/articles/{id:[0-9]+}", articleH.GetArticle).Methods(http.MethodGet)
	api.HandleFunc("/articles/{id:[0-9]+}/discuss", articleH.ListDiscuss).Methods(http.MethodGet)
	api.HandleFunc("/articles/{id:[0-9]+}/discuss/pages", articleH.DiscussStats).Methods(http.MethodGet)
	api.HandleFunc("/articles/{id:[0-9]+}/discuss/can-reply", articleH.CanReply).Methods(http.MethodGet)

	// --- Мутации, Basic-auth проверяется в сервисе ---
	api.HandleFunc("/articles", articleH.Publish).Methods(http.MethodPost)
	api.HandleFunc("/articles/{id:[0-9]+}", articleH.Edit).Methods(http.MethodPatch)
	api.HandleFunc("/articles/{id:[0-9]+}", articleH.Draft).Methods(http.MethodDelete)
	api.HandleFunc("/articles/{id:[0-9]+}/discuss", articleH.Reply).Methods(http.MethodPost)
	api.HandleFunc("/articles/{id:[0-9]+}/discuss/close", articleH.CloseDiscuss).Methods(http.MethodPost)
	api.HandleFunc("/articles/{id:[0-9]+}/discuss/open", articleH.OpenDiscuss).Methods(http.MethodPost)
}
