package app

import (
	"context"
	"fmt"

	"xblog/internal/config"
	"xblog/internal/db"
	"xblog/internal/handlers"
	"xblog/internal/logger"
	"xblog/internal/models"
	"xblog/internal/repository"
	"xblog/internal/repository/memory"
	"xblog/internal/routes"
	"xblog/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// InitApp собирает хранилище, сервисы и маршруты.
// Возвращаемая функция закрывает соединения.
func InitApp(cfg *config.Config) (*mux.Router, func(), error) {
	var (
		articleRepo repository.ArticleRepo
		uow         repository.UnitOfWork
		userRepo    services.UserRepo
		cleanup     = func() {}
	)

	switch cfg.Storage {
	case config.StorageMemory:
		store := memory.NewArticleStore()
		articleRepo, uow = store, store
		userRepo = memory.NewUserStore()
	default:
		conn, err := db.NewPostgresConnection(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("подключение к БД %s: %w", cfg.GetDSNSafe(), err)
		}
		if err := db.Migrate(context.Background(), conn); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("миграция схемы: %w", err)
		}
		articleRepo = repository.NewArticleRepo(conn)
		uow = repository.NewUnitOfWork(conn)
		userRepo = repository.NewUserRepository(conn)
		cleanup = conn.Close
	}

	// Сервисы
	authService := services.NewAuthService(userRepo)
	articleSvc := services.NewArticleService(articleRepo, uow, authService)

	if err := bootstrapAdmin(context.Background(), cfg, userRepo, authService); err != nil {
		cleanup()
		return nil, nil, err
	}

	// Хендлеры и маршруты
	authH := handlers.NewAuthHandler(authService)
	articleH := handlers.NewArticleHandler(articleSvc)

	router := mux.NewRouter()
	routes.InitRoutes(router, authH, articleH)

	return router, cleanup, nil
}

// bootstrapAdmin создаёт администратора из ADMIN_USERNAME/ADMIN_PASSWORD, если его ещё нет.
func bootstrapAdmin(ctx context.Context, cfg *config.Config, repo services.UserRepo, auth *services.AuthService) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}
	taken, err := repo.IsUsernameTaken(ctx, cfg.AdminUsername)
	if err != nil {
		return fmt.Errorf("проверка администратора: %w", err)
	}
	if taken {
		return nil
	}
	admin := &models.User{Username: cfg.AdminUsername, Role: models.RoleAdmin}
	if err := auth.RegisterUser(ctx, admin, cfg.AdminPassword); err != nil {
		return fmt.Errorf("создание администратора: %w", err)
	}
	logger.Log.Info("Администратор создан", zap.String("username", admin.Username))
	return nil
}
