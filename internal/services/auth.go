package services

import (
	"context"
	"errors"
	"strings"

	"xblog/internal/logger"
	"xblog/internal/models"
	"xblog/internal/repository"
	"xblog/internal/utils"

	"go.uber.org/zap"
)

// Authorizer - проверка учётных данных и прав перед мутацией.
type Authorizer interface {
	Verify(ctx context.Context, username, password string) bool
	HasAuth(ctx context.Context, username string, capability models.Capability) bool
}

type UserRepo interface {
	IsUsernameTaken(ctx context.Context, username string) (bool, error)
	CreateUser(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

var (
	ErrInvalidUser        = errors.New("имя пользователя и пароль обязательны")
	ErrUsernameTaken      = errors.New("имя пользователя уже занято")
	ErrInvalidCredentials = errors.New("неверный логин или пароль")
)

type AuthService struct {
	repo UserRepo
}

var _ Authorizer = (*AuthService)(nil)

func NewAuthService(repo UserRepo) *AuthService {
	return &AuthService{repo: repo}
}

// RegisterUser сохраняет пользователя с bcrypt-хешем пароля.
// Пустая роль превращается в models.RoleUser.
func (s *AuthService) RegisterUser(ctx context.Context, input *models.User, plainPassword string) error {
	logger.WithCtx(ctx).Info("Регистрация пользователя (service)", zap.String("username", input.Username), zap.String("role", input.Role))

	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" || plainPassword == "" {
		return ErrInvalidUser
	}
	if exists, err := s.repo.IsUsernameTaken(ctx, input.Username); exists || err != nil {
		if err != nil {
			logger.WithCtx(ctx).Error("Ошибка проверки username", zap.Error(err))
			return err
		}
		return ErrUsernameTaken
	}

	hashed, err := utils.HashPassword(plainPassword)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка хеширования пароля", zap.Error(err))
		return err
	}

	input.PasswordHash = hashed
	if input.Role == "" {
		input.Role = models.RoleUser
	}

	if err := s.repo.CreateUser(ctx, input); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return ErrUsernameTaken
		}
		logger.WithCtx(ctx).Error("Ошибка создания пользователя", zap.Error(err))
		return err
	}
	logger.WithCtx(ctx).Info("Пользователь зарегистрирован (service)", zap.String("username", input.Username))
	return nil
}

// Authenticate возвращает пользователя, если пароль совпал с хешем.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		logger.WithCtx(ctx).Warn("Пользователь не найден (service)", zap.String("username", username), zap.Error(err))
		return nil, ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		logger.WithCtx(ctx).Warn("Неверный пароль (service)", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) Verify(ctx context.Context, username, password string) bool {
	_, err := s.Authenticate(ctx, username, password)
	return err == nil
}

func (s *AuthService) HasAuth(ctx context.Context, username string, capability models.Capability) bool {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return false
	}
	ok := user.HasCapability(capability)
	if !ok {
		logger.WithCtx(ctx).Warn("Недостаточно прав (service)",
			zap.String("username", username),
			zap.String("role", user.Role),
			zap.String("capability", string(capability)),
		)
	}
	return ok
}
