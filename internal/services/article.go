package services

import (
	"context"
	"fmt"
	"sort"

	"xblog/internal/logger"
	"xblog/internal/models"
	"xblog/internal/repository"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// Credentials - имя и пароль, которые проверяются на каждой мутации.
type Credentials struct {
	Username string
	Password string
}

type ArticleService interface {
	Publish(ctx context.Context, title, content string, cred Credentials) (*models.Article, error)
	Edit(ctx context.Context, id int64, title, content string, cred Credentials) (*models.Article, error)
	GetArticle(ctx context.Context, id int64) (models.ArticleDTO, error)
	ListArticleSummaries(ctx context.Context) ([]models.ArticleSummaryDTO, error)
	ReplyArticle(ctx context.Context, articleID, discussID int64, content string, cred Credentials) (models.DiscussDTO, error)
	ListDiscuss(ctx context.Context, articleID int64, q DiscussQuery) ([]models.DiscussDTO, error)
	NumberOfDiscuss(ctx context.Context, articleID int64) (int, error)
	TotalPagesOfDiscuss(ctx context.Context, articleID int64) (int, error)
	CanReply(ctx context.Context, articleID int64, cred Credentials) bool
	CloseDiscuss(ctx context.Context, articleID int64, cred Credentials) error
	OpenDiscuss(ctx context.Context, articleID int64, cred Credentials) error
	Draft(ctx context.Context, articleID int64, cred Credentials) error
}

type articleService struct {
	repo   repository.ArticleRepo
	uow    repository.UnitOfWork
	auth   Authorizer
	policy *bluemonday.Policy
	strict *bluemonday.Policy
}

func NewArticleService(repo repository.ArticleRepo, uow repository.UnitOfWork, auth Authorizer) ArticleService {
	p := bluemonday.UGCPolicy()
	p.AllowElements("img")
	p.AllowAttrs("src", "alt").OnElements("img")
	return &articleService{
		repo:   repo,
		uow:    uow,
		auth:   auth,
		policy: p,
		strict: bluemonday.StrictPolicy(),
	}
}

func (s *articleService) authorize(ctx context.Context, cred Credentials, capability models.Capability) error {
	if s.auth.Verify(ctx, cred.Username, cred.Password) && s.auth.HasAuth(ctx, cred.Username, capability) {
		return nil
	}
	return &AuthError{Capability: capability}
}

// locate переводит отсутствие статьи в ErrNotFound.
func (s *articleService) locate(ctx context.Context, id int64) (*models.Article, error) {
	a, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

// mutate - общий путь мутаций: авторизация, поиск статьи, транзакция.
func (s *articleService) mutate(ctx context.Context, op string, id int64, cred Credentials, capability models.Capability,
	fn func(ctx context.Context, a *models.Article) error,
) (*models.Article, error) {
	log := logger.WithCtx(ctx).With(zap.String("op", op), zap.Int64("article_id", id), zap.String("username", cred.Username))

	if err := s.authorize(ctx, cred, capability); err != nil {
		log.Warn("Отказ в доступе", zap.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a, err := s.locate(ctx, id)
	if err != nil {
		log.Warn("Статья не найдена (repo)", zap.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.uow.Do(ctx, func(ctx context.Context) error { return fn(ctx, a) }); err != nil {
		log.Warn("Транзакция не зафиксирована", zap.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("Статья изменена")
	return a, nil
}

func (s *articleService) Publish(ctx context.Context, title, content string, cred Credentials) (*models.Article, error) {
	const op = "services/article/Publish"
	log := logger.WithCtx(ctx).With(zap.String("op", op), zap.String("username", cred.Username))

	if err := s.authorize(ctx, cred, models.CapArticleManager); err != nil {
		log.Warn("Отказ в доступе", zap.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a := models.NewArticle(cred.Username, s.strict.Sanitize(title), s.policy.Sanitize(content))
	if err := s.uow.Do(ctx, func(ctx context.Context) error { return s.repo.Add(ctx, a) }); err != nil {
		log.Error("Ошибка публикации статьи (repo)", zap.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("Статья опубликована", zap.Int64("id", a.ID()), zap.String("title", a.Title))
	return a, nil
}

func (s *articleService) Edit(ctx context.Context, id int64, title, content string, cred Credentials) (*models.Article, error) {
	title, content = s.strict.Sanitize(title), s.policy.Sanitize(content)
	return s.mutate(ctx, "services/article/Edit", id, cred, models.CapArticleManager,
		func(ctx context.Context, a *models.Article) error {
			a.Edit(title, content)
			return s.repo.Save(ctx, a)
		})
}

func (s *articleService) GetArticle(ctx context.Context, id int64) (models.ArticleDTO, error) {
	a, err := s.locate(ctx, id)
	if err != nil {
		logger.WithCtx(ctx).Debug("Статья не получена", zap.Int64("id", id), zap.Error(err))
		return models.ArticleDTO{}, fmt.Errorf("services/article/GetArticle: %w", err)
	}
	return models.NewArticleDTO(a), nil
}

// ListArticleSummaries - все статьи, новые первыми.
func (s *articleService) ListArticleSummaries(ctx context.Context) ([]models.ArticleSummaryDTO, error) {
	list, err := s.repo.GetAll(ctx)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка получения списка статей (repo)", zap.Error(err))
		return nil, fmt.Errorf("services/article/ListArticleSummaries: %w", err)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID() > list[j].ID()
	})

	out := make([]models.ArticleSummaryDTO, 0, len(list))
	for _, a := range list {
		out = append(out, models.NewArticleSummaryDTO(a))
	}
	return out, nil
}

func (s *articleService) ReplyArticle(ctx context.Context, articleID, discussID int64, content string, cred Credentials) (models.DiscussDTO, error) {
	var reply models.Discuss
	content = s.policy.Sanitize(content)
	a, err := s.mutate(ctx, "services/article/ReplyArticle", articleID, cred, models.CapPublicDiscuss,
		func(ctx context.Context, a *models.Article) error {
			d, err := a.ReplyDiscuss(cred.Username, discussID, content)
			if err != nil {
				return err
			}
			reply = d
			return s.repo.Save(ctx, a)
		})
	if err != nil {
		return models.DiscussDTO{}, err
	}
	return models.NewDiscussDTO(a, reply), nil
}

func (s *articleService) ListDiscuss(ctx context.Context, articleID int64, q DiscussQuery) ([]models.DiscussDTO, error) {
	const op = "services/article/ListDiscuss"
	if err := q.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a, err := s.locate(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	begin, end := q.bounds(a.NumberOfDiscuss())
	return models.NewDiscussDTOs(a, begin, end), nil
}

func (s *articleService) NumberOfDiscuss(ctx context.Context, articleID int64) (int, error) {
	a, err := s.locate(ctx, articleID)
	if err != nil {
		return 0, fmt.Errorf("services/article/NumberOfDiscuss: %w", err)
	}
	return a.NumberOfDiscuss(), nil
}

func (s *articleService) TotalPagesOfDiscuss(ctx context.Context, articleID int64) (int, error) {
	a, err := s.locate(ctx, articleID)
	if err != nil {
		return 0, fmt.Errorf("services/article/TotalPagesOfDiscuss: %w", err)
	}
	return TotalPages(a.NumberOfDiscuss()), nil
}

// CanReply никогда не возвращает ошибку: отказ в доступе, отсутствие
// статьи и сбой хранилища дают false.
func (s *articleService) CanReply(ctx context.Context, articleID int64, cred Credentials) bool {
	if err := s.authorize(ctx, cred, models.CapPublicDiscuss); err != nil {
		return false
	}
	a, err := s.locate(ctx, articleID)
	if err != nil {
		return false
	}
	return a.CanReply()
}

func (s *articleService) CloseDiscuss(ctx context.Context, articleID int64, cred Credentials) error {
	_, err := s.mutate(ctx, "services/article/CloseDiscuss", articleID, cred, models.CapArticleManager,
		func(ctx context.Context, a *models.Article) error {
			a.CloseDiscuss()
			return s.repo.Save(ctx, a)
		})
	return err
}

func (s *articleService) OpenDiscuss(ctx context.Context, articleID int64, cred Credentials) error {
	_, err := s.mutate(ctx, "services/article/OpenDiscuss", articleID, cred, models.CapArticleManager,
		func(ctx context.Context, a *models.Article) error {
			a.OpenDiscuss()
			return s.repo.Save(ctx, a)
		})
	return err
}

// Draft снимает статью с публикации: агрегат и его ветка удаляются.
func (s *articleService) Draft(ctx context.Context, articleID int64, cred Credentials) error {
	_, err := s.mutate(ctx, "services/article/Draft", articleID, cred, models.CapArticleManager,
		func(ctx context.Context, a *models.Article) error {
			return s.repo.Delete(ctx, a)
		})
	return err
}
