package repository

import (
	"context"

	"github.com/meublog/blog-api/internal/domain/entity"
)

// ArticleRepository defines the interface for article persistence.
// List returns summaries only; the full image binary is fetched per
// article via GetByID.
type ArticleRepository interface {
	Create(ctx context.Context, a *entity.Article) error
	GetByID(ctx context.Context, id string) (*entity.Article, error)
	List(ctx context.Context) ([]entity.ArticleSummary, error)
	Update(ctx context.Context, a *entity.Article) error
	Delete(ctx context.Context, id string) error
}
