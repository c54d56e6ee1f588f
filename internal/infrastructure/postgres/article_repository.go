package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meublog/blog-api/internal/domain/entity"
	"github.com/meublog/blog-api/internal/domain/repository"
)

type ArticleRepository struct {
	pool *pgxpool.Pool
}

func NewArticleRepository(pool *pgxpool.Pool) *ArticleRepository {
	return &ArticleRepository{pool: pool}
}

func (r *ArticleRepository) Create(ctx context.Context, a *entity.Article) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO articles (title, content, image, thumbnail, thumbnail_url, author_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, published_at, updated_at
	`, a.Title, a.Content, a.Image, a.Thumbnail, a.ThumbnailURL, a.AuthorID)

	return row.Scan(&a.ID, &a.PublishedAt, &a.UpdatedAt)
}

func (r *ArticleRepository) GetByID(ctx context.Context, id string) (*entity.Article, error) {
	a := &entity.Article{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, title, content, image, thumbnail, thumbnail_url, author_id, published_at, updated_at
		FROM articles
		WHERE id = $1
	`, id)

	if err := row.Scan(&a.ID, &a.Title, &a.Content, &a.Image, &a.Thumbnail,
		&a.ThumbnailURL, &a.AuthorID, &a.PublishedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// List returns summaries newest first. The full image column is never
// selected here; only the small thumbnail travels with the list.
func (r *ArticleRepository) List(ctx context.Context) ([]entity.ArticleSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.title, a.author_id, u.name, a.thumbnail, a.thumbnail_url, a.published_at
		FROM articles a
		JOIN users u ON u.id = a.author_id
		ORDER BY a.published_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.ArticleSummary, 0)
	for rows.Next() {
		var s entity.ArticleSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.AuthorID, &s.AuthorName,
			&s.Thumbnail, &s.ThumbnailURL, &s.PublishedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ArticleRepository) Update(ctx context.Context, a *entity.Article) error {
	a.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE articles
		SET title = $1, content = $2, image = $3, thumbnail = $4, thumbnail_url = $5, updated_at = $6
		WHERE id = $7
	`, a.Title, a.Content, a.Image, a.Thumbnail, a.ThumbnailURL, a.UpdatedAt, a.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ArticleRepository = (*ArticleRepository)(nil)
