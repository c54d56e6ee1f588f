package application

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/meublog/blog-api/internal/domain/entity"
	"github.com/meublog/blog-api/internal/domain/repository"
)

// In-memory fakes standing in for the Postgres repositories.

type memUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*entity.User{}}
}

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.seq++
	u.ID = "user-" + strconv.Itoa(r.seq)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = hash
	u.UpdatedAt = time.Now()
	return nil
}

type memArticleRepo struct {
	mu       sync.Mutex
	seq      int
	articles map[string]*entity.Article
	authors  *memUserRepo
}

func newMemArticleRepo(users *memUserRepo) *memArticleRepo {
	return &memArticleRepo{articles: map[string]*entity.Article{}, authors: users}
}

func (r *memArticleRepo) Create(_ context.Context, a *entity.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	a.ID = "article-" + strconv.Itoa(r.seq)
	a.PublishedAt = time.Now()
	a.UpdatedAt = a.PublishedAt
	cp := *a
	r.articles[a.ID] = &cp
	return nil
}

func (r *memArticleRepo) GetByID(_ context.Context, id string) (*entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.articles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memArticleRepo) List(_ context.Context) ([]entity.ArticleSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.ArticleSummary, 0, len(r.articles))
	for _, a := range r.articles {
		name := ""
		if r.authors != nil {
			if u, ok := r.authors.users[a.AuthorID]; ok {
				name = u.Name
			}
		}
		out = append(out, entity.ArticleSummary{
			ID:           a.ID,
			Title:        a.Title,
			AuthorID:     a.AuthorID,
			AuthorName:   name,
			Thumbnail:    a.Thumbnail,
			ThumbnailURL: a.ThumbnailURL,
			PublishedAt:  a.PublishedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	return out, nil
}

func (r *memArticleRepo) Update(_ context.Context, a *entity.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.articles[a.ID]; !ok {
		return repository.ErrNotFound
	}
	a.UpdatedAt = time.Now()
	cp := *a
	r.articles[a.ID] = &cp
	return nil
}

func (r *memArticleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.articles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.articles, id)
	return nil
}

type memTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*entity.PasswordResetToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: map[string]*entity.PasswordResetToken{}}
}

func (r *memTokenRepo) Create(_ context.Context, t *entity.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.CreatedAt = time.Now()
	cp := *t
	r.tokens[t.Token] = &cp
	return nil
}

func (r *memTokenRepo) GetByToken(_ context.Context, token string) (*entity.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTokenRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tokens, token)
	return nil
}

func (r *memTokenRepo) DeleteByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, k)
		}
	}
	return nil
}

var (
	_ repository.UserRepository               = (*memUserRepo)(nil)
	_ repository.ArticleRepository            = (*memArticleRepo)(nil)
	_ repository.PasswordResetTokenRepository = (*memTokenRepo)(nil)
)
