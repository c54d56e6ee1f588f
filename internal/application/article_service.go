package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/meublog/blog-api/internal/domain/entity"
	"github.com/meublog/blog-api/internal/domain/repository"
	"github.com/meublog/blog-api/pkg/helpers"
	"github.com/meublog/blog-api/pkg/media"
)

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrNotOwner        = errors.New("not the article owner")
	ErrMissingFields   = errors.New("title and content are required")
)

// ArticleService owns the article lifecycle: ownership-checked writes,
// media normalization on upload, optional thumbnail offload to GCS and
// best-effort search indexing.
type ArticleService struct {
	Repo      repository.ArticleRepository
	Users     repository.UserRepository
	GCS       *storage.Client
	GCSBucket string
	ES        *elasticsearch.Client
	ESIndex   string
	Logger    *logrus.Logger
}

func NewArticleService(repo repository.ArticleRepository, users repository.UserRepository, gcs *storage.Client, gcsBucket string, es *elasticsearch.Client, esIndex string, logger *logrus.Logger) *ArticleService {
	return &ArticleService{
		Repo:      repo,
		Users:     users,
		GCS:       gcs,
		GCSBucket: gcsBucket,
		ES:        es,
		ESIndex:   esIndex,
		Logger:    logger,
	}
}

type ArticleInput struct {
	Title   string
	Content string
	Image   []byte // raw upload bytes; nil means no new image
}

func (s *ArticleService) List(ctx context.Context) ([]entity.ArticleSummary, error) {
	return s.Repo.List(ctx)
}

func (s *ArticleService) Get(ctx context.Context, id string) (*entity.Article, error) {
	a, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return a, nil
}

// GetWithAuthor loads one article together with its author's public
// profile for the detail view.
func (s *ArticleService) GetWithAuthor(ctx context.Context, id string) (*entity.Article, *entity.User, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	u, err := s.Users.GetByID(ctx, a.AuthorID)
	if err != nil {
		// Authors are never deleted while their articles exist, so treat
		// this as a store fault rather than a missing article.
		return nil, nil, err
	}
	return a, u, nil
}

// Create persists a new article owned by the principal. The image, when
// supplied, is normalized before any write so a decode failure leaves no
// partial state behind.
func (s *ArticleService) Create(ctx context.Context, principal string, in ArticleInput) (*entity.Article, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, ErrMissingFields
	}

	a := &entity.Article{
		Title:    in.Title,
		Content:  in.Content,
		AuthorID: principal,
	}
	if in.Image != nil {
		if err := s.attachImage(ctx, a, in.Image); err != nil {
			return nil, err
		}
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.index(ctx, a)
	return a, nil
}

// Update re-fetches the stored record and authorizes against its author,
// never against anything the client sent. Without a new image the stored
// one is retained byte-for-byte.
func (s *ArticleService) Update(ctx context.Context, principal, id string, in ArticleInput) (*entity.Article, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, ErrMissingFields
	}

	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.AuthorID != principal {
		return nil, ErrNotOwner
	}

	a.Title = in.Title
	a.Content = in.Content
	if in.Image != nil {
		if err := s.attachImage(ctx, a, in.Image); err != nil {
			return nil, err
		}
	}
	if err := s.Repo.Update(ctx, a); err != nil {
		return nil, err
	}
	s.index(ctx, a)
	return a, nil
}

func (s *ArticleService) Delete(ctx context.Context, principal, id string) error {
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if a.AuthorID != principal {
		return ErrNotOwner
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.deindex(ctx, id)
	return nil
}

func (s *ArticleService) attachImage(ctx context.Context, a *entity.Article, raw []byte) error {
	n, err := media.Normalize(raw)
	if err != nil {
		return err
	}
	a.Image = n.Image
	a.Thumbnail = n.Thumbnail
	a.ThumbnailURL = s.offloadThumbnail(ctx, n.Thumbnail)
	return nil
}

// offloadThumbnail uploads the thumbnail to GCS when a bucket is
// configured. Failures fall back to the inline thumbnail.
func (s *ArticleService) offloadThumbnail(ctx context.Context, thumb []byte) string {
	if s.GCS == nil || s.GCSBucket == "" {
		return ""
	}
	objectPath := "articles/thumbnails/" + uuid.NewString() + ".jpg"
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, "image/jpeg", bytes.NewReader(thumb))
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("thumbnail upload failed, keeping inline thumbnail")
		}
		return ""
	}
	return url
}

func (s *ArticleService) index(ctx context.Context, a *entity.Article) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":           a.ID,
		"title":        a.Title,
		"content":      a.Content,
		"author_id":    a.AuthorID,
		"published_at": a.PublishedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: a.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("article_id", a.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("article_id", a.ID).Warn("es index response error")
	}
}

func (s *ArticleService) deindex(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("article_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// Search performs a multi_match query over title and content.
func (s *ArticleService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "content"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
