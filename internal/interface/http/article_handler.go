package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/meublog/blog-api/internal/application"
	"github.com/meublog/blog-api/internal/domain/entity"
	"github.com/meublog/blog-api/internal/interface/middleware"
	"github.com/meublog/blog-api/pkg/media"
	"github.com/meublog/blog-api/pkg/response"
	"github.com/meublog/blog-api/pkg/validation"
)

type ArticleHandler struct {
	Svc    *application.ArticleService
	Logger *logrus.Logger
}

func NewArticleHandler(svc *application.ArticleService, logger *logrus.Logger) *ArticleHandler {
	return &ArticleHandler{Svc: svc, Logger: logger}
}

type articleRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
	Image   string `json:"image" binding:"omitempty,base64"`
}

// thumbnailRef picks the lightweight display reference for list views:
// the external URL when the thumbnail was offloaded, otherwise the inline
// encoding of the stored small thumbnail. The full image never travels in
// a list.
func thumbnailRef(url string, thumb []byte) string {
	if url != "" {
		return url
	}
	return response.JPEGDataURI(thumb)
}

func summaryJSON(s entity.ArticleSummary) gin.H {
	return gin.H{
		"id":           s.ID,
		"title":        s.Title,
		"published_at": s.PublishedAt,
		"author":       gin.H{"id": s.AuthorID, "name": s.AuthorName},
		"thumbnail":    thumbnailRef(s.ThumbnailURL, s.Thumbnail),
	}
}

func createdJSON(a *entity.Article) gin.H {
	return gin.H{
		"id":           a.ID,
		"title":        a.Title,
		"published_at": a.PublishedAt,
		"updated_at":   a.UpdatedAt,
		"author":       gin.H{"id": a.AuthorID},
		"thumbnail":    thumbnailRef(a.ThumbnailURL, a.Thumbnail),
	}
}

func detailJSON(a *entity.Article, author *entity.User) gin.H {
	return gin.H{
		"id":           a.ID,
		"title":        a.Title,
		"content":      a.Content,
		"image":        response.JPEGDataURI(a.Image),
		"published_at": a.PublishedAt,
		"updated_at":   a.UpdatedAt,
		"author": gin.H{
			"id":     author.ID,
			"name":   author.Name,
			"avatar": response.DataURI(author.Avatar, ""),
		},
	}
}

// articleInput reads title/content and the optional image from either a
// multipart form (file field "image") or a JSON body (base64 "image").
func articleInput(c *gin.Context) (application.ArticleInput, bool) {
	var in application.ArticleInput

	if isMultipart(c) {
		in.Title = c.PostForm("title")
		in.Content = c.PostForm("content")
		img, err := formFileBytes(c, "image")
		if err != nil {
			resp := response.Error[any](c, http.StatusBadRequest, "unreadable image upload", nil)
			c.JSON(resp.Status, resp)
			return in, false
		}
		in.Image = img
		return in, true
	}

	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return in, false
	}
	in.Title, in.Content = req.Title, req.Content
	if req.Image != "" {
		b, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			resp := response.Error[any](c, http.StatusBadRequest, "invalid image encoding", nil)
			c.JSON(resp.Status, resp)
			return in, false
		}
		in.Image = b
	}
	return in, true
}

func (h *ArticleHandler) writeError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, application.ErrMissingFields):
		resp := response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
		c.JSON(resp.Status, resp)
	case errors.Is(err, media.ErrDecode):
		resp := response.Error[any](c, http.StatusBadRequest, "unprocessable image", nil)
		c.JSON(resp.Status, resp)
	case errors.Is(err, application.ErrArticleNotFound):
		resp := response.Error[any](c, http.StatusNotFound, "article not found", nil)
		c.JSON(resp.Status, resp)
	case errors.Is(err, application.ErrNotOwner):
		resp := response.Error[any](c, http.StatusForbidden, "not the article owner", nil)
		c.JSON(resp.Status, resp)
	default:
		h.Logger.WithError(err).Error(action + " failed")
		resp := response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
		c.JSON(resp.Status, resp)
	}
}

// List handles GET /articles.
func (h *ArticleHandler) List(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "list articles")
		return
	}
	out := make([]gin.H, 0, len(items))
	for _, s := range items {
		out = append(out, summaryJSON(s))
	}
	resp := response.Success(c, http.StatusOK, out, "articles", gin.H{"count": len(out)})
	c.JSON(resp.Status, resp)
}

// Get handles GET /articles/:id.
func (h *ArticleHandler) Get(c *gin.Context) {
	a, author, err := h.Svc.GetWithAuthor(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "get article")
		return
	}
	resp := response.Success(c, http.StatusOK, detailJSON(a, author), "article", nil)
	c.JSON(resp.Status, resp)
}

// Search handles GET /articles/search?q=.
func (h *ArticleHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		resp := response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		c.JSON(resp.Status, resp)
		return
	}
	hits, err := h.Svc.Search(c.Request.Context(), q, 10)
	if err != nil {
		h.writeError(c, err, "search articles")
		return
	}
	resp := response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
	c.JSON(resp.Status, resp)
}

// Create handles POST /articles.
func (h *ArticleHandler) Create(c *gin.Context) {
	in, ok := articleInput(c)
	if !ok {
		return
	}
	a, err := h.Svc.Create(c.Request.Context(), middleware.Principal(c), in)
	if err != nil {
		h.writeError(c, err, "create article")
		return
	}
	resp := response.Success(c, http.StatusCreated, createdJSON(a), "article created", nil)
	c.JSON(resp.Status, resp)
}

// Update handles PUT /articles/:id.
func (h *ArticleHandler) Update(c *gin.Context) {
	in, ok := articleInput(c)
	if !ok {
		return
	}
	a, err := h.Svc.Update(c.Request.Context(), middleware.Principal(c), c.Param("id"), in)
	if err != nil {
		h.writeError(c, err, "update article")
		return
	}
	resp := response.Success(c, http.StatusOK, createdJSON(a), "article updated", nil)
	c.JSON(resp.Status, resp)
}

// Delete handles DELETE /articles/:id.
func (h *ArticleHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.Principal(c), c.Param("id")); err != nil {
		h.writeError(c, err, "delete article")
		return
	}
	resp := response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "article deleted", nil)
	c.JSON(resp.Status, resp)
}
