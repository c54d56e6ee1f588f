package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meublog/blog-api/internal/container"
	handlers "github.com/meublog/blog-api/internal/interface/http"
	"github.com/meublog/blog-api/internal/interface/middleware"
	"github.com/meublog/blog-api/pkg/helpers"
)

// ArticleModule wires article routes.
// Public: GET /api/articles, GET /api/articles/search, GET /api/articles/:id
// Protected: POST /api/articles, PUT /api/articles/:id, DELETE /api/articles/:id
type ArticleModule struct {
	Handler *handlers.ArticleHandler
	JWT     *helpers.JWTManager
}

func NewArticleModule(h *handlers.ArticleHandler, jwt *helpers.JWTManager) *ArticleModule {
	return &ArticleModule{Handler: h, JWT: jwt}
}

func (m *ArticleModule) Register(rg *gin.RouterGroup) {
	rg.GET("/articles", m.Handler.List)
	rg.GET("/articles/search", m.Handler.Search)
	rg.GET("/articles/:id", m.Handler.Get)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/articles", m.Handler.Create)
		auth.PUT("/articles/:id", m.Handler.Update)
		auth.DELETE("/articles/:id", m.Handler.Delete)
	}
}
