package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meublog/blog-api/internal/container"
	handlers "github.com/meublog/blog-api/internal/interface/http"
	"github.com/meublog/blog-api/internal/interface/middleware"
	"github.com/meublog/blog-api/pkg/helpers"
)

// UserModule wires registration, login and profile routes.
// Public: POST /api/users/register, POST /api/users/login
// Protected: GET /api/users/profile, PATCH /api/users/profile
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/users/register", registerLimiter, m.Handler.Register)
	rg.POST("/users/login", loginLimiter, m.Handler.Login)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/users/profile", m.Handler.GetProfile)
		auth.PATCH("/users/profile", m.Handler.UpdateProfile)
	}
}
