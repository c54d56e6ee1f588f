package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meublog/blog-api/internal/container"
	handlers "github.com/meublog/blog-api/internal/interface/http"
	"github.com/meublog/blog-api/internal/interface/middleware"
)

// AuthModule wires the password-reset endpoints. Both are public; the
// forgot endpoint gets the tightest limit since it triggers email.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	forgotLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/users/auth/forgot-password", forgotLimiter, m.Handler.ForgotPassword)
	rg.POST("/users/auth/reset-password", resetLimiter, m.Handler.ResetPassword)
}
