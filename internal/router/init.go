package router

import (
	"github.com/meublog/blog-api/internal/application"
	"github.com/meublog/blog-api/internal/container"
	"github.com/meublog/blog-api/internal/infrastructure/postgres"
	handlers "github.com/meublog/blog-api/internal/interface/http"
	"github.com/meublog/blog-api/internal/router/modules"
)

// InitModules initializes all application modules and registers them with
// the router registry. Called once during startup after the container has
// been populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	users := postgres.NewUserRepository(pool)
	articles := postgres.NewArticleRepository(pool)
	resetTokens := postgres.NewPasswordResetTokenRepository(pool)

	userSvc := application.NewUserService(users, container.GetJWT(), logger)
	authSvc := application.NewAuthService(
		users,
		resetTokens,
		container.GetRabbitPub(),
		logger,
		cfg.ResetPasswordURL,
		cfg.ResetTokenTTL,
		cfg.MailSendEnabled,
	)
	articleSvc := application.NewArticleService(
		articles,
		users,
		container.GetGCS(),
		cfg.GCSBucket,
		container.GetES(),
		cfg.ESArticlesIndex,
		logger,
	)

	r.Add(modules.NewUserModule(handlers.NewUserHandler(userSvc, logger), container.GetJWT()))
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, logger)))
	r.Add(modules.NewArticleModule(handlers.NewArticleHandler(articleSvc, logger), container.GetJWT()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
