package router

import (
	"github.com/showbase/showbase/internal/application"
	"github.com/showbase/showbase/internal/container"
	pginfra "github.com/showbase/showbase/internal/infrastructure/postgres"
	handlers "github.com/showbase/showbase/internal/interface/http"
	"github.com/showbase/showbase/internal/router/modules"
	"github.com/showbase/showbase/pkg/helpers"
)

// InitModules builds the services and handlers from container singletons and
// registers every feature module. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	devMode := cfg.IsDevelopment()

	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	container.SetUserRepo(userRepo)

	authSvc := application.NewAuthService(
		userRepo,
		container.GetHasher(),
		container.GetJWT(),
		container.GetNotifier(),
		container.GetRabbitPub(),
		logger,
		cfg.ResetTokenTTL,
	)
	userSvc := application.NewUserService(userRepo, container.GetGCS(), cfg.GCSBucket, logger)

	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure())
	authHandler := handlers.NewAuthHandler(authSvc, cookies, logger, devMode)
	userHandler := handlers.NewUserHandler(userSvc, logger, devMode)
	r.Add(modules.NewUserModule(authHandler, userHandler))

	seriesRepo := pginfra.NewSeriesRepository(container.GetPGPool())
	seriesSvc := application.NewSeriesService(seriesRepo, container.GetES(), cfg.ESSeriesIndex, logger)
	seriesHandler := handlers.NewSeriesHandler(seriesSvc, logger, devMode)
	r.Add(modules.NewSeriesModule(seriesHandler))
}
