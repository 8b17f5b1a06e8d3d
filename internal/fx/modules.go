package fx

import (
	"surftimer-api/internal/auth"
	"surftimer-api/internal/cache"
	"surftimer-api/internal/config"
	"surftimer-api/internal/database"
	"surftimer-api/internal/logger"
	"surftimer-api/internal/repository"
	"surftimer-api/internal/server"
	"surftimer-api/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(cache.New),
	// repos
	fx.Provide(repository.NewMapRepository),
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewRunRepository),
	// svc
	fx.Provide(service.NewMapService),
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewRunService),
	// auth
	fx.Provide(auth.NewVerifier),
	// server
	fx.Provide(server.New),
)
