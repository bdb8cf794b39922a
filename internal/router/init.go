package router

import (
	"storefront/internal/application"
	"storefront/internal/container"
	"storefront/internal/infrastructure/gcs"
	pginfra "storefront/internal/infrastructure/postgres"
	handlers "storefront/internal/interface/http"
	"storefront/internal/router/modules"
)

// InitModules wires repositories, services and handlers from the container
// singletons and registers every feature module with the registry. Called
// once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	userRepo := pginfra.NewUserRepository(pool)
	categoryRepo := pginfra.NewCategoryRepository(pool)
	productRepo := pginfra.NewProductRepository(pool)

	images := gcs.NewImageStore(container.GetGCS(), cfg.GCSBucket, cfg.ImageFolder)

	userSvc := application.NewUserService(userRepo, container.GetJWT(), container.GetRedis(), logger)
	categorySvc := application.NewCategoryService(categoryRepo)
	productSvc := application.NewProductService(productRepo, categoryRepo, images, logger, container.GetES(), cfg.ESProductsIndex)

	userHandler := handlers.NewUserHandler(userSvc, logger)
	categoryHandler := handlers.NewCategoryHandler(categorySvc, logger)
	productHandler := handlers.NewProductHandler(productSvc, logger)

	r.Add(modules.NewUserModule(userHandler, container.GetJWT(), userSvc))
	r.Add(modules.NewCategoryModule(categoryHandler, container.GetJWT(), userSvc))
	r.Add(modules.NewProductModule(productHandler, container.GetJWT(), userSvc))
}
