package modules

import (
	"github.com/gin-gonic/gin"

	handlers "storefront/internal/interface/http"
	"storefront/internal/interface/middleware"
	"storefront/pkg/helpers"
)

// CategoryModule wires category routes.
// Public: GET /api/category/all
// Protected: POST /api/category, GET|PUT|DELETE /api/category/:id
type CategoryModule struct {
	Handler  *handlers.CategoryHandler
	JWT      *helpers.JWTManager
	Resolver middleware.IdentityResolver
}

func NewCategoryModule(h *handlers.CategoryHandler, jwt *helpers.JWTManager, resolver middleware.IdentityResolver) *CategoryModule {
	return &CategoryModule{Handler: h, JWT: jwt, Resolver: resolver}
}

func (m *CategoryModule) Register(rg *gin.RouterGroup) {
	rg.GET("/category/all", m.Handler.GetAll)

	auth := rg.Group("/category")
	auth.Use(middleware.Auth(m.JWT, m.Resolver))
	{
		auth.POST("", m.Handler.Create)
		auth.GET("/:id", m.Handler.Get)
		auth.PUT("/:id", m.Handler.Update)
		auth.DELETE("/:id", m.Handler.Delete)
	}
}
