package modules

import (
	"github.com/gin-gonic/gin"

	handlers "storefront/internal/interface/http"
	"storefront/internal/interface/middleware"
	"storefront/pkg/helpers"
)

// ProductModule wires product routes.
// Public: GET /api/product/all
// Protected: POST /api/product, GET /api/product/search,
// GET|PUT|DELETE /api/product/:id
type ProductModule struct {
	Handler  *handlers.ProductHandler
	JWT      *helpers.JWTManager
	Resolver middleware.IdentityResolver
}

func NewProductModule(h *handlers.ProductHandler, jwt *helpers.JWTManager, resolver middleware.IdentityResolver) *ProductModule {
	return &ProductModule{Handler: h, JWT: jwt, Resolver: resolver}
}

func (m *ProductModule) Register(rg *gin.RouterGroup) {
	rg.GET("/product/all", m.Handler.GetAll)

	auth := rg.Group("/product")
	auth.Use(middleware.Auth(m.JWT, m.Resolver))
	{
		auth.POST("", m.Handler.Create)
		auth.GET("/search", m.Handler.Search)
		auth.GET("/:id", m.Handler.Get)
		auth.PUT("/:id", m.Handler.Update)
		auth.DELETE("/:id", m.Handler.Delete)
	}
}
