package modules

import (
	"github.com/gin-gonic/gin"

	handlers "storefront/internal/interface/http"
	"storefront/internal/interface/middleware"
	"storefront/pkg/helpers"
)

// UserModule wires the user HTTP handlers into routes.
// Public: POST /api/user (register), POST /api/user/login
// Protected: GET /api/user/me
type UserModule struct {
	Handler  *handlers.UserHandler
	JWT      *helpers.JWTManager
	Resolver middleware.IdentityResolver
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager, resolver middleware.IdentityResolver) *UserModule {
	return &UserModule{Handler: h, JWT: jwt, Resolver: resolver}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.POST("/user", m.Handler.Register)
	rg.POST("/user/login", m.Handler.Login)

	auth := rg.Group("/user")
	auth.Use(middleware.Auth(m.JWT, m.Resolver))
	{
		auth.GET("/me", m.Handler.Me)
	}
}
