package router

import "github.com/gin-gonic/gin"

// Module is a feature slice that owns its own routes. Each module decides
// internally which of its routes sit behind the auth gate.
type Module interface {
	Register(rg *gin.RouterGroup)
}

// Registry collects modules and mounts them under a shared /api group.
type Registry struct {
	api     *gin.RouterGroup
	modules []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{api: engine.Group("/api")}
}

func (r *Registry) Add(mods ...Module) {
	r.modules = append(r.modules, mods...)
}

// RegisterAll mounts every added module. Called once after wiring.
func (r *Registry) RegisterAll() {
	for _, m := range r.modules {
		m.Register(r.api)
	}
}
