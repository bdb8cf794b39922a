package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/application"
	"storefront/internal/domain/entity"
	"storefront/pkg/response"
	"storefront/pkg/validation"
)

type CategoryHandler struct {
	Svc    *application.CategoryService
	Logger *logrus.Logger
}

func NewCategoryHandler(svc *application.CategoryService, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{Svc: svc, Logger: logger}
}

type categoryRequest struct {
	CategoryName string `json:"categoryName" binding:"required"`
}

type updateCategoryRequest struct {
	CategoryName string `json:"categoryName"`
}

func categoryJSON(c *entity.Category) gin.H {
	return gin.H{
		"id":           c.ID,
		"categoryName": c.CategoryName,
		"created_at":   c.CreatedAt,
		"updated_at":   c.UpdatedAt,
	}
}

// Create POST /api/category (protected)
func (h *CategoryHandler) Create(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "please provide the category name", validation.ToDetails(err))
		return
	}

	cat, err := h.Svc.Create(c.Request.Context(), req.CategoryName)
	if err != nil {
		if errors.Is(err, application.ErrCategoryExists) {
			response.Error[any](c, http.StatusBadRequest, "category already exists", nil)
			return
		}
		h.Logger.WithError(err).Error("create category failed")
		response.Error[any](c, http.StatusInternalServerError, "category creation failed", nil)
		return
	}

	response.Success(c, http.StatusCreated, categoryJSON(cat), "category created", nil)
}

// Get GET /api/category/:id (protected)
func (h *CategoryHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Error[any](c, http.StatusBadRequest, "please provide the category id", nil)
		return
	}

	cat, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, categoryJSON(cat), "category", nil)
}

// GetAll GET /api/category/all (public). An empty collection is a 404,
// matching the rest of the not-found semantics.
func (h *CategoryHandler) GetAll(c *gin.Context) {
	cats, err := h.Svc.GetAll(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("list categories failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to list categories", nil)
		return
	}
	if len(cats) == 0 {
		response.Error[any](c, http.StatusNotFound, "categories not found", nil)
		return
	}

	out := make([]gin.H, 0, len(cats))
	for i := range cats {
		out = append(out, categoryJSON(&cats[i]))
	}
	response.Success(c, http.StatusOK, out, "categories", nil)
}

// Update PUT /api/category/:id (protected)
func (h *CategoryHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Error[any](c, http.StatusBadRequest, "please provide the category id", nil)
		return
	}

	var req updateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	cat, err := h.Svc.Update(c.Request.Context(), id, req.CategoryName)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, categoryJSON(cat), "category updated", nil)
}

// Delete DELETE /api/category/:id (protected)
func (h *CategoryHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Error[any](c, http.StatusBadRequest, "please provide the category id", nil)
		return
	}

	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		h.renderError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "category deleted", nil)
}

func (h *CategoryHandler) renderError(c *gin.Context, err error) {
	if errors.Is(err, application.ErrCategoryNotFound) {
		response.Error[any](c, http.StatusNotFound, "category not found", nil)
		return
	}
	h.Logger.WithError(err).Error("category operation failed")
	response.Error[any](c, http.StatusInternalServerError, "category operation failed", nil)
}
