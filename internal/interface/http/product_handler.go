package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/application"
	"storefront/internal/domain/entity"
	"storefront/pkg/response"
)

type ProductHandler struct {
	Svc    *application.ProductService
	Logger *logrus.Logger
}

func NewProductHandler(svc *application.ProductService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{Svc: svc, Logger: logger}
}

func productJSON(p *entity.Product) gin.H {
	out := gin.H{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"category":    p.CategoryID,
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	}
	if p.Image != nil {
		out["productImage"] = p.Image
	}
	return out
}

// imageFromForm opens the productImage multipart field and hands it to the
// caller as an explicit upload. A missing field yields (nil, nil, nil);
// whether that is acceptable is the service's decision.
func imageFromForm(c *gin.Context) (*application.ImageUpload, multipart.File, error) {
	fh, err := c.FormFile("productImage")
	if err != nil {
		return nil, nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &application.ImageUpload{
		Reader:      f,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
	}, f, nil
}

// Create POST /api/product (protected, multipart)
func (h *ProductHandler) Create(c *gin.Context) {
	price, err := strconv.ParseFloat(c.DefaultPostForm("price", "0"), 64)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid price", nil)
		return
	}
	in := application.CreateProductInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Price:       price,
		CategoryID:  c.PostForm("category"),
	}

	image, file, err := imageFromForm(c)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable product image", nil)
		return
	}
	if file != nil {
		defer func() { _ = file.Close() }()
	}

	p, err := h.Svc.Create(c.Request.Context(), in, image)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, productJSON(p), "product created", nil)
}

// Get GET /api/product/:id (protected)
func (h *ProductHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Error[any](c, http.StatusBadRequest, "please provide the product id", nil)
		return
	}

	p, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, productJSON(p), "product", nil)
}

// GetAll GET /api/product/all (public)
func (h *ProductHandler) GetAll(c *gin.Context) {
	products, err := h.Svc.GetAll(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("list products failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to list products", nil)
		return
	}
	if len(products) == 0 {
		response.Error[any](c, http.StatusNotFound, "products not found", nil)
		return
	}

	out := make([]gin.H, 0, len(products))
	for i := range products {
		out = append(out, productJSON(&products[i]))
	}
	response.Success(c, http.StatusOK, out, "products", nil)
}

// Update PUT /api/product/:id (protected, multipart). Fields absent from
// the form are left untouched; a productImage file replaces the current one.
func (h *ProductHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Error[any](c, http.StatusBadRequest, "please provide the product id", nil)
		return
	}

	in := application.UpdateProductInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		CategoryID:  c.PostForm("category"),
	}
	if raw, ok := c.GetPostForm("price"); ok {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid price", nil)
			return
		}
		in.Price = &price
	}

	image, file, err := imageFromForm(c)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable product image", nil)
		return
	}
	if file != nil {
		defer func() { _ = file.Close() }()
	}

	p, err := h.Svc.Update(c.Request.Context(), id, in, image)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, productJSON(p), "product updated", nil)
}

// Delete DELETE /api/product/:id (protected)
func (h *ProductHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Error[any](c, http.StatusBadRequest, "please provide the product id", nil)
		return
	}

	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		h.renderError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "product deleted", nil)
}

// Search GET /api/product/search?q=... (protected)
func (h *ProductHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Error("product search failed")
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}

func (h *ProductHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrProductNotFound):
		response.Error[any](c, http.StatusNotFound, "product not found", nil)
	case errors.Is(err, application.ErrCategoryRequired):
		response.Error[any](c, http.StatusBadRequest, "please provide the category", nil)
	case errors.Is(err, application.ErrCategoryUnknown):
		response.Error[any](c, http.StatusBadRequest, "category does not exist", nil)
	case errors.Is(err, application.ErrImageRequired):
		response.Error[any](c, http.StatusBadRequest, "please provide the product image", nil)
	default:
		h.Logger.WithError(err).Error("product operation failed")
		response.Error[any](c, http.StatusInternalServerError, "product operation failed", nil)
	}
}
