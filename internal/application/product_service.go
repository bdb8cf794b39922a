package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/storage"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryRequired = errors.New("category is required")
	ErrCategoryUnknown  = errors.New("category does not exist")
	ErrImageRequired    = errors.New("product image is required")
)

// ImageUpload carries an uploaded blob into the service. Handlers pass it
// explicitly; the service never reaches into request state.
type ImageUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	CategoryID  string
}

// UpdateProductInput is a partial patch; zero values leave fields untouched.
type UpdateProductInput struct {
	Name        string
	Description string
	Price       *float64
	CategoryID  string
}

// ProductService coordinates the record store and the image host so that a
// product's image reference always tracks a live blob. It is the only
// writer of that reference.
//
// The two external effects are not transactional: between an upload and
// the record write at most one side can land. Failures after a successful
// upload trigger a best-effort compensating destroy; orphaned blobs are
// preferred over dangling references.
type ProductService struct {
	Repo       repository.ProductRepository
	Categories repository.CategoryRepository
	Images     storage.ImageStore
	Logger     *logrus.Logger
	ES         *elasticsearch.Client
	ESIndex    string
}

func NewProductService(repo repository.ProductRepository, categories repository.CategoryRepository, images storage.ImageStore, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *ProductService {
	return &ProductService{
		Repo:       repo,
		Categories: categories,
		Images:     images,
		Logger:     logger,
		ES:         es,
		ESIndex:    esIndex,
	}
}

// Create validates input, uploads the image, then persists the product.
// All validation (including category existence) happens before the upload,
// so a rejected request has no external side effects. A failed upload
// aborts creation with nothing persisted; a failed persist destroys the
// fresh upload best-effort.
func (s *ProductService) Create(ctx context.Context, in CreateProductInput, image *ImageUpload) (*entity.Product, error) {
	if in.CategoryID == "" {
		return nil, ErrCategoryRequired
	}
	if _, err := s.Categories.GetByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryUnknown
		}
		return nil, fmt.Errorf("resolve category: %w", err)
	}
	if image == nil {
		return nil, ErrImageRequired
	}

	ref, err := s.Images.Upload(ctx, image.Reader, image.Filename, image.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	p := &entity.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		Image:       ref,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		s.destroyRef(ctx, ref, "orphaned upload after failed create")
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.indexProduct(ctx, p)
	return p, nil
}

// Update applies a partial patch. When a new image is supplied the new
// blob is uploaded first and the old reference destroyed only after the
// record write succeeds: a failed upload leaves the product and its old
// image intact, at the cost of a transient two-image state host-side.
func (s *ProductService) Update(ctx context.Context, id string, in UpdateProductInput, image *ImageUpload) (*entity.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		p.Name = in.Name
	}
	if in.Description != "" {
		p.Description = in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.CategoryID != "" {
		if _, err := s.Categories.GetByID(ctx, in.CategoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrCategoryUnknown
			}
			return nil, fmt.Errorf("resolve category: %w", err)
		}
		p.CategoryID = in.CategoryID
	}

	oldRef := p.Image
	if image != nil {
		ref, err := s.Images.Upload(ctx, image.Reader, image.Filename, image.ContentType)
		if err != nil {
			return nil, fmt.Errorf("upload image: %w", err)
		}
		p.Image = ref
	}

	if err := s.Repo.Update(ctx, p); err != nil {
		if image != nil {
			s.destroyRef(ctx, p.Image, "orphaned upload after failed update")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	// The record now points at the new blob; the old one is garbage.
	if image != nil && oldRef != nil {
		s.destroyRef(ctx, oldRef, "stale image cleanup failed")
	}

	s.indexProduct(ctx, p)
	return p, nil
}

// Delete destroys the image reference (best-effort; a host failure is
// logged and never blocks the record deletion) and removes the record.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if p.Image != nil {
		s.destroyRef(ctx, p.Image, "image cleanup failed on delete")
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}

	s.deindexProduct(ctx, id)
	return nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*entity.Product, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *ProductService) GetAll(ctx context.Context) ([]entity.Product, error) {
	return s.Repo.GetAll(ctx)
}

func (s *ProductService) destroyRef(ctx context.Context, ref *entity.ImageRef, msg string) {
	if ref == nil {
		return
	}
	if err := s.Images.Destroy(ctx, ref.PublicID); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("public_id", ref.PublicID).Warn(msg)
	}
}

// indexProduct mirrors the product into the search index. Best-effort:
// the catalog is the source of truth, the index just trails it.
func (s *ProductService) indexProduct(ctx context.Context, p *entity.Product) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"category_id": p.CategoryID,
		"created_at":  p.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":  p.UpdatedAt.Format(time.RFC3339Nano),
	}
	if p.Image != nil {
		doc["image_url"] = p.Image.SecureURL
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: p.ID, Body: strings.NewReader(string(b)), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("product_id", p.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("product_id", p.ID).Warn("es index response error")
	}
}

func (s *ProductService) deindexProduct(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("product_id", id).Warn("es delete failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
}

// Search performs a multi_match query over product names and descriptions.
func (s *ProductService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^2", "description"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
