package application

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
)

// CategoryService is plain validated CRUD over categories.
type CategoryService struct {
	Repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{Repo: repo}
}

// Create persists a category after checking name uniqueness. The check
// runs before any write so duplicates leave no side effects.
func (s *CategoryService) Create(ctx context.Context, name string) (*entity.Category, error) {
	existing, err := s.Repo.GetByName(ctx, name)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check existing category: %w", err)
	}
	if existing != nil {
		return nil, ErrCategoryExists
	}

	c := &entity.Category{CategoryName: name}
	if err := s.Repo.Create(ctx, c); err != nil {
		// concurrent duplicate that slipped past the pre-check
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*entity.Category, error) {
	c, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) GetAll(ctx context.Context) ([]entity.Category, error) {
	return s.Repo.GetAll(ctx)
}

// Update applies a name change and returns the post-update record.
func (s *CategoryService) Update(ctx context.Context, id, name string) (*entity.Category, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		c.CategoryName = name
	}
	if err := s.Repo.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// Delete removes the category. Products keep their category id; references
// are allowed to dangle.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
