package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	pid, purl := imageCols(p.Image)
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (name, description, price, category_id, image_public_id, image_secure_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, p.Name, p.Description, p.Price, p.CategoryID, pid, purl)

	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return scanProduct(r.pool.QueryRow(ctx, `
		SELECT id, name, description, price, category_id, image_public_id, image_secure_url, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id))
}

func (r *ProductRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, price, category_id, image_public_id, image_secure_url, created_at, updated_at
		FROM products
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	p.UpdatedAt = time.Now()
	pid, purl := imageCols(p.Image)

	res, err := r.pool.Exec(ctx, `
		UPDATE products
		SET name = $1, description = $2, price = $3, category_id = $4,
		    image_public_id = $5, image_secure_url = $6, updated_at = $7
		WHERE id = $8
	`, p.Name, p.Description, p.Price, p.CategoryID, pid, purl, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func imageCols(ref *entity.ImageRef) (publicID, secureURL *string) {
	if ref == nil {
		return nil, nil
	}
	return &ref.PublicID, &ref.SecureURL
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	p := &entity.Product{}
	var pid, purl *string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID,
		&pid, &purl, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if pid != nil && purl != nil {
		p.Image = &entity.ImageRef{PublicID: *pid, SecureURL: *purl}
	}
	return p, nil
}

var _ repository.ProductRepository = (*ProductRepository)(nil)
