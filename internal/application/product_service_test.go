package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
)

type memProductRepo struct {
	seq      int
	products map[string]*entity.Product
	failNext error
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: map[string]*entity.Product{}}
}

func (r *memProductRepo) takeErr() error {
	err := r.failNext
	r.failNext = nil
	return err
}

func (r *memProductRepo) Create(_ context.Context, p *entity.Product) error {
	if err := r.takeErr(); err != nil {
		return err
	}
	r.seq++
	p.ID = fmt.Sprintf("prod-%d", r.seq)
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) GetAll(_ context.Context) ([]entity.Product, error) {
	out := make([]entity.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memProductRepo) Update(_ context.Context, p *entity.Product) error {
	if err := r.takeErr(); err != nil {
		return err
	}
	if _, ok := r.products[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

type memCategoryRepo struct {
	categories map[string]*entity.Category
	createErr  error
}

func newMemCategoryRepo(ids ...string) *memCategoryRepo {
	r := &memCategoryRepo{categories: map[string]*entity.Category{}}
	for _, id := range ids {
		r.categories[id] = &entity.Category{ID: id, CategoryName: "cat " + id}
	}
	return r
}

func (r *memCategoryRepo) Create(_ context.Context, c *entity.Category) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.categories[c.ID] = c
	return nil
}

func (r *memCategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (r *memCategoryRepo) GetByName(_ context.Context, name string) (*entity.Category, error) {
	for _, c := range r.categories {
		if c.CategoryName == name {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memCategoryRepo) GetAll(_ context.Context) ([]entity.Category, error) {
	out := make([]entity.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (r *memCategoryRepo) Update(_ context.Context, c *entity.Category) error {
	if _, ok := r.categories[c.ID]; !ok {
		return repository.ErrNotFound
	}
	r.categories[c.ID] = c
	return nil
}

func (r *memCategoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

// fakeImageStore tracks which blobs are live host-side so tests can assert
// the exactly-one-live-reference property.
type fakeImageStore struct {
	seq         int
	live        map[string]bool
	uploads     []string
	destroys    []string
	failUpload  error
	failDestroy error
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{live: map[string]bool{}}
}

func (s *fakeImageStore) Upload(_ context.Context, r io.Reader, filename, _ string) (*entity.ImageRef, error) {
	if s.failUpload != nil {
		return nil, s.failUpload
	}
	// drain the reader like a real host would
	_, _ = io.Copy(io.Discard, r)
	s.seq++
	id := fmt.Sprintf("e-commerce/img-%d-%s", s.seq, filename)
	s.live[id] = true
	s.uploads = append(s.uploads, id)
	return &entity.ImageRef{PublicID: id, SecureURL: "https://img.example.com/" + id}, nil
}

func (s *fakeImageStore) Destroy(_ context.Context, publicID string) error {
	s.destroys = append(s.destroys, publicID)
	if s.failDestroy != nil {
		return s.failDestroy
	}
	delete(s.live, publicID)
	return nil
}

func (s *fakeImageStore) liveCount() int { return len(s.live) }

func newProductFixture(categoryIDs ...string) (*ProductService, *memProductRepo, *fakeImageStore) {
	repo := newMemProductRepo()
	images := newFakeImageStore()
	svc := NewProductService(repo, newMemCategoryRepo(categoryIDs...), images, nil, nil, "")
	return svc, repo, images
}

func upload(name string) *ImageUpload {
	return &ImageUpload{Reader: strings.NewReader("fake image bytes"), Filename: name, ContentType: "image/png"}
}

func TestProductCreateAttachesLiveImage(t *testing.T) {
	svc, repo, images := newProductFixture("cat-1")

	p, err := svc.Create(context.Background(), CreateProductInput{
		Name:        "Laptop",
		Description: "Thin and light",
		Price:       999.99,
		CategoryID:  "cat-1",
	}, upload("laptop.png"))
	require.NoError(t, err)
	require.NotNil(t, p.Image)

	assert.NotEmpty(t, p.ID)
	assert.True(t, images.live[p.Image.PublicID], "stored reference must point at a live blob")
	assert.Equal(t, 1, images.liveCount())
	assert.Contains(t, p.Image.SecureURL, p.Image.PublicID)

	stored, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Image.PublicID, stored.Image.PublicID)
}

func TestProductCreateWithoutImage(t *testing.T) {
	svc, repo, images := newProductFixture("cat-1")

	_, err := svc.Create(context.Background(), CreateProductInput{Name: "Laptop", CategoryID: "cat-1"}, nil)
	assert.ErrorIs(t, err, ErrImageRequired)
	assert.Empty(t, repo.products)
	assert.Empty(t, images.uploads)
}

func TestProductCreateWithoutCategory(t *testing.T) {
	svc, repo, images := newProductFixture("cat-1")

	_, err := svc.Create(context.Background(), CreateProductInput{Name: "Laptop"}, upload("laptop.png"))
	assert.ErrorIs(t, err, ErrCategoryRequired)
	assert.Empty(t, repo.products)
	assert.Empty(t, images.uploads, "validation failures must not reach the image host")
}

func TestProductCreateUnknownCategoryFailsBeforeUpload(t *testing.T) {
	svc, repo, images := newProductFixture("cat-1")

	_, err := svc.Create(context.Background(), CreateProductInput{Name: "Laptop", CategoryID: "nope"}, upload("laptop.png"))
	assert.ErrorIs(t, err, ErrCategoryUnknown)
	assert.Empty(t, repo.products)
	assert.Empty(t, images.uploads)
}

func TestProductCreateUploadFailure(t *testing.T) {
	svc, repo, images := newProductFixture("cat-1")
	images.failUpload = errors.New("host unavailable")

	_, err := svc.Create(context.Background(), CreateProductInput{Name: "Laptop", CategoryID: "cat-1"}, upload("laptop.png"))
	require.Error(t, err)
	assert.Empty(t, repo.products, "nothing persisted when the upload fails")
	assert.Equal(t, 0, images.liveCount())
}

func TestProductCreatePersistFailureDestroysUpload(t *testing.T) {
	svc, repo, images := newProductFixture("cat-1")
	repo.failNext = errors.New("db down")

	_, err := svc.Create(context.Background(), CreateProductInput{Name: "Laptop", CategoryID: "cat-1"}, upload("laptop.png"))
	require.Error(t, err)
	assert.Len(t, images.uploads, 1)
	assert.Equal(t, 0, images.liveCount(), "fresh upload must be destroyed when persist fails")
	assert.Empty(t, repo.products)
}

func TestProductUpdateReplacesImage(t *testing.T) {
	svc, repo, images := newProductFixture("cat-1")

	p, err := svc.Create(context.Background(), CreateProductInput{Name: "Laptop", CategoryID: "cat-1"}, upload("old.png"))
	require.NoError(t, err)
	oldID := p.Image.PublicID

	updated, err := svc.Update(context.Background(), p.ID, UpdateProductInput{Name: "Laptop Pro"}, upload("new.png"))
	require.NoError(t, err)

	assert.Equal(t, "Laptop Pro", updated.Name)
	assert.NotEqual(t, oldID, updated.Image.PublicID)
	assert.False(t, images.live[oldID], "old blob must be garbage collected")
	assert.True(t, images.live[updated.Image.PublicID])
	assert.Equal(t, 1, images.liveCount(), "exactly one live blob after a replace")

	stored, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Image.PublicID, stored.Image.PublicID)
}

func TestProductUpdateWithoutImageKeepsReference(t *testing.T) {
	svc, repo, images := newProductFixture("cat-1")

	p, err := svc.Create(context.Background(), CreateProductInput{Name: "Laptop", Price: 100, CategoryID: "cat-1"}, upload("img.png"))
	require.NoError(t, err)

	price := 149.5
	updated, err := svc.Update(context.Background(), p.ID, UpdateProductInput{Price: &price}, nil)
	require.NoError(t, err)

	assert.Equal(t, 149.5, updated.Price)
	assert.Equal(t, p.Image.PublicID, updated.Image.PublicID)
	assert.Empty(t, images.destroys)
	assert.Equal(t, 1, images.liveCount())

	stored, _ := repo.GetByID(context.Background(), p.ID)
	assert.Equal(t, "Laptop", stored.Name, "omitted fields stay untouched")
}

func TestProductUpdateUploadFailureLeavesOldImage(t *testing.T) {
	svc, repo, images := newProductFixture("cat-1")

	p, err := svc.Create(context.Background(), CreateProductInput{Name: "Laptop", CategoryID: "cat-1"}, upload("old.png"))
	require.NoError(t, err)
	oldID := p.Image.PublicID

	images.failUpload = errors.New("host unavailable")
	_, err = svc.Update(context.Background(), p.ID, UpdateProductInput{Name: "Broken"}, upload("new.png"))
	require.Error(t, err)

	assert.True(t, images.live[oldID], "old blob survives a failed replacement upload")
	stored, _ := repo.GetByID(context.Background(), p.ID)
	assert.Equal(t, "Laptop", stored.Name, "record untouched when the upload fails")
	assert.Equal(t, oldID, stored.Image.PublicID)
}

func TestProductUpdatePersistFailureDestroysNewUpload(t *testing.T) {
	svc, repo, images := newProductFixture("cat-1")

	p, err := svc.Create(context.Background(), CreateProductInput{Name: "Laptop", CategoryID: "cat-1"}, upload("old.png"))
	require.NoError(t, err)
	oldID := p.Image.PublicID

	repo.failNext = errors.New("db down")
	_, err = svc.Update(context.Background(), p.ID, UpdateProductInput{}, upload("new.png"))
	require.Error(t, err)

	assert.True(t, images.live[oldID], "old blob stays live when the record write fails")
	assert.Equal(t, 1, images.liveCount(), "the abandoned new upload must be destroyed")
	stored, _ := repo.GetByID(context.Background(), p.ID)
	assert.Equal(t, oldID, stored.Image.PublicID)
}

func TestProductUpdateUnknownCategory(t *testing.T) {
	svc, _, images := newProductFixture("cat-1")

	p, err := svc.Create(context.Background(), CreateProductInput{Name: "Laptop", CategoryID: "cat-1"}, upload("img.png"))
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), p.ID, UpdateProductInput{CategoryID: "nope"}, upload("new.png"))
	assert.ErrorIs(t, err, ErrCategoryUnknown)
	assert.Len(t, images.uploads, 1, "category check runs before any new upload")
}

func TestProductUpdateNotFound(t *testing.T) {
	svc, _, _ := newProductFixture("cat-1")

	_, err := svc.Update(context.Background(), "missing", UpdateProductInput{Name: "x"}, nil)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductDeleteRemovesRecordAndImage(t *testing.T) {
	svc, repo, images := newProductFixture("cat-1")

	p, err := svc.Create(context.Background(), CreateProductInput{Name: "Laptop", CategoryID: "cat-1"}, upload("img.png"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), p.ID))
	assert.Empty(t, repo.products)
	assert.Equal(t, 0, images.liveCount())

	assert.ErrorIs(t, svc.Delete(context.Background(), p.ID), ErrProductNotFound)
}

func TestProductDeleteSurvivesImageHostFailure(t *testing.T) {
	svc, repo, images := newProductFixture("cat-1")

	p, err := svc.Create(context.Background(), CreateProductInput{Name: "Laptop", CategoryID: "cat-1"}, upload("img.png"))
	require.NoError(t, err)

	images.failDestroy = errors.New("host unavailable")
	require.NoError(t, svc.Delete(context.Background(), p.ID), "a destroy failure never blocks record deletion")
	assert.Empty(t, repo.products)
}

// Walks a product through create, two image replacements and a delete,
// asserting after every step that the host holds exactly one live blob
// and that the record points at it.
func TestProductImageLifecycle(t *testing.T) {
	svc, repo, images := newProductFixture("cat-1")
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateProductInput{Name: "Camera", Price: 250, CategoryID: "cat-1"}, upload("v1.png"))
	require.NoError(t, err)

	for i, name := range []string{"v2.png", "v3.png"} {
		p, err = svc.Update(ctx, p.ID, UpdateProductInput{}, upload(name))
		require.NoError(t, err, "replacement %d", i+1)
		require.Equal(t, 1, images.liveCount())
		require.True(t, images.live[p.Image.PublicID])

		stored, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		require.Equal(t, p.Image.PublicID, stored.Image.PublicID)
	}

	require.NoError(t, svc.Delete(ctx, p.ID))
	assert.Equal(t, 0, images.liveCount(), "no orphaned blobs after the full lifecycle")
	assert.Equal(t, 3, len(images.uploads))
}

func TestProductGetAll(t *testing.T) {
	svc, _, _ := newProductFixture("cat-1")
	ctx := context.Background()

	for _, name := range []string{"A", "B"} {
		_, err := svc.Create(ctx, CreateProductInput{Name: name, CategoryID: "cat-1"}, upload(name+".png"))
		require.NoError(t, err)
	}

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
