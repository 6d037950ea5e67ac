package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/pkg/errors"
)

// paginate slices items to the requested window. A non-positive limit
// returns everything after offset.
func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	if offset < 0 {
		offset = 0
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

type memoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]entity.Product
}

// NewMemoryProductRepository returns an in-process product store for tests and
// local development.
func NewMemoryProductRepository() repository.ProductRepository {
	return &memoryProductRepository{products: make(map[string]entity.Product)}
}

func cloneProduct(p entity.Product) *entity.Product {
	p.Images = append([]string(nil), p.Images...)
	p.Files = append([]string(nil), p.Files...)
	return &p
}

func (r *memoryProductRepository) Create(ctx context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	r.products[product.ID] = *cloneProduct(*product)
	return nil
}

func (r *memoryProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, errors.NotFound("Product", nil)
	}
	return cloneProduct(p), nil
}

func (r *memoryProductRepository) List(ctx context.Context, filter entity.ProductFilter, s repository.Sort, limit, offset int) ([]*entity.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	var matched []*entity.Product
	for _, p := range r.products {
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		if filter.SellerID != "" && p.SellerID != filter.SellerID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Featured != nil && p.Featured != *filter.Featured {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Title), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		matched = append(matched, cloneProduct(p))
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if s.Desc {
			return productLess(matched[j], matched[i], s.Field)
		}
		return productLess(matched[i], matched[j], s.Field)
	})

	return paginate(matched, limit, offset), int64(len(matched)), nil
}

func productLess(a, b *entity.Product, field string) bool {
	switch field {
	case repository.SortPrice:
		return a.Price.LessThan(b.Price)
	case repository.SortDownloads:
		return a.Downloads < b.Downloads
	case repository.SortRating:
		return a.Rating < b.Rating
	case repository.SortTitle:
		return a.Title < b.Title
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

// Update writes the editable fields. Counters and CreatedAt stay as stored,
// and are copied back into product.
func (r *memoryProductRepository) Update(ctx context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[product.ID]
	if !ok {
		return errors.NotFound("Product", nil)
	}
	product.Downloads = stored.Downloads
	product.Rating = stored.Rating
	product.ReviewsCount = stored.ReviewsCount
	product.CreatedAt = stored.CreatedAt
	product.UpdatedAt = time.Now().UTC()
	r.products[product.ID] = *cloneProduct(*product)
	return nil
}

func (r *memoryProductRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return errors.NotFound("Product", nil)
	}
	delete(r.products, id)
	return nil
}

func (r *memoryProductRepository) IncrementDownloads(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return errors.NotFound("Product", nil)
	}
	p.Downloads++
	r.products[id] = p
	return nil
}

func (r *memoryProductRepository) UpdateRating(ctx context.Context, id string, rating float64, reviewsCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return errors.NotFound("Product", nil)
	}
	p.Rating = rating
	p.ReviewsCount = reviewsCount
	r.products[id] = p
	return nil
}

func (r *memoryProductRepository) Totals(ctx context.Context) (int64, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var downloads int64
	for _, p := range r.products {
		downloads += p.Downloads
	}
	return int64(len(r.products)), downloads, nil
}

type memoryCategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]entity.Category
}

// NewMemoryCategoryRepository returns a category store seeded with categories.
func NewMemoryCategoryRepository(categories ...*entity.Category) repository.CategoryRepository {
	r := &memoryCategoryRepository{categories: make(map[string]entity.Category)}
	for _, c := range categories {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		r.categories[c.ID] = *c
	}
	return r
}

func (r *memoryCategoryRepository) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok {
		return nil, errors.NotFound("Category", nil)
	}
	return &c, nil
}

func (r *memoryCategoryRepository) List(ctx context.Context) ([]*entity.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Category, 0, len(r.categories))
	for _, c := range r.categories {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
