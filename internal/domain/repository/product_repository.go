package repository

import (
	"context"

	"planmarket/internal/domain/entity"
)

// Sort fields accepted by ProductRepository.List.
const (
	SortCreatedAt = "created_at"
	SortPrice     = "price"
	SortDownloads = "downloads"
	SortRating    = "rating"
	SortTitle     = "title"
)

type Sort struct {
	Field string
	Desc  bool
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, filter entity.ProductFilter, sort Sort, limit, offset int) ([]*entity.Product, int64, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
	// IncrementDownloads must be atomic in the store.
	IncrementDownloads(ctx context.Context, id string) error
	UpdateRating(ctx context.Context, id string, rating float64, reviewsCount int) error
	Totals(ctx context.Context) (products int64, downloads int64, err error)
}

type CategoryRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	List(ctx context.Context) ([]*entity.Category, error)
}
