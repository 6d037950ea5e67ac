package repository

import (
	"context"

	"planmarket/internal/domain/entity"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	GetByBuyerAndProduct(ctx context.Context, buyerID, productID string) (*entity.Review, error)
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, id string) error

	// ListByProduct accepts SortCreatedAt and SortRating.
	ListByProduct(ctx context.Context, productID string, sort Sort, limit, offset int) ([]*entity.Review, int64, error)
	// ListByBuyer is newest first.
	ListByBuyer(ctx context.Context, buyerID string, limit, offset int) ([]*entity.Review, int64, error)
	Summary(ctx context.Context, productID string) (*entity.ReviewSummary, error)
}
