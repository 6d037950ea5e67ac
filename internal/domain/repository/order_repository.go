package repository

import (
	"context"

	"planmarket/internal/domain/entity"
)

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetByIdempotencyKey(ctx context.Context, buyerID, key string) (*entity.Order, error)
	// UpdateStatus applies the change only while the order is still in from.
	// It returns Conflict when the status moved in the meantime.
	UpdateStatus(ctx context.Context, id, from, to string) error

	ListByBuyer(ctx context.Context, buyerID, status string, limit, offset int) ([]*entity.Order, int64, error)
	ListBySeller(ctx context.Context, sellerID, status string, limit, offset int) ([]*entity.Order, int64, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Order, int64, error)

	HasCompletedOrder(ctx context.Context, buyerID, productID string) (bool, error)

	// Aggregates are computed by the store, not by loading every row.
	TotalsBySeller(ctx context.Context, sellerID string) (*entity.OrderTotals, error)
	TotalsByBuyer(ctx context.Context, buyerID string) (*entity.OrderTotals, error)
	Totals(ctx context.Context) (*entity.OrderTotals, error)
	TopSellers(ctx context.Context, limit int) ([]*entity.SellerRanking, error)
}
