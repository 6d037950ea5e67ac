package usecase

import (
	"context"
	"fmt"
	"strings"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/internal/domain/service"
	"planmarket/internal/infrastructure/metrics"
	"planmarket/internal/infrastructure/ratelimit"
	"planmarket/pkg/errors"
	"planmarket/pkg/logger"
)

type OrderUseCase struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	profileRepo   repository.ProfileRepository
	catalog       *CatalogUseCase
	commission    service.CommissionCalculator
	notifications *NotificationUseCase
	rateLimiter   RateLimiter
	metrics       *metrics.Metrics
	relations     relations
}

func NewOrderUseCase(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	profileRepo repository.ProfileRepository,
	catalog *CatalogUseCase,
	commission service.CommissionCalculator,
	notifications *NotificationUseCase,
	rateLimiter RateLimiter,
	m *metrics.Metrics,
) *OrderUseCase {
	return &OrderUseCase{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		profileRepo:   profileRepo,
		catalog:       catalog,
		commission:    commission,
		notifications: notifications,
		rateLimiter:   rateLimiter,
		metrics:       m,
		relations:     relations{profiles: profileRepo, products: productRepo},
	}
}

type CreateOrderInput struct {
	ProductID      string
	IdempotencyKey string
}

// CreateOrder places an order at the product's current price. The second
// return value is false when an earlier order with the same idempotency key
// was returned instead.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, buyerID string, input CreateOrderInput) (*entity.Order, bool, error) {
	key := strings.TrimSpace(input.IdempotencyKey)
	if key != "" {
		existing, err := uc.orderRepo.GetByIdempotencyKey(ctx, buyerID, key)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, errors.CodeNotFound) {
			return nil, false, err
		}
	}

	if uc.rateLimiter != nil {
		if allowed, wait := uc.rateLimiter.Allow(buyerID, ratelimit.ActionCreateOrder); !allowed {
			return nil, false, errors.TooManyRequests("Too many orders. Please wait before ordering again", wait)
		}
	}

	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, false, err
	}
	if product.SellerID == buyerID {
		return nil, false, errors.BadRequest("You cannot buy your own product", nil)
	}
	if !product.IsPublished() {
		return nil, false, errors.BadRequest("Product is not available for purchase", nil)
	}

	order := &entity.Order{
		BuyerID:        buyerID,
		SellerID:       product.SellerID,
		ProductID:      product.ID,
		Amount:         product.Price,
		Commission:     uc.commission.Calculate(product.Price),
		Status:         entity.OrderStatusPending,
		IdempotencyKey: key,
	}
	if err := uc.orderRepo.Create(ctx, order); err != nil {
		// A concurrent request with the same key won the insert.
		if key != "" && errors.Is(err, errors.CodeConflict) {
			existing, getErr := uc.orderRepo.GetByIdempotencyKey(ctx, buyerID, key)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	uc.metrics.OrderCreated()
	logger.Info("Order %s created: buyer=%s seller=%s amount=%s", order.ID, buyerID, order.SellerID, order.Amount.StringFixed(2))

	uc.notifications.Notify(ctx, order.SellerID, entity.NotificationOrderCreated,
		"New order",
		fmt.Sprintf("You received an order for %q (%s)", product.Title, order.Amount.StringFixed(2)))

	return order, true, nil
}

// GetOrder returns the order to its buyer or seller. Plan download links are
// attached once the order is completed.
func (uc *OrderUseCase) GetOrder(ctx context.Context, userID, id string) (*entity.OrderDetail, error) {
	order, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != userID && order.SellerID != userID {
		return nil, errors.Forbidden("You are not a participant of this order", nil)
	}

	detail := &entity.OrderDetail{Order: order}
	product, err := uc.productRepo.GetByID(ctx, order.ProductID)
	switch {
	case err == nil:
		if order.Status == entity.OrderStatusCompleted || userID == product.SellerID {
			if err := uc.catalog.SignFiles(ctx, product); err != nil {
				return nil, err
			}
		} else {
			product.Files = nil
		}
		detail.Product = product
	case errors.Is(err, errors.CodeNotFound):
		// The product was deleted after purchase; the order stands on its snapshot.
	default:
		return nil, err
	}
	return detail, nil
}

// UpdateStatus moves an order along its lifecycle. Only the seller may do so.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, userID, id, status string) (*entity.Order, error) {
	order, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.SellerID != userID {
		return nil, errors.Forbidden("Only the seller can update this order", nil)
	}
	if !entity.IsOrderStatus(status) {
		return nil, errors.BadRequest("Unknown order status: "+status, nil)
	}
	if !order.CanTransitionTo(status) {
		return nil, errors.BadRequest(fmt.Sprintf("Cannot change order status from %s to %s", order.Status, status), nil)
	}

	if err := uc.orderRepo.UpdateStatus(ctx, id, order.Status, status); err != nil {
		return nil, err
	}
	order.Status = status

	uc.metrics.OrderTransitioned(status)
	logger.Info("Order %s moved to %s by seller %s", id, status, userID)

	uc.notifications.Notify(ctx, order.BuyerID, entity.NotificationOrderStatus,
		"Order updated",
		fmt.Sprintf("Your order %s is now %s", order.ID, status))

	return order, nil
}

// ListOrders pages the caller's purchases with product and seller names.
func (uc *OrderUseCase) ListOrders(ctx context.Context, buyerID, status string, page, limit int) ([]*entity.OrderView, int64, error) {
	if status != "" && !entity.IsOrderStatus(status) {
		return nil, 0, errors.BadRequest("Unknown order status: "+status, nil)
	}
	orders, total, err := uc.orderRepo.ListByBuyer(ctx, buyerID, status, limit, offsetFor(page, limit))
	if err != nil {
		return nil, 0, err
	}
	views, err := uc.relations.orderViews(ctx, orders, false)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// ListSales pages the caller's sales with product and buyer names. The
// summary covers every sale, not just the page.
func (uc *OrderUseCase) ListSales(ctx context.Context, sellerID, status string, page, limit int) ([]*entity.OrderView, int64, *entity.SalesSummary, error) {
	if status != "" && !entity.IsOrderStatus(status) {
		return nil, 0, nil, errors.BadRequest("Unknown order status: "+status, nil)
	}
	orders, total, err := uc.orderRepo.ListBySeller(ctx, sellerID, status, limit, offsetFor(page, limit))
	if err != nil {
		return nil, 0, nil, err
	}
	totals, err := uc.orderRepo.TotalsBySeller(ctx, sellerID)
	if err != nil {
		return nil, 0, nil, err
	}
	views, err := uc.relations.orderViews(ctx, orders, true)
	if err != nil {
		return nil, 0, nil, err
	}
	summary := &entity.SalesSummary{TotalAmount: totals.TotalAmount, TotalSales: totals.Count}
	return views, total, summary, nil
}

// Stats returns SellerStats for sellers and BuyerStats for everyone else.
func (uc *OrderUseCase) Stats(ctx context.Context, userID string) (interface{}, error) {
	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if profile.IsSeller() {
		totals, err := uc.orderRepo.TotalsBySeller(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &entity.SellerStats{
			TotalSales:     totals.Count,
			TotalRevenue:   totals.CompletedAmount,
			GrossVolume:    totals.TotalAmount,
			CompletedSales: totals.CompletedCount,
			PendingSales:   totals.PendingCount,
			Commission:     totals.Commission,
			NetEarnings:    totals.CompletedAmount.Sub(totals.Commission),
		}, nil
	}

	totals, err := uc.orderRepo.TotalsByBuyer(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &entity.BuyerStats{
		TotalOrders:     totals.Count,
		TotalSpent:      totals.TotalAmount,
		CompletedOrders: totals.CompletedCount,
		PendingOrders:   totals.PendingCount,
	}, nil
}
