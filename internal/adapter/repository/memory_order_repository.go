package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/pkg/errors"
)

type memoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]entity.Order
	// seq keeps insertion order so listings stay stable when timestamps tie.
	seq []string
}

func NewMemoryOrderRepository() repository.OrderRepository {
	return &memoryOrderRepository{orders: make(map[string]entity.Order)}
}

func (r *memoryOrderRepository) Create(ctx context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.IdempotencyKey != "" {
		for _, o := range r.orders {
			if o.BuyerID == order.BuyerID && o.IdempotencyKey == order.IdempotencyKey {
				return errors.Conflict("Order with this idempotency key already exists")
			}
		}
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.orders[order.ID] = *order
	r.seq = append(r.seq, order.ID)
	return nil
}

func (r *memoryOrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, errors.NotFound("Order", nil)
	}
	return &o, nil
}

func (r *memoryOrderRepository) GetByIdempotencyKey(ctx context.Context, buyerID, key string) (*entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.BuyerID == buyerID && o.IdempotencyKey == key {
			o := o
			return &o, nil
		}
	}
	return nil, errors.NotFound("Order", nil)
}

func (r *memoryOrderRepository) UpdateStatus(ctx context.Context, id, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return errors.NotFound("Order", nil)
	}
	if o.Status != from {
		return errOrderStatusChanged()
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	r.orders[id] = o
	return nil
}

// newestFirst returns orders matching keep, most recent first.
func (r *memoryOrderRepository) newestFirst(keep func(entity.Order) bool) []*entity.Order {
	var out []*entity.Order
	for i := len(r.seq) - 1; i >= 0; i-- {
		o := r.orders[r.seq[i]]
		if keep(o) {
			out = append(out, &o)
		}
	}
	return out
}

func (r *memoryOrderRepository) ListByBuyer(ctx context.Context, buyerID, status string, limit, offset int) ([]*entity.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.newestFirst(func(o entity.Order) bool {
		return o.BuyerID == buyerID && (status == "" || o.Status == status)
	})
	return paginate(all, limit, offset), int64(len(all)), nil
}

func (r *memoryOrderRepository) ListBySeller(ctx context.Context, sellerID, status string, limit, offset int) ([]*entity.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.newestFirst(func(o entity.Order) bool {
		return o.SellerID == sellerID && (status == "" || o.Status == status)
	})
	return paginate(all, limit, offset), int64(len(all)), nil
}

func (r *memoryOrderRepository) List(ctx context.Context, limit, offset int) ([]*entity.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.newestFirst(func(entity.Order) bool { return true })
	return paginate(all, limit, offset), int64(len(all)), nil
}

func (r *memoryOrderRepository) HasCompletedOrder(ctx context.Context, buyerID, productID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.BuyerID == buyerID && o.ProductID == productID && o.Status == entity.OrderStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryOrderRepository) totals(keep func(entity.Order) bool) *entity.OrderTotals {
	t := &entity.OrderTotals{TotalAmount: decimal.Zero, CompletedAmount: decimal.Zero, Commission: decimal.Zero}
	for _, o := range r.orders {
		if !keep(o) {
			continue
		}
		t.Count++
		t.TotalAmount = t.TotalAmount.Add(o.Amount)
		switch o.Status {
		case entity.OrderStatusCompleted:
			t.CompletedCount++
			t.CompletedAmount = t.CompletedAmount.Add(o.Amount)
			t.Commission = t.Commission.Add(o.Commission)
		case entity.OrderStatusPending:
			t.PendingCount++
		}
	}
	return t
}

func (r *memoryOrderRepository) TotalsBySeller(ctx context.Context, sellerID string) (*entity.OrderTotals, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.totals(func(o entity.Order) bool { return o.SellerID == sellerID }), nil
}

func (r *memoryOrderRepository) TotalsByBuyer(ctx context.Context, buyerID string) (*entity.OrderTotals, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.totals(func(o entity.Order) bool { return o.BuyerID == buyerID }), nil
}

func (r *memoryOrderRepository) Totals(ctx context.Context) (*entity.OrderTotals, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.totals(func(entity.Order) bool { return true }), nil
}

func (r *memoryOrderRepository) TopSellers(ctx context.Context, limit int) ([]*entity.SellerRanking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bySeller := make(map[string]*entity.SellerRanking)
	for _, o := range r.orders {
		if o.Status != entity.OrderStatusCompleted {
			continue
		}
		rank, ok := bySeller[o.SellerID]
		if !ok {
			rank = &entity.SellerRanking{SellerID: o.SellerID, Revenue: decimal.Zero, Commission: decimal.Zero}
			bySeller[o.SellerID] = rank
		}
		rank.CompletedSales++
		rank.Revenue = rank.Revenue.Add(o.Amount)
		rank.Commission = rank.Commission.Add(o.Commission)
	}

	out := make([]*entity.SellerRanking, 0, len(bySeller))
	for _, rank := range bySeller {
		out = append(out, rank)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].SellerID < out[j].SellerID
		}
		return out[i].Revenue.GreaterThan(out[j].Revenue)
	})
	return paginate(out, limit, 0), nil
}
