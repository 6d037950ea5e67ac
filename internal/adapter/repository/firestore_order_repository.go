package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/pkg/errors"
)

type orderDoc struct {
	ID             string    `firestore:"id"`
	BuyerID        string    `firestore:"buyerId"`
	SellerID       string    `firestore:"sellerId"`
	ProductID      string    `firestore:"productId"`
	Amount         float64   `firestore:"amount"`
	Commission     float64   `firestore:"commission"`
	Status         string    `firestore:"status"`
	IdempotencyKey string    `firestore:"idempotencyKey,omitempty"`
	CreatedAt      time.Time `firestore:"createdAt"`
	UpdatedAt      time.Time `firestore:"updatedAt"`
}

func toOrderDoc(o *entity.Order) *orderDoc {
	return &orderDoc{
		ID:             o.ID,
		BuyerID:        o.BuyerID,
		SellerID:       o.SellerID,
		ProductID:      o.ProductID,
		Amount:         moneyFloat(o.Amount),
		Commission:     moneyFloat(o.Commission),
		Status:         o.Status,
		IdempotencyKey: o.IdempotencyKey,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func (d *orderDoc) toEntity() *entity.Order {
	return &entity.Order{
		ID:             d.ID,
		BuyerID:        d.BuyerID,
		SellerID:       d.SellerID,
		ProductID:      d.ProductID,
		Amount:         money(d.Amount),
		Commission:     money(d.Commission),
		Status:         d.Status,
		IdempotencyKey: d.IdempotencyKey,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type firestoreOrderRepository struct {
	client *firestore.Client
}

func NewFirestoreOrderRepository(client *firestore.Client) repository.OrderRepository {
	return &firestoreOrderRepository{client: client}
}

func (r *firestoreOrderRepository) col() *firestore.CollectionRef {
	return r.client.Collection(collectionOrders)
}

// Orders placed with an idempotency key get a document ID derived from
// (buyer, key), so a replay collides on Create.
func (r *firestoreOrderRepository) Create(ctx context.Context, order *entity.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
		if order.IdempotencyKey != "" {
			order.ID = deterministicID("order", order.BuyerID, order.IdempotencyKey)
		}
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	if _, err := r.col().Doc(order.ID).Create(ctx, toOrderDoc(order)); err != nil {
		if isAlreadyExists(err) {
			return errors.Conflict("Order with this idempotency key already exists")
		}
		return errors.Internal("Failed to create order", err)
	}
	return nil
}

func (r *firestoreOrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		return nil, fsGetError(err, "Order", "Failed to get order")
	}
	var doc orderDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, errors.Internal("Failed to parse order data", err)
	}
	return doc.toEntity(), nil
}

func (r *firestoreOrderRepository) GetByIdempotencyKey(ctx context.Context, buyerID, key string) (*entity.Order, error) {
	return r.GetByID(ctx, deterministicID("order", buyerID, key))
}

func (r *firestoreOrderRepository) UpdateStatus(ctx context.Context, id, from, to string) error {
	ref := r.col().Doc(id)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return fsGetError(err, "Order", "Failed to get order")
		}
		current, err := snap.DataAt("status")
		if err != nil {
			return errors.Internal("Failed to parse order data", err)
		}
		if current != from {
			return errOrderStatusChanged()
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: to},
			{Path: "updatedAt", Value: time.Now().UTC()},
		})
	})
	if err != nil {
		if _, ok := errors.As(err); ok {
			return err
		}
		return errors.Internal("Failed to update order status", err)
	}
	return nil
}

func (r *firestoreOrderRepository) list(ctx context.Context, query firestore.Query, limit, offset int) ([]*entity.Order, int64, error) {
	total, err := countQuery(ctx, query)
	if err != nil {
		return nil, 0, errors.Internal("Failed to count orders", err)
	}

	query = query.OrderBy("createdAt", firestore.Desc)
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	docs, err := collect[orderDoc](query.Documents(ctx), "orders")
	if err != nil {
		return nil, 0, err
	}
	orders := make([]*entity.Order, 0, len(docs))
	for _, d := range docs {
		orders = append(orders, d.toEntity())
	}
	return orders, total, nil
}

func (r *firestoreOrderRepository) ListByBuyer(ctx context.Context, buyerID, status string, limit, offset int) ([]*entity.Order, int64, error) {
	query := r.col().Where("buyerId", "==", buyerID)
	if status != "" {
		query = query.Where("status", "==", status)
	}
	return r.list(ctx, query, limit, offset)
}

func (r *firestoreOrderRepository) ListBySeller(ctx context.Context, sellerID, status string, limit, offset int) ([]*entity.Order, int64, error) {
	query := r.col().Where("sellerId", "==", sellerID)
	if status != "" {
		query = query.Where("status", "==", status)
	}
	return r.list(ctx, query, limit, offset)
}

func (r *firestoreOrderRepository) List(ctx context.Context, limit, offset int) ([]*entity.Order, int64, error) {
	return r.list(ctx, r.col().Query, limit, offset)
}

func (r *firestoreOrderRepository) HasCompletedOrder(ctx context.Context, buyerID, productID string) (bool, error) {
	n, err := countQuery(ctx, r.col().
		Where("buyerId", "==", buyerID).
		Where("productId", "==", productID).
		Where("status", "==", entity.OrderStatusCompleted).
		Limit(1))
	if err != nil {
		return false, errors.Internal("Failed to check purchase", err)
	}
	return n > 0, nil
}

func (r *firestoreOrderRepository) totals(ctx context.Context, query firestore.Query) (*entity.OrderTotals, error) {
	docs, err := collect[orderDoc](query.Select("amount", "commission", "status").Documents(ctx), "orders")
	if err != nil {
		return nil, err
	}

	t := &entity.OrderTotals{TotalAmount: decimal.Zero, CompletedAmount: decimal.Zero, Commission: decimal.Zero}
	for _, d := range docs {
		amount := money(d.Amount)
		t.Count++
		t.TotalAmount = t.TotalAmount.Add(amount)
		switch d.Status {
		case entity.OrderStatusCompleted:
			t.CompletedCount++
			t.CompletedAmount = t.CompletedAmount.Add(amount)
			t.Commission = t.Commission.Add(money(d.Commission))
		case entity.OrderStatusPending:
			t.PendingCount++
		}
	}
	return t, nil
}

func (r *firestoreOrderRepository) TotalsBySeller(ctx context.Context, sellerID string) (*entity.OrderTotals, error) {
	return r.totals(ctx, r.col().Where("sellerId", "==", sellerID))
}

func (r *firestoreOrderRepository) TotalsByBuyer(ctx context.Context, buyerID string) (*entity.OrderTotals, error) {
	return r.totals(ctx, r.col().Where("buyerId", "==", buyerID))
}

func (r *firestoreOrderRepository) Totals(ctx context.Context) (*entity.OrderTotals, error) {
	return r.totals(ctx, r.col().Query)
}

func (r *firestoreOrderRepository) TopSellers(ctx context.Context, limit int) ([]*entity.SellerRanking, error) {
	docs, err := collect[orderDoc](r.col().Where("status", "==", entity.OrderStatusCompleted).Documents(ctx), "orders")
	if err != nil {
		return nil, err
	}

	bySeller := make(map[string]*entity.SellerRanking)
	for _, d := range docs {
		rank, ok := bySeller[d.SellerID]
		if !ok {
			rank = &entity.SellerRanking{SellerID: d.SellerID, Revenue: decimal.Zero, Commission: decimal.Zero}
			bySeller[d.SellerID] = rank
		}
		rank.CompletedSales++
		rank.Revenue = rank.Revenue.Add(money(d.Amount))
		rank.Commission = rank.Commission.Add(money(d.Commission))
	}

	rankings := make([]*entity.SellerRanking, 0, len(bySeller))
	for _, rank := range bySeller {
		rankings = append(rankings, rank)
	}
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].Revenue.Equal(rankings[j].Revenue) {
			return rankings[i].SellerID < rankings[j].SellerID
		}
		return rankings[i].Revenue.GreaterThan(rankings[j].Revenue)
	})
	return paginate(rankings, limit, 0), nil
}
