package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/pkg/errors"
)

const orderColumns = `id, buyer_id, seller_id, product_id, amount, commission, status,
	COALESCE(idempotency_key, ''), created_at, updated_at`

const orderTotalsSelect = `
	SELECT COUNT(*),
		COUNT(*) FILTER (WHERE status = 'completed'),
		COUNT(*) FILTER (WHERE status = 'pending'),
		COALESCE(SUM(amount), 0),
		COALESCE(SUM(amount) FILTER (WHERE status = 'completed'), 0),
		COALESCE(SUM(commission) FILTER (WHERE status = 'completed'), 0)
	FROM orders`

type postgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(db *sql.DB) repository.OrderRepository {
	return &postgresOrderRepository{db: db}
}

func scanOrder(row rowScanner) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(&o.ID, &o.BuyerID, &o.SellerID, &o.ProductID, &o.Amount, &o.Commission, &o.Status,
		&o.IdempotencyKey, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresOrderRepository) Create(ctx context.Context, order *entity.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (id, buyer_id, seller_id, product_id, amount, commission, status, idempotency_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, order.ID, order.BuyerID, order.SellerID, order.ProductID, order.Amount, order.Commission,
		order.Status, nullIfEmpty(order.IdempotencyKey), order.CreatedAt, order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Conflict("Order with this idempotency key already exists")
		}
		return errors.Internal("Failed to create order", err)
	}
	return nil
}

func (r *postgresOrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "Order", "Failed to get order")
	}
	return o, nil
}

func (r *postgresOrderRepository) GetByIdempotencyKey(ctx context.Context, buyerID, key string) (*entity.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE buyer_id = $1 AND idempotency_key = $2
	`, buyerID, key))
	if err != nil {
		return nil, notFoundOr(err, "Order", "Failed to get order")
	}
	return o, nil
}

func (r *postgresOrderRepository) UpdateStatus(ctx context.Context, id, from, to string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2
	`, id, from, to, time.Now().UTC())
	if err != nil {
		return errors.Internal("Failed to update order status", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.Internal("Failed to read affected rows", err)
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return errors.Internal("Failed to check order", err)
	}
	if !exists {
		return errors.NotFound("Order", nil)
	}
	return errOrderStatusChanged()
}

// listOrders runs a filtered page plus its count. where uses $1 and $2 for
// the principal and the optional status.
func (r *postgresOrderRepository) listOrders(ctx context.Context, where string, args []interface{}, limit, offset int) ([]*entity.Order, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.Internal("Failed to count orders", err)
	}

	n := len(args)
	args = append(args, limitArg(limit), offset)
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders`+where+
		` ORDER BY created_at DESC, id LIMIT $`+itoa(n+1)+` OFFSET $`+itoa(n+2), args...)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list orders", err)
	}
	defer rows.Close()

	orders := []*entity.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, errors.Internal("Failed to parse order data", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Internal("Failed to iterate orders", err)
	}
	return orders, total, nil
}

func (r *postgresOrderRepository) ListByBuyer(ctx context.Context, buyerID, status string, limit, offset int) ([]*entity.Order, int64, error) {
	return r.listOrders(ctx, ` WHERE buyer_id = $1 AND ($2::text = '' OR status = $2)`, []interface{}{buyerID, status}, limit, offset)
}

func (r *postgresOrderRepository) ListBySeller(ctx context.Context, sellerID, status string, limit, offset int) ([]*entity.Order, int64, error) {
	return r.listOrders(ctx, ` WHERE seller_id = $1 AND ($2::text = '' OR status = $2)`, []interface{}{sellerID, status}, limit, offset)
}

func (r *postgresOrderRepository) List(ctx context.Context, limit, offset int) ([]*entity.Order, int64, error) {
	return r.listOrders(ctx, "", nil, limit, offset)
}

func (r *postgresOrderRepository) HasCompletedOrder(ctx context.Context, buyerID, productID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM orders WHERE buyer_id = $1 AND product_id = $2 AND status = 'completed'
		)
	`, buyerID, productID).Scan(&exists)
	if err != nil {
		return false, errors.Internal("Failed to check purchase", err)
	}
	return exists, nil
}

func (r *postgresOrderRepository) scanTotals(row *sql.Row) (*entity.OrderTotals, error) {
	var t entity.OrderTotals
	err := row.Scan(&t.Count, &t.CompletedCount, &t.PendingCount, &t.TotalAmount, &t.CompletedAmount, &t.Commission)
	if err != nil {
		return nil, errors.Internal("Failed to aggregate orders", err)
	}
	return &t, nil
}

func (r *postgresOrderRepository) TotalsBySeller(ctx context.Context, sellerID string) (*entity.OrderTotals, error) {
	return r.scanTotals(r.db.QueryRowContext(ctx, orderTotalsSelect+` WHERE seller_id = $1`, sellerID))
}

func (r *postgresOrderRepository) TotalsByBuyer(ctx context.Context, buyerID string) (*entity.OrderTotals, error) {
	return r.scanTotals(r.db.QueryRowContext(ctx, orderTotalsSelect+` WHERE buyer_id = $1`, buyerID))
}

func (r *postgresOrderRepository) Totals(ctx context.Context) (*entity.OrderTotals, error) {
	return r.scanTotals(r.db.QueryRowContext(ctx, orderTotalsSelect))
}

func (r *postgresOrderRepository) TopSellers(ctx context.Context, limit int) ([]*entity.SellerRanking, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.seller_id, COALESCE(p.full_name, ''), COUNT(*), SUM(o.amount), SUM(o.commission)
		FROM orders o
		LEFT JOIN profiles p ON p.id = o.seller_id
		WHERE o.status = 'completed'
		GROUP BY o.seller_id, p.full_name
		ORDER BY SUM(o.amount) DESC, o.seller_id
		LIMIT $1
	`, limitArg(limit))
	if err != nil {
		return nil, errors.Internal("Failed to rank sellers", err)
	}
	defer rows.Close()

	rankings := []*entity.SellerRanking{}
	for rows.Next() {
		var s entity.SellerRanking
		if err := rows.Scan(&s.SellerID, &s.FullName, &s.CompletedSales, &s.Revenue, &s.Commission); err != nil {
			return nil, errors.Internal("Failed to parse seller ranking", err)
		}
		rankings = append(rankings, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("Failed to iterate seller ranking", err)
	}
	return rankings, nil
}
