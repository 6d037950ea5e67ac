package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planmarket/internal/domain/entity"
	"planmarket/pkg/errors"
)

var orderRowColumns = []string{"id", "buyer_id", "seller_id", "product_id", "amount", "commission", "status",
	"idempotency_key", "created_at", "updated_at"}

func newOrderRepo(t *testing.T) (*postgresOrderRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &postgresOrderRepository{db: db}, mock
}

func TestPostgresOrderCreate(t *testing.T) {
	repo, mock := newOrderRepo(t)

	order := &entity.Order{
		BuyerID:    "buyer-1",
		SellerID:   "seller-1",
		ProductID:  "product-1",
		Amount:     decimal.RequireFromString("5.00"),
		Commission: decimal.RequireFromString("0.50"),
		Status:     entity.OrderStatusPending,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WithArgs(sqlmock.AnyArg(), "buyer-1", "seller-1", "product-1", sqlmock.AnyArg(), sqlmock.AnyArg(),
			entity.OrderStatusPending, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), order))
	assert.NotEmpty(t, order.ID)
	assert.False(t, order.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOrderCreateDuplicateKey(t *testing.T) {
	repo, mock := newOrderRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &entity.Order{BuyerID: "b", IdempotencyKey: "k"})
	assert.True(t, errors.Is(err, errors.CodeConflict))
}

func TestPostgresOrderGetByIDMissing(t *testing.T) {
	repo, mock := newOrderRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(orderRowColumns))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestPostgresOrderUpdateStatusMissing(t *testing.T) {
	repo, mock := newOrderRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2")).
		WithArgs("missing", entity.OrderStatusPending, entity.OrderStatusCompleted, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := repo.UpdateStatus(context.Background(), "missing", entity.OrderStatusPending, entity.OrderStatusCompleted)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOrderUpdateStatusStale(t *testing.T) {
	repo, mock := newOrderRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status = $2")).
		WithArgs("o1", entity.OrderStatusPending, entity.OrderStatusCanceled, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := repo.UpdateStatus(context.Background(), "o1", entity.OrderStatusPending, entity.OrderStatusCanceled)
	assert.True(t, errors.Is(err, errors.CodeConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOrderUpdateStatusApplied(t *testing.T) {
	repo, mock := newOrderRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status = $2")).
		WithArgs("o1", entity.OrderStatusPending, entity.OrderStatusCompleted, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "o1", entity.OrderStatusPending, entity.OrderStatusCompleted))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOrderListBySeller(t *testing.T) {
	repo, mock := newOrderRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM orders WHERE seller_id = $1")).
		WithArgs("seller-1", "").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id LIMIT $3 OFFSET $4")).
		WithArgs("seller-1", "", 20, 0).
		WillReturnRows(sqlmock.NewRows(orderRowColumns).
			AddRow("o2", "b", "seller-1", "p", "7.50", "0.75", "pending", "", fixedTime, fixedTime).
			AddRow("o1", "b", "seller-1", "p", "5.00", "0.50", "completed", "", fixedTime, fixedTime))

	orders, total, err := repo.ListBySeller(context.Background(), "seller-1", "", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, orders, 2)
	assert.Equal(t, "o2", orders[0].ID)
	assert.True(t, decimal.RequireFromString("7.50").Equal(orders[0].Amount))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOrderTotalsBySeller(t *testing.T) {
	repo, mock := newOrderRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE seller_id = $1")).
		WithArgs("seller-1").
		WillReturnRows(sqlmock.NewRows([]string{"count", "completed", "pending", "total", "completed_total", "commission"}).
			AddRow(3, 1, 2, "15.00", "5.00", "0.50"))

	totals, err := repo.TotalsBySeller(context.Background(), "seller-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), totals.Count)
	assert.Equal(t, int64(1), totals.CompletedCount)
	assert.Equal(t, int64(2), totals.PendingCount)
	assert.True(t, decimal.RequireFromString("15").Equal(totals.TotalAmount))
	assert.True(t, decimal.RequireFromString("5").Equal(totals.CompletedAmount))
	assert.True(t, decimal.RequireFromString("0.5").Equal(totals.Commission))
}

func TestPostgresOrderHasCompletedOrder(t *testing.T) {
	repo, mock := newOrderRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("buyer-1", "product-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasCompletedOrder(context.Background(), "buyer-1", "product-1")
	require.NoError(t, err)
	assert.True(t, ok)
}
