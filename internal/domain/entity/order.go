package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCanceled  = "canceled"
	OrderStatusRefunded  = "refunded"
)

var orderTransitions = map[string][]string{
	OrderStatusPending:   {OrderStatusCompleted, OrderStatusCanceled},
	OrderStatusCompleted: {OrderStatusRefunded},
}

// Order records one purchase. Amount, SellerID and Commission are snapshots
// taken when the order is placed.
type Order struct {
	ID             string          `json:"id"`
	BuyerID        string          `json:"buyer_id"`
	SellerID       string          `json:"seller_id"`
	ProductID      string          `json:"product_id"`
	Amount         decimal.Decimal `json:"amount"`
	Commission     decimal.Decimal `json:"commission"`
	Status         string          `json:"status"`
	IdempotencyKey string          `json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// SellerEarnings is the amount left to the seller after commission.
func (o *Order) SellerEarnings() decimal.Decimal {
	return o.Amount.Sub(o.Commission)
}

func (o *Order) CanTransitionTo(status string) bool {
	for _, next := range orderTransitions[o.Status] {
		if next == status {
			return true
		}
	}
	return false
}

func IsOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCanceled, OrderStatusRefunded:
		return true
	}
	return false
}

// OrderDetail is an order with its product, as shown to a participant.
type OrderDetail struct {
	*Order
	Product *Product `json:"product,omitempty"`
}

// OrderView is a listed order with its product and the other party resolved.
// Buyers see Seller, sellers see Buyer.
type OrderView struct {
	*Order
	Product *ProductSummary `json:"product,omitempty"`
	Seller  *UserSummary    `json:"seller,omitempty"`
	Buyer   *UserSummary    `json:"buyer,omitempty"`
}

// OrderTotals is a server-side aggregate over a set of orders.
type OrderTotals struct {
	Count           int64
	CompletedCount  int64
	PendingCount    int64
	TotalAmount     decimal.Decimal
	CompletedAmount decimal.Decimal
	Commission      decimal.Decimal
}

// SellerStats counts revenue, commission and net earnings over completed
// orders only. GrossVolume is the sum over every status, pending and
// refunded included.
type SellerStats struct {
	TotalSales     int64           `json:"totalSales"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	GrossVolume    decimal.Decimal `json:"grossVolume"`
	CompletedSales int64           `json:"completedSales"`
	PendingSales   int64           `json:"pendingSales"`
	Commission     decimal.Decimal `json:"commission"`
	NetEarnings    decimal.Decimal `json:"netEarnings"`
}

type BuyerStats struct {
	TotalOrders     int64           `json:"totalOrders"`
	TotalSpent      decimal.Decimal `json:"totalSpent"`
	CompletedOrders int64           `json:"completedOrders"`
	PendingOrders   int64           `json:"pendingOrders"`
}

type SalesSummary struct {
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TotalSales  int64           `json:"totalSales"`
}

type SellerRanking struct {
	SellerID       string          `json:"seller_id"`
	FullName       string          `json:"full_name,omitempty"`
	CompletedSales int64           `json:"completedSales"`
	Revenue        decimal.Decimal `json:"revenue"`
	Commission     decimal.Decimal `json:"commission"`
}
