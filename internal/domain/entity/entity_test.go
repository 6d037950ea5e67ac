package entity

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderTransitions(t *testing.T) {
	tests := []struct {
		from, to string
		allowed  bool
	}{
		{OrderStatusPending, OrderStatusCompleted, true},
		{OrderStatusPending, OrderStatusCanceled, true},
		{OrderStatusCompleted, OrderStatusRefunded, true},
		{OrderStatusPending, OrderStatusPending, false},
		{OrderStatusPending, OrderStatusRefunded, false},
		{OrderStatusCompleted, OrderStatusPending, false},
		{OrderStatusCanceled, OrderStatusCompleted, false},
		{OrderStatusRefunded, OrderStatusCompleted, false},
	}

	for _, tt := range tests {
		o := &Order{Status: tt.from}
		assert.Equal(t, tt.allowed, o.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestSellerEarnings(t *testing.T) {
	o := &Order{Amount: decimal.RequireFromString("5.00"), Commission: decimal.RequireFromString("0.50")}
	assert.True(t, decimal.RequireFromString("4.50").Equal(o.SellerEarnings()))
}

func TestNewReviewSummary(t *testing.T) {
	s := NewReviewSummary(map[int]int{5: 2, 4: 1, 7: 3})

	assert.Equal(t, 3, s.TotalReviews)
	assert.Equal(t, 4.67, s.AverageRating)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 1, 5: 2}, s.RatingCounts)
}

func TestNewReviewSummaryEmpty(t *testing.T) {
	s := NewReviewSummary(nil)

	assert.Equal(t, 0, s.TotalReviews)
	assert.Equal(t, 0.0, s.AverageRating)
	assert.Len(t, s.RatingCounts, 5)
}

func TestChatCounterpart(t *testing.T) {
	c := &Chat{BuyerID: "b", SellerID: "s"}
	assert.Equal(t, "s", c.Counterpart("b"))
	assert.Equal(t, "b", c.Counterpart("s"))
	assert.True(t, c.HasParticipant("s"))
	assert.False(t, c.HasParticipant("x"))
}

func TestMoneyEncodesAsNumber(t *testing.T) {
	order := &Order{ID: "o1", Amount: decimal.RequireFromString("5.00"), Commission: decimal.RequireFromString("0.50")}

	raw, err := json.Marshal(order)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"amount":5,`)
	assert.Contains(t, string(raw), `"commission":0.5,`)

	var back Order
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"5.00","commission":0.5}`), &back))
	assert.True(t, back.Amount.Equal(order.Amount))
	assert.True(t, back.Commission.Equal(order.Commission))
}

func TestOrderViewEmbedsRelations(t *testing.T) {
	product := &Product{ID: "p1", Title: "Bench", Price: decimal.RequireFromString("4.00"), Images: []string{"a.png", "b.png"}}
	buyer := &Profile{ID: "b1", FullName: "Ada Buyer", Username: "ada", Email: "ada@example.com"}

	view := &OrderView{Order: &Order{ID: "o1", ProductID: "p1"}, Product: product.Summary(), Buyer: buyer.Summary()}
	raw, err := json.Marshal(view)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "o1", out["id"])
	assert.Equal(t, "a.png", out["product"].(map[string]interface{})["image_url"])
	assert.Equal(t, "ada", out["buyer"].(map[string]interface{})["username"])
	assert.NotContains(t, out["buyer"], "email")
	assert.NotContains(t, out, "seller")
}
