package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotalsInvariant(t *testing.T) {
	cases := []struct {
		name         string
		items        []OrderItem
		discount     float64
		wantSubtotal float64
		wantShipping float64
		wantTotal    float64
	}{
		{
			name:         "above free shipping threshold",
			items:        []OrderItem{{Price: 125, Quantity: 2}},
			wantSubtotal: 250, wantShipping: 0, wantTotal: 250,
		},
		{
			name:         "below threshold pays flat fee",
			items:        []OrderItem{{Price: 125, Quantity: 1}},
			wantSubtotal: 125, wantShipping: 40, wantTotal: 165,
		},
		{
			name:         "exactly at threshold ships free",
			items:        []OrderItem{{Price: 199, Quantity: 1}},
			wantSubtotal: 199, wantShipping: 0, wantTotal: 199,
		},
		{
			name:         "discount comes off the total",
			items:        []OrderItem{{Price: 150, Quantity: 2}},
			discount:     50,
			wantSubtotal: 300, wantShipping: 0, wantTotal: 250,
		},
		{
			name:         "fractional prices round to paise",
			items:        []OrderItem{{Price: 99.99, Quantity: 3}},
			wantSubtotal: 299.97, wantShipping: 0, wantTotal: 299.97,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := Order{Items: tc.items, OrderSummary: OrderSummary{Discount: tc.discount}}
			o.ComputeTotals()

			assert.Equal(t, tc.wantSubtotal, o.OrderSummary.Subtotal)
			assert.Equal(t, tc.wantShipping, o.OrderSummary.ShippingCost)
			assert.Equal(t, tc.wantTotal, o.OrderSummary.Total)
			assert.InDelta(t,
				o.OrderSummary.Subtotal+o.OrderSummary.ShippingCost+o.OrderSummary.Tax-o.OrderSummary.Discount,
				o.OrderSummary.Total, 0.001)
		})
	}
}

func TestAmountPaise(t *testing.T) {
	o := Order{Items: []OrderItem{{Price: 99.99, Quantity: 3}}}
	o.ComputeTotals()
	assert.Equal(t, int64(29997), o.AmountPaise())
}

func TestTransitionAppendsExactlyOneEntry(t *testing.T) {
	o := Order{}

	o.Transition(OrderPending, "Order placed, awaiting payment")
	o.Transition(OrderConfirmed, "Payment received, order confirmed")
	o.Transition(OrderShipped, "Handed to courier")

	require.Len(t, o.Timeline, 3)
	assert.Equal(t, OrderShipped, o.OrderStatus)
	assert.Equal(t, OrderPending, o.Timeline[0].Status)
	assert.Equal(t, OrderConfirmed, o.Timeline[1].Status)
	for _, e := range o.Timeline {
		assert.False(t, e.Timestamp.IsZero())
	}
}

func TestTransitionStampsShippedAtOnce(t *testing.T) {
	o := Order{}

	o.Transition(OrderShipped, "first dispatch")
	require.NotNil(t, o.ShippedAt)
	first := *o.ShippedAt

	o.Transition(OrderReturned, "refused at door")
	o.Transition(OrderShipped, "re-dispatched")
	assert.Equal(t, first, *o.ShippedAt)

	o.Transition(OrderDelivered, "")
	require.NotNil(t, o.DeliveredAt)
	delivered := *o.DeliveredAt
	o.Transition(OrderDelivered, "duplicate webhook")
	assert.Equal(t, delivered, *o.DeliveredAt)
}

func TestCanBeCancelled(t *testing.T) {
	cancellable := []string{OrderPending, OrderConfirmed, OrderProcessing}
	for _, s := range cancellable {
		o := Order{OrderStatus: s}
		assert.True(t, o.CanBeCancelled(), s)
	}

	final := []string{OrderShipped, OrderOutForDelivery, OrderDelivered, OrderCancelled, OrderReturned}
	for _, s := range final {
		o := Order{OrderStatus: s}
		assert.False(t, o.CanBeCancelled(), s)
	}
}

func TestNewOrderNumber(t *testing.T) {
	n := NewOrderNumber()
	assert.True(t, strings.HasPrefix(n, "TB"))
	assert.GreaterOrEqual(t, len(n), 16)
}
