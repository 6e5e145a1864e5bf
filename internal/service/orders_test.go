package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pustakalu_backend/internal/models"
)

// ---- in-memory fakes ----

type fakeBooks struct {
	books map[primitive.ObjectID]*models.Book
}

func (f *fakeBooks) FindByID(_ context.Context, id primitive.ObjectID) (*models.Book, error) {
	b, ok := f.books[id]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBooks) AdjustStock(_ context.Context, id primitive.ObjectID, stockDelta, salesDelta int) error {
	b, ok := f.books[id]
	if !ok {
		return fmt.Errorf("%w: book %s", ErrNotFound, id.Hex())
	}
	if b.StockCount+stockDelta < 0 {
		return fmt.Errorf("%w: book %s", ErrInsufficientStock, id.Hex())
	}
	b.StockCount += stockDelta
	b.SalesCount += salesDelta
	b.InStock = b.StockCount > 0
	return nil
}

type fakeOrders struct {
	orders map[primitive.ObjectID]*models.Order
}

func (f *fakeOrders) Insert(_ context.Context, o *models.Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	copied := *o
	f.orders[o.ID] = &copied
	return nil
}

func (f *fakeOrders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOrders) Update(_ context.Context, o *models.Order) error {
	copied := *o
	f.orders[o.ID] = &copied
	return nil
}

type fakeGateway struct {
	createErr error
	validSig  string
	created   int
}

func (f *fakeGateway) CreateOrder(_ context.Context, amountPaise int64, receipt string) (*GatewayOrder, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created++
	return &GatewayOrder{ID: fmt.Sprintf("order_rzp_%d", f.created), Amount: amountPaise, Currency: "INR"}, nil
}

func (f *fakeGateway) VerifySignature(_, _, signature string) bool {
	return signature == f.validSig
}

type fakeTx struct{}

func (fakeTx) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// ---- fixtures ----

func newFixture() (*Orders, *fakeBooks, *fakeOrders, *fakeGateway, primitive.ObjectID, primitive.ObjectID) {
	bookID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	books := &fakeBooks{books: map[primitive.ObjectID]*models.Book{
		bookID: {
			ID:         bookID,
			Title:      "Mahaprasthanam",
			Price:      125.0,
			StockCount: 10,
			InStock:    true,
			IsActive:   true,
		},
	}}
	orders := &fakeOrders{orders: map[primitive.ObjectID]*models.Order{}}
	gw := &fakeGateway{validSig: "good-signature"}
	return NewOrders(books, orders, gw, fakeTx{}), books, orders, gw, bookID, userID
}

func placeOrder(t *testing.T, svc *Orders, userID, bookID primitive.ObjectID, qty int, amount float64) *models.Order {
	t.Helper()
	order, gwOrder, err := svc.PlaceOrder(context.Background(), userID, PlaceOrderInput{
		Amount: amount,
		Items:  []CartItem{{BookID: bookID.Hex(), Quantity: qty}},
		ShippingAddress: models.Address{
			Name: "Sita", Phone: "9000000000", Street: "1 MG Road",
			City: "Vijayawada", State: "AP", PostalCode: "520001", Country: "India",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, gwOrder)
	return order
}

// ---- placement ----

func TestPlaceOrderComputesTotals(t *testing.T) {
	svc, _, _, _, bookID, userID := newFixture()

	// 2 x 125 = 250, over the free-shipping threshold
	order := placeOrder(t, svc, userID, bookID, 2, 250.0)

	assert.Equal(t, 250.0, order.OrderSummary.Subtotal)
	assert.Equal(t, 0.0, order.OrderSummary.ShippingCost)
	assert.Equal(t, 250.0, order.OrderSummary.Total)
	assert.Equal(t, int64(25000), order.AmountPaise())
	assert.Equal(t, models.OrderPending, order.OrderStatus)
	assert.Equal(t, models.PaymentPending, order.PaymentDetails.Status)
	assert.Len(t, order.Timeline, 1)
	assert.NotEmpty(t, order.OrderNumber)
	assert.NotEmpty(t, order.PaymentDetails.RazorpayOrderID)
}

func TestPlaceOrderAddsShippingBelowThreshold(t *testing.T) {
	svc, _, _, _, bookID, userID := newFixture()

	// 1 x 125 = 125 < 199, flat fee applies
	order := placeOrder(t, svc, userID, bookID, 1, 165.0)

	assert.Equal(t, 40.0, order.OrderSummary.ShippingCost)
	assert.Equal(t, 165.0, order.OrderSummary.Total)
}

func TestPlaceOrderRejectsAmountMismatch(t *testing.T) {
	svc, _, orders, gw, bookID, userID := newFixture()

	_, _, err := svc.PlaceOrder(context.Background(), userID, PlaceOrderInput{
		Amount: 999.0,
		Items:  []CartItem{{BookID: bookID.Hex(), Quantity: 2}},
	})

	assert.ErrorIs(t, err, ErrAmountMismatch)
	assert.Empty(t, orders.orders, "nothing may be persisted on a rejected order")
	assert.Zero(t, gw.created, "no gateway order for a rejected cart")
}

func TestPlaceOrderRejectsInsufficientStock(t *testing.T) {
	svc, books, orders, _, bookID, userID := newFixture()

	_, _, err := svc.PlaceOrder(context.Background(), userID, PlaceOrderInput{
		Amount: 1500.0,
		Items:  []CartItem{{BookID: bookID.Hex(), Quantity: 12}},
	})

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Empty(t, orders.orders)
	assert.Equal(t, 10, books.books[bookID].StockCount, "stock untouched at placement")
}

func TestPlaceOrderRejectsUnknownAndInactiveBooks(t *testing.T) {
	svc, books, _, _, bookID, userID := newFixture()

	_, _, err := svc.PlaceOrder(context.Background(), userID, PlaceOrderInput{
		Amount: 100.0,
		Items:  []CartItem{{BookID: primitive.NewObjectID().Hex(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrNotFound)

	books.books[bookID].IsActive = false
	_, _, err = svc.PlaceOrder(context.Background(), userID, PlaceOrderInput{
		Amount: 165.0,
		Items:  []CartItem{{BookID: bookID.Hex(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlaceOrderRejectsBadQuantity(t *testing.T) {
	svc, _, _, _, bookID, userID := newFixture()

	for _, qty := range []int{0, -3} {
		_, _, err := svc.PlaceOrder(context.Background(), userID, PlaceOrderInput{
			Amount: 125.0,
			Items:  []CartItem{{BookID: bookID.Hex(), Quantity: qty}},
		})
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestPlaceOrderGatewayDown(t *testing.T) {
	svc, _, orders, gw, bookID, userID := newFixture()
	gw.createErr = fmt.Errorf("connection refused")

	_, _, err := svc.PlaceOrder(context.Background(), userID, PlaceOrderInput{
		Amount: 250.0,
		Items:  []CartItem{{BookID: bookID.Hex(), Quantity: 2}},
	})

	assert.ErrorIs(t, err, ErrGatewayUnavailable)
	assert.Empty(t, orders.orders)
}

// ---- payment verification and settlement ----

func TestConfirmPaymentSettlesStock(t *testing.T) {
	svc, books, _, _, bookID, userID := newFixture()
	order := placeOrder(t, svc, userID, bookID, 3, 375.0)

	got, err := svc.ConfirmPayment(context.Background(), userID, VerifyInput{
		GatewayOrderID:   order.PaymentDetails.RazorpayOrderID,
		GatewayPaymentID: "pay_123",
		GatewaySignature: "good-signature",
		OrderID:          order.ID.Hex(),
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPaid, got.PaymentDetails.Status)
	assert.Equal(t, models.OrderConfirmed, got.OrderStatus)
	assert.Equal(t, "pay_123", got.PaymentDetails.RazorpayPaymentID)
	assert.NotNil(t, got.PaymentDetails.PaidAt)
	assert.Len(t, got.Timeline, 2)

	b := books.books[bookID]
	assert.Equal(t, 7, b.StockCount)
	assert.Equal(t, 3, b.SalesCount)
	assert.True(t, b.InStock)
}

func TestConfirmPaymentIsIdempotent(t *testing.T) {
	svc, books, _, _, bookID, userID := newFixture()
	order := placeOrder(t, svc, userID, bookID, 3, 375.0)

	in := VerifyInput{
		GatewayOrderID:   order.PaymentDetails.RazorpayOrderID,
		GatewayPaymentID: "pay_123",
		GatewaySignature: "good-signature",
		OrderID:          order.ID.Hex(),
	}
	_, err := svc.ConfirmPayment(context.Background(), userID, in)
	require.NoError(t, err)

	// the client retries the same callback
	got, err := svc.ConfirmPayment(context.Background(), userID, in)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPaid, got.PaymentDetails.Status)
	assert.Equal(t, 7, books.books[bookID].StockCount, "stock must not settle twice")
	assert.Equal(t, 3, books.books[bookID].SalesCount)
	assert.Len(t, got.Timeline, 2, "no extra timeline entry on the retry")
}

func TestConfirmPaymentBadSignature(t *testing.T) {
	svc, books, orders, _, bookID, userID := newFixture()
	order := placeOrder(t, svc, userID, bookID, 2, 250.0)

	_, err := svc.ConfirmPayment(context.Background(), userID, VerifyInput{
		GatewayOrderID:   order.PaymentDetails.RazorpayOrderID,
		GatewayPaymentID: "pay_123",
		GatewaySignature: "forged",
		OrderID:          order.ID.Hex(),
	})

	assert.ErrorIs(t, err, ErrPaymentVerificationFailed)
	assert.Equal(t, 10, books.books[bookID].StockCount, "no stock movement on a forged signature")

	stored := orders.orders[order.ID]
	assert.Equal(t, models.PaymentFailed, stored.PaymentDetails.Status)
	assert.Equal(t, models.OrderPending, stored.OrderStatus, "order status does not advance")
	assert.Equal(t, "signature verification failed", stored.PaymentDetails.FailureReason)
}

func TestConfirmPaymentWrongOwner(t *testing.T) {
	svc, _, _, _, bookID, userID := newFixture()
	order := placeOrder(t, svc, userID, bookID, 2, 250.0)

	_, err := svc.ConfirmPayment(context.Background(), primitive.NewObjectID(), VerifyInput{
		GatewayOrderID:   order.PaymentDetails.RazorpayOrderID,
		GatewayPaymentID: "pay_123",
		GatewaySignature: "good-signature",
		OrderID:          order.ID.Hex(),
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRecordPaymentFailure(t *testing.T) {
	svc, _, orders, _, bookID, userID := newFixture()
	order := placeOrder(t, svc, userID, bookID, 2, 250.0)

	got, err := svc.RecordPaymentFailure(context.Background(), userID, order.ID.Hex(), "card declined")
	require.NoError(t, err)

	assert.Equal(t, models.PaymentFailed, got.PaymentDetails.Status)
	assert.Equal(t, "card declined", got.PaymentDetails.FailureReason)
	assert.Len(t, got.Timeline, 2)

	// a paid order refuses the failure path
	stored := orders.orders[order.ID]
	stored.PaymentDetails.Status = models.PaymentPaid
	_, err = svc.RecordPaymentFailure(context.Background(), userID, order.ID.Hex(), "late callback")
	assert.ErrorIs(t, err, ErrInvalidState)
}

// ---- cancellation ----

func TestCancelPaidOrderRestoresStock(t *testing.T) {
	svc, books, _, _, bookID, userID := newFixture()
	order := placeOrder(t, svc, userID, bookID, 3, 375.0)

	_, err := svc.ConfirmPayment(context.Background(), userID, VerifyInput{
		GatewayOrderID:   order.PaymentDetails.RazorpayOrderID,
		GatewayPaymentID: "pay_123",
		GatewaySignature: "good-signature",
		OrderID:          order.ID.Hex(),
	})
	require.NoError(t, err)
	require.Equal(t, 7, books.books[bookID].StockCount)

	got, err := svc.CancelOrder(context.Background(), userID, order.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, models.OrderCancelled, got.OrderStatus)
	assert.Equal(t, 10, books.books[bookID].StockCount, "stock restored")
	assert.Equal(t, 0, books.books[bookID].SalesCount, "sales count comes back down")
	assert.Len(t, got.Timeline, 3)
}

func TestCancelUnpaidOrderLeavesStockAlone(t *testing.T) {
	svc, books, _, _, bookID, userID := newFixture()
	order := placeOrder(t, svc, userID, bookID, 3, 375.0)

	got, err := svc.CancelOrder(context.Background(), userID, order.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, models.OrderCancelled, got.OrderStatus)
	assert.Equal(t, 10, books.books[bookID].StockCount, "unpaid order never touched stock")
	assert.Equal(t, 0, books.books[bookID].SalesCount)
}

func TestCancelShippedOrderRefused(t *testing.T) {
	svc, _, orders, _, bookID, userID := newFixture()
	order := placeOrder(t, svc, userID, bookID, 2, 250.0)

	stored := orders.orders[order.ID]
	stored.Transition(models.OrderShipped, "Shipped via DTDC")

	_, err := svc.CancelOrder(context.Background(), userID, order.ID.Hex())
	assert.ErrorIs(t, err, ErrInvalidState)

	// cancelling twice is also refused
	stored.OrderStatus = models.OrderCancelled
	_, err = svc.CancelOrder(context.Background(), userID, order.ID.Hex())
	assert.ErrorIs(t, err, ErrInvalidState)
}

// ---- admin transitions ----

func TestUpdateStatusAppendsOneTimelineEntry(t *testing.T) {
	svc, _, _, _, bookID, userID := newFixture()
	order := placeOrder(t, svc, userID, bookID, 2, 250.0)

	got, err := svc.UpdateStatus(context.Background(), order.ID.Hex(), models.OrderShipped, "DTDC-42", "")
	require.NoError(t, err)

	assert.Equal(t, models.OrderShipped, got.OrderStatus)
	assert.Equal(t, "DTDC-42", got.TrackingNumber)
	assert.Len(t, got.Timeline, 2)
	assert.Equal(t, "Status updated by admin", got.Timeline[1].Note)
	require.NotNil(t, got.ShippedAt)
	firstShippedAt := *got.ShippedAt

	// moving through shipped again must not restamp shippedAt
	got, err = svc.UpdateStatus(context.Background(), order.ID.Hex(), models.OrderShipped, "", "re-dispatched")
	require.NoError(t, err)
	assert.Len(t, got.Timeline, 3)
	assert.Equal(t, firstShippedAt, *got.ShippedAt)
	assert.Equal(t, "DTDC-42", got.TrackingNumber, "empty tracking number keeps the old one")
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, _, _, _, bookID, userID := newFixture()
	order := placeOrder(t, svc, userID, bookID, 2, 250.0)

	_, err := svc.UpdateStatus(context.Background(), order.ID.Hex(), "teleported", "", "")
	assert.ErrorIs(t, err, ErrValidation)
}

// ---- reads ----

func TestGetOrderOwnership(t *testing.T) {
	svc, _, _, _, bookID, userID := newFixture()
	order := placeOrder(t, svc, userID, bookID, 2, 250.0)

	got, err := svc.GetOrder(context.Background(), userID, false, order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	stranger := primitive.NewObjectID()
	_, err = svc.GetOrder(context.Background(), stranger, false, order.ID.Hex())
	assert.ErrorIs(t, err, ErrForbidden)

	// admins may read any order
	_, err = svc.GetOrder(context.Background(), stranger, true, order.ID.Hex())
	assert.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), userID, false, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}
