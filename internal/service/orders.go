package service

import (
	"context"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pustakalu_backend/internal/models"
)

// AmountTolerance absorbs float rounding between the client's displayed total
// and the server-side recomputation. Anything beyond it is tampering.
const AmountTolerance = 0.01

// BookStore is the slice of the catalog the order flows need.
type BookStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	// AdjustStock applies stockDelta/salesDelta atomically and recomputes the
	// inStock flag. A negative stockDelta that would undershoot zero returns
	// ErrInsufficientStock without applying anything.
	AdjustStock(ctx context.Context, id primitive.ObjectID, stockDelta, salesDelta int) error
}

// OrderStore persists the order aggregate.
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
}

// Tx runs fn atomically across documents. The Mongo implementation uses a
// multi-document transaction; test fakes just call fn.
type Tx interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// GatewayOrder is the payment provider's server-side handle for a pending charge.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // paise
	Currency string `json:"currency"`
}

// Gateway wraps the payment provider's order-creation and callback-signature
// verification calls.
type Gateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*GatewayOrder, error)
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
}

// Orders carries the transactional order/payment flows. It holds no state of
// its own; everything goes through the injected stores.
type Orders struct {
	books   BookStore
	orders  OrderStore
	gateway Gateway
	tx      Tx
}

func NewOrders(books BookStore, orders OrderStore, gateway Gateway, tx Tx) *Orders {
	return &Orders{books: books, orders: orders, gateway: gateway, tx: tx}
}

// CartItem is one client-declared cart line.
type CartItem struct {
	BookID   string `json:"bookId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

// PlaceOrderInput is the checkout payload after Gin binding.
type PlaceOrderInput struct {
	Amount          float64        `json:"amount" binding:"required"`
	Items           []CartItem     `json:"items" binding:"required"`
	ShippingAddress models.Address `json:"shippingAddress" binding:"required"`
}

// PlaceOrder validates the cart against live catalog stock and prices,
// creates a gateway order for the authoritative amount and persists a pending
// local order with line-item snapshots. Nothing is persisted until every
// validation passed and the gateway accepted the order.
func (s *Orders) PlaceOrder(ctx context.Context, userID primitive.ObjectID, in PlaceOrderInput) (*models.Order, *GatewayOrder, error) {
	if len(in.Items) == 0 {
		return nil, nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}

	items := make([]models.OrderItem, 0, len(in.Items))
	for _, ci := range in.Items {
		if ci.Quantity <= 0 {
			return nil, nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
		}
		bookID, err := primitive.ObjectIDFromHex(ci.BookID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid book id %q", ErrValidation, ci.BookID)
		}
		book, err := s.books.FindByID(ctx, bookID)
		if err != nil {
			return nil, nil, err
		}
		if book == nil || !book.IsActive {
			return nil, nil, fmt.Errorf("%w: book %s", ErrNotFound, ci.BookID)
		}
		if !book.InStock || ci.Quantity > book.StockCount {
			return nil, nil, fmt.Errorf("%w: %q has %d left, %d requested",
				ErrInsufficientStock, book.Title, book.StockCount, ci.Quantity)
		}
		// snapshot the book as it is right now; catalog edits must not
		// retroactively alter placed orders
		items = append(items, models.OrderItem{
			BookID:      book.ID,
			Title:       book.Title,
			TitleTelugu: book.TitleTelugu,
			Author:      book.Author,
			ImageURL:    book.ImageURL,
			Price:       book.Price,
			Quantity:    ci.Quantity,
		})
	}

	order := &models.Order{
		UserID:          userID,
		Items:           items,
		ShippingAddress: in.ShippingAddress,
		PaymentDetails:  models.PaymentDetails{Method: "razorpay", Status: models.PaymentPending},
	}
	order.ComputeTotals()

	// the client-declared amount is advisory only; reject anything that
	// differs from the server-side recomputation
	if math.Abs(in.Amount-order.OrderSummary.Total) > AmountTolerance {
		return nil, nil, fmt.Errorf("%w: declared %.2f, computed %.2f",
			ErrAmountMismatch, in.Amount, order.OrderSummary.Total)
	}

	order.OrderNumber = models.NewOrderNumber()
	gwOrder, err := s.gateway.CreateOrder(ctx, order.AmountPaise(), order.OrderNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	order.PaymentDetails.RazorpayOrderID = gwOrder.ID

	order.Transition(models.OrderPending, "Order placed, awaiting payment")
	order.CreatedAt = order.UpdatedAt

	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, nil, err
	}
	return order, gwOrder, nil
}

// VerifyInput is the gateway callback relayed by the client after payment.
type VerifyInput struct {
	GatewayOrderID   string `json:"gatewayOrderId" binding:"required"`
	GatewayPaymentID string `json:"gatewayPaymentId" binding:"required"`
	GatewaySignature string `json:"gatewaySignature" binding:"required"`
	OrderID          string `json:"orderId" binding:"required"`
}

// ConfirmPayment verifies the gateway signature and settles stock. The
// settlement (payment flags, status transition and every line item's stock
// delta) runs inside one transaction: partial settlement cannot be observed.
// Re-submitting a confirmation for an already-paid order is a no-op.
func (s *Orders) ConfirmPayment(ctx context.Context, userID primitive.ObjectID, in VerifyInput) (*models.Order, error) {
	order, err := s.loadOwnedOrder(ctx, userID, in.OrderID)
	if err != nil {
		return nil, err
	}

	// double-confirmation guard: stock was already settled once
	if order.PaymentDetails.Status == models.PaymentPaid {
		return order, nil
	}

	if !s.gateway.VerifySignature(in.GatewayOrderID, in.GatewayPaymentID, in.GatewaySignature) {
		order.PaymentDetails.Status = models.PaymentFailed
		order.PaymentDetails.FailureReason = "signature verification failed"
		order.Transition(order.OrderStatus, "Payment verification failed")
		if err := s.orders.Update(ctx, order); err != nil {
			return nil, err
		}
		return nil, ErrPaymentVerificationFailed
	}

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		order.PaymentDetails.Status = models.PaymentPaid
		order.PaymentDetails.RazorpayPaymentID = in.GatewayPaymentID
		order.Transition(models.OrderConfirmed, "Payment received, order confirmed")
		paidAt := order.UpdatedAt
		order.PaymentDetails.PaidAt = &paidAt
		if err := s.orders.Update(txCtx, order); err != nil {
			return err
		}
		for _, it := range order.Items {
			if err := s.books.AdjustStock(txCtx, it.BookID, -it.Quantity, it.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// RecordPaymentFailure stores the client-reported failure reason. Paid orders
// are immutable through this path.
func (s *Orders) RecordPaymentFailure(ctx context.Context, userID primitive.ObjectID, orderID, reason string) (*models.Order, error) {
	order, err := s.loadOwnedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentDetails.Status == models.PaymentPaid {
		return nil, fmt.Errorf("%w: order is already paid", ErrInvalidState)
	}

	order.PaymentDetails.Status = models.PaymentFailed
	order.PaymentDetails.FailureReason = reason
	order.Transition(order.OrderStatus, "Payment failed: "+reason)
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder cancels a not-yet-shipped order. Stock is restored only when
// payment had settled it, and salesCount comes back down with it so net sales
// stay truthful after a cancellation.
func (s *Orders) CancelOrder(ctx context.Context, userID primitive.ObjectID, orderID string) (*models.Order, error) {
	order, err := s.loadOwnedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanBeCancelled() {
		return nil, fmt.Errorf("%w: cannot cancel a %s order", ErrInvalidState, order.OrderStatus)
	}

	wasPaid := order.PaymentDetails.Status == models.PaymentPaid
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		order.Transition(models.OrderCancelled, "Cancelled by customer")
		if err := s.orders.Update(txCtx, order); err != nil {
			return err
		}
		if wasPaid {
			for _, it := range order.Items {
				if err := s.books.AdjustStock(txCtx, it.BookID, it.Quantity, -it.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus is the admin transition: any enum value is allowed, one
// timeline entry is appended, shippedAt/deliveredAt stamp only once.
func (s *Orders) UpdateStatus(ctx context.Context, orderID, status, trackingNumber, note string) (*models.Order, error) {
	if !models.ValidOrderStatuses[status] {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid order id", ErrValidation)
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}

	if trackingNumber != "" {
		order.TrackingNumber = trackingNumber
	}
	if note == "" {
		note = "Status updated by admin"
	}
	order.Transition(status, note)
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder returns an order for its owner; admins may read any order.
func (s *Orders) GetOrder(ctx context.Context, userID primitive.ObjectID, isAdmin bool, orderID string) (*models.Order, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid order id", ErrValidation)
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	if !isAdmin && order.UserID != userID {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *Orders) loadOwnedOrder(ctx context.Context, userID primitive.ObjectID, orderID string) (*models.Order, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid order id", ErrValidation)
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	return order, nil
}
