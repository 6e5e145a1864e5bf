package models

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Happy path runs top to bottom; cancelled/returned branch off.
const (
	OrderPending        = "pending"
	OrderConfirmed      = "confirmed"
	OrderProcessing     = "processing"
	OrderShipped        = "shipped"
	OrderOutForDelivery = "out-for-delivery"
	OrderDelivered      = "delivered"
	OrderCancelled      = "cancelled"
	OrderReturned       = "returned"
)

// Payment statuses.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// ValidOrderStatuses is the closed set an admin may move an order to.
var ValidOrderStatuses = map[string]bool{
	OrderPending:        true,
	OrderConfirmed:      true,
	OrderProcessing:     true,
	OrderShipped:        true,
	OrderOutForDelivery: true,
	OrderDelivered:      true,
	OrderCancelled:      true,
	OrderReturned:       true,
}

// Order is an independently persisted aggregate. Line items snapshot the book
// at order time on purpose: later catalog edits must not rewrite history.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber     string             `bson:"orderNumber" json:"orderNumber"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	ShippingAddress Address            `bson:"shippingAddress" json:"shippingAddress"`
	BillingAddress  *Address           `bson:"billingAddress,omitempty" json:"billingAddress,omitempty"`
	OrderSummary    OrderSummary       `bson:"orderSummary" json:"orderSummary"`
	PaymentDetails  PaymentDetails     `bson:"paymentDetails" json:"paymentDetails"`
	OrderStatus     string             `bson:"orderStatus" json:"orderStatus"`
	Timeline        []TimelineEntry    `bson:"timeline" json:"timeline"`
	TrackingNumber  string             `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
	ShippedAt       *time.Time         `bson:"shippedAt,omitempty" json:"shippedAt,omitempty"`
	DeliveredAt     *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OrderItem is a (book, quantity, price-at-order-time) snapshot.
type OrderItem struct {
	BookID      primitive.ObjectID `bson:"bookId" json:"bookId"`
	Title       string             `bson:"title" json:"title"`
	TitleTelugu string             `bson:"titleTelugu,omitempty" json:"titleTelugu,omitempty"`
	Author      string             `bson:"author" json:"author"`
	ImageURL    string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	Quantity    int                `bson:"quantity" json:"quantity"`
}

type OrderSummary struct {
	Subtotal     float64 `bson:"subtotal" json:"subtotal"`
	ShippingCost float64 `bson:"shippingCost" json:"shippingCost"`
	Tax          float64 `bson:"tax" json:"tax"`
	Discount     float64 `bson:"discount" json:"discount"`
	Total        float64 `bson:"total" json:"total"`
}

type PaymentDetails struct {
	Method            string     `bson:"method" json:"method"`
	RazorpayOrderID   string     `bson:"razorpayOrderId,omitempty" json:"razorpayOrderId,omitempty"`
	RazorpayPaymentID string     `bson:"razorpayPaymentId,omitempty" json:"razorpayPaymentId,omitempty"`
	Status            string     `bson:"status" json:"status"`
	PaidAt            *time.Time `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	FailureReason     string     `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
}

// TimelineEntry is one record of the append-only status audit log.
type TimelineEntry struct {
	Status    string    `bson:"status" json:"status"`
	Note      string    `bson:"note,omitempty" json:"note,omitempty"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Shipping policy: flat fee below the free-shipping threshold. Printed books
// carry no GST, so tax stays zero.
const (
	FreeShippingThreshold = 199.0
	FlatShippingFee       = 40.0
)

// ComputeTotals fills the summary from the line items and the shipping policy.
// Invariant: Total == Subtotal + ShippingCost + Tax - Discount.
func (o *Order) ComputeTotals() {
	subtotal := 0.0
	for _, it := range o.Items {
		subtotal += it.Price * float64(it.Quantity)
	}
	subtotal = roundPaise(subtotal)

	shipping := 0.0
	if subtotal < FreeShippingThreshold {
		shipping = FlatShippingFee
	}

	o.OrderSummary.Subtotal = subtotal
	o.OrderSummary.ShippingCost = shipping
	o.OrderSummary.Tax = 0
	o.OrderSummary.Total = roundPaise(subtotal + shipping + o.OrderSummary.Tax - o.OrderSummary.Discount)
}

// AmountPaise converts the rupee total to integer paise for the gateway.
func (o *Order) AmountPaise() int64 {
	return int64(math.Round(o.OrderSummary.Total * 100))
}

// Transition moves the order to a new status and appends exactly one timeline
// entry. shippedAt/deliveredAt are stamped only on first entry into the state.
func (o *Order) Transition(status, note string) {
	now := time.Now()
	o.OrderStatus = status
	o.Timeline = append(o.Timeline, TimelineEntry{Status: status, Note: note, Timestamp: now})
	switch status {
	case OrderShipped:
		if o.ShippedAt == nil {
			o.ShippedAt = &now
		}
	case OrderDelivered:
		if o.DeliveredAt == nil {
			o.DeliveredAt = &now
		}
	}
	o.UpdatedAt = now
}

// CanBeCancelled guards customer cancellation: once the parcel left the
// warehouse (or the order already terminated) cancellation is refused.
func (o *Order) CanBeCancelled() bool {
	switch o.OrderStatus {
	case OrderShipped, OrderOutForDelivery, OrderDelivered, OrderCancelled, OrderReturned:
		return false
	}
	return true
}

// NewOrderNumber builds the human-facing order number: TB + unix seconds +
// 4 random digits. Assigned once at first save, never regenerated.
func NewOrderNumber() string {
	return fmt.Sprintf("TB%d%04d", time.Now().Unix(), rand.Intn(10000))
}

func roundPaise(v float64) float64 {
	return math.Round(v*100) / 100
}
