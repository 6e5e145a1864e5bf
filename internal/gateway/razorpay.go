package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"

	razorpay "github.com/razorpay/razorpay-go"

	"pustakalu_backend/internal/service"
)

// Razorpay wraps the provider SDK behind the service.Gateway interface.
// Signature verification is implemented here rather than through the SDK so
// it stays testable without credentials.
type Razorpay struct {
	client *razorpay.Client
	secret string
}

// New builds the adapter from RAZORPAY_KEY_ID / RAZORPAY_KEY_SECRET. Returns
// an error when the gateway is not configured; callers surface that as 503.
func New() (*Razorpay, error) {
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	secret := os.Getenv("RAZORPAY_KEY_SECRET")
	if keyID == "" || secret == "" {
		return nil, fmt.Errorf("razorpay credentials not configured")
	}
	return &Razorpay{client: razorpay.NewClient(keyID, secret), secret: secret}, nil
}

// NewWithSecret is for tests and offline signature checks.
func NewWithSecret(secret string) *Razorpay {
	return &Razorpay{secret: secret}
}

// CreateOrder registers a pending charge with Razorpay. Amount is in paise.
func (r *Razorpay) CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*service.GatewayOrder, error) {
	if r.client == nil {
		return nil, fmt.Errorf("razorpay client not initialised")
	}

	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": "INR",
		"receipt":  receipt,
	}
	body, err := r.client.Order.Create(data, nil)
	if err != nil {
		log.Printf("❌ razorpay order create failed: %v", err)
		return nil, err
	}

	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay returned no order id")
	}
	return &service.GatewayOrder{ID: id, Amount: amountPaise, Currency: "INR"}, nil
}

// VerifySignature checks the checkout callback signature:
// hex(HMAC-SHA256(secret, "{orderId}|{paymentId}")), compared in constant time.
func (r *Razorpay) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(r.secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
