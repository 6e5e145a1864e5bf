package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	rzp := NewWithSecret("test_secret")

	valid := sign("test_secret", "order_ABC123", "pay_XYZ789")
	assert.True(t, rzp.VerifySignature("order_ABC123", "pay_XYZ789", valid))
}

func TestVerifySignatureRejectsTampering(t *testing.T) {
	rzp := NewWithSecret("test_secret")
	valid := sign("test_secret", "order_ABC123", "pay_XYZ789")

	// flip one hex character
	mutated := []byte(valid)
	if mutated[0] == 'a' {
		mutated[0] = 'b'
	} else {
		mutated[0] = 'a'
	}
	assert.False(t, rzp.VerifySignature("order_ABC123", "pay_XYZ789", string(mutated)))

	// signature from the wrong secret
	wrongSecret := sign("other_secret", "order_ABC123", "pay_XYZ789")
	assert.False(t, rzp.VerifySignature("order_ABC123", "pay_XYZ789", wrongSecret))

	// signature for a different payment
	assert.False(t, rzp.VerifySignature("order_ABC123", "pay_OTHER", valid))

	// empty signature
	assert.False(t, rzp.VerifySignature("order_ABC123", "pay_XYZ789", ""))
}
