package utils

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"os"

	qrcode "github.com/skip2/go-qrcode"
)

// BuildUPIURI builds a upi://pay deep link (NPCI spec) for the given amount
// and transaction note. Amount is rupees with two decimals.
func BuildUPIURI(payeeVPA, payeeName, orderNumber string, amount float64) string {
	q := url.Values{}
	q.Set("pa", payeeVPA)
	q.Set("pn", payeeName)
	q.Set("am", fmt.Sprintf("%.2f", amount))
	q.Set("cu", "INR")
	q.Set("tn", "Order "+orderNumber)
	return "upi://pay?" + q.Encode()
}

// GenerateUPIQR renders the UPI link as a PNG QR, base64-encoded for direct
// embedding in an <img src="..."> inside the confirmation email.
func GenerateUPIQR(orderNumber string, amount float64) (string, error) {
	vpa := os.Getenv("UPI_VPA")
	if vpa == "" {
		vpa = "pustakalu@upi"
	}
	name := os.Getenv("UPI_PAYEE_NAME")
	if name == "" {
		name = "Telugu Pustakalu"
	}

	png, err := qrcode.Encode(BuildUPIURI(vpa, name, orderNumber, amount), qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
