package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/wneessen/go-mail"

	"pustakalu_backend/internal/models"
)

func smtpClient() (*mail.Client, error) {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil, fmt.Errorf("SMTP_HOST not configured")
	}
	port := 587
	if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil && p > 0 {
		port = p
	}
	return mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
}

func fromAddress() string {
	if from := os.Getenv("SMTP_FROM"); from != "" {
		return from
	}
	return "noreply@telugupustakalu.com"
}

// SendHTML delivers one HTML email. Callers treat failures as non-fatal; a
// lost email never fails an order.
func SendHTML(to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(fromAddress()); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := smtpClient()
	if err != nil {
		return err
	}

	log.Println("📤 sending email to", to)
	return client.DialAndSend(msg)
}

// SendOTPEmail delivers a login code.
func SendOTPEmail(to, code string) error {
	body := fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 480px; margin: auto;">
	<h2>మీ లాగిన్ కోడ్ / Your login code</h2>
	<p style="font-size: 32px; letter-spacing: 8px; font-weight: bold;">%s</p>
	<p>This code expires in 5 minutes. If you did not request it, ignore this email.</p>
</div>`, code)
	return SendHTML(to, "Your Telugu Pustakalu login code", body)
}

// OrderConfirmationHTML renders the order summary with an optional UPI QR.
func OrderConfirmationHTML(order *models.Order, qrDataURI string) string {
	itemsHTML := ""
	for _, it := range order.Items {
		title := it.Title
		if it.TitleTelugu != "" {
			title = it.TitleTelugu + " (" + it.Title + ")"
		}
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td style="padding:8px;border:1px solid #ddd;">%s</td>
				<td style="padding:8px;border:1px solid #ddd;">%d</td>
				<td style="padding:8px;border:1px solid #ddd;">₹%.2f</td>
				<td style="padding:8px;border:1px solid #ddd;">₹%.2f</td>
			</tr>`, title, it.Quantity, it.Price, it.Price*float64(it.Quantity))
	}

	qrHTML := ""
	if qrDataURI != "" {
		qrHTML = fmt.Sprintf(`<p>Scan to pay via UPI next time:</p><img src="%s" alt="UPI QR" width="160" height="160">`, qrDataURI)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="te">
<body style="font-family: Arial, sans-serif; background:#f9f9f9; padding:20px;">
	<div style="max-width:600px;margin:auto;background:white;padding:20px;border-radius:10px;">
		<h2>ధన్యవాదాలు! Order %s confirmed</h2>
		<table style="width:100%%;border-collapse:collapse;margin:20px 0;">
			<thead>
				<tr style="background:#f0f0f0;">
					<th style="padding:8px;text-align:left;border:1px solid #ddd;">Book</th>
					<th style="padding:8px;text-align:left;border:1px solid #ddd;">Qty</th>
					<th style="padding:8px;text-align:left;border:1px solid #ddd;">Price</th>
					<th style="padding:8px;text-align:left;border:1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>%s</tbody>
			<tfoot>
				<tr><td colspan="3" style="padding:8px;text-align:right;">Subtotal</td><td style="padding:8px;">₹%.2f</td></tr>
				<tr><td colspan="3" style="padding:8px;text-align:right;">Shipping</td><td style="padding:8px;">₹%.2f</td></tr>
				<tr><td colspan="3" style="padding:8px;text-align:right;font-weight:bold;">Total</td><td style="padding:8px;font-weight:bold;">₹%.2f</td></tr>
			</tfoot>
		</table>
		%s
		<p style="color:#555;">Telugu Pustakalu</p>
	</div>
</body>
</html>`, order.OrderNumber, itemsHTML,
		order.OrderSummary.Subtotal, order.OrderSummary.ShippingCost, order.OrderSummary.Total, qrHTML)
}

// SendOrderConfirmation emails the paid-order summary. Best effort.
func SendOrderConfirmation(order *models.Order, to string) {
	if to == "" {
		return
	}
	qr, err := GenerateUPIQR(order.OrderNumber, order.OrderSummary.Total)
	if err != nil {
		log.Printf("⚠️ UPI QR generation failed: %v", err)
		qr = ""
	}
	if err := SendHTML(to, "Order "+order.OrderNumber+" confirmed", OrderConfirmationHTML(order, qr)); err != nil {
		log.Printf("⚠️ order confirmation email failed: %v", err)
	}
}
