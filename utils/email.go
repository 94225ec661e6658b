package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/gomail.v2"
)

// InvoiceItem is one line of an order confirmation email.
type InvoiceItem struct {
	Name         string
	DeliveryLink string
}

// SendEmail sends an HTML email using the configured SMTP account.
func SendEmail(to, subject, body string) error {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}

	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("SMTP_FROM"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(os.Getenv("SMTP_HOST"), port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

// SendOrderInvoice sends the order confirmation with per-item delivery
// links. Callers fire this in a goroutine; a failure is logged and never
// retried.
func SendOrderInvoice(to, orderID string, total int64, items []InvoiceItem) error {
	var rows strings.Builder
	for _, item := range items {
		rows.WriteString(fmt.Sprintf(`
		<tr>
			<td style="padding: 8px; border-bottom: 1px solid #eee;">%s</td>
			<td style="padding: 8px; border-bottom: 1px solid #eee;"><a href="%s">Akses Produk</a></td>
		</tr>`, item.Name, item.DeliveryLink))
	}

	body := fmt.Sprintf(`
		<h2>Terima kasih atas pesanan Anda!</h2>
		<p>Order ID: <strong>%s</strong></p>
		<p>Total: <strong>%s</strong></p>
		<table style="width: 100%%; border-collapse: collapse;">
			<tr>
				<th style="text-align: left; padding: 8px;">Produk</th>
				<th style="text-align: left; padding: 8px;">Link</th>
			</tr>
			%s
		</table>
		<p>Simpan email ini, link akses produk hanya dikirim sekali.</p>
	`, orderID, FormatRupiah(total), rows.String())

	return SendEmail(to, fmt.Sprintf("Invoice Pesanan %s", orderID), body)
}
