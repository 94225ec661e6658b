package gateway

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

// QRCodePNG renders a payment code as a base64-encoded PNG so clients can
// show it inline without another round trip.
func QRCodePNG(paymentCode string) (string, error) {
	png, err := qrcode.Encode(paymentCode, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
