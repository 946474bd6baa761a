package utils

import (
	"bytes"
	"encoding/base64"
	"image/png"

	"github.com/skip2/go-qrcode"
)

// GenerateQRCode renders content as PNG bytes.
func GenerateQRCode(content string, size int) ([]byte, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	err = png.Encode(buf, qr.Image(size))
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// QRCodeDataURL renders content as an inline data URL for direct embedding
// in detail responses. Returns "" on failure, a missing QR is not worth
// failing the view for.
func QRCodeDataURL(content string, size int) string {
	raw, err := GenerateQRCode(content, size)
	if err != nil {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)
}
