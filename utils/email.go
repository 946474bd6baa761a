package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// SendCancellationEmail confirms a cancel/return to the customer. Fire and
// forget: the order outcome never depends on SMTP.
func SendCancellationEmail(to, orderCode string, refundAmount float64) {
	host := os.Getenv("SMTP_HOST")
	if host == "" || to == "" {
		return
	}

	go func() {
		port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
		if port == 0 {
			port = 587
		}

		m := gomail.NewMessage()
		m.SetHeader("From", os.Getenv("SMTP_FROM"))
		m.SetHeader("To", to)
		m.SetHeader("Subject", fmt.Sprintf("Order %s cancelled", orderCode))
		m.SetBody("text/plain", fmt.Sprintf(
			"Your order %s has been cancelled.\nRefund amount: %.2f\nThe refund will arrive within 3-7 business days.",
			orderCode, refundAmount))

		d := gomail.NewDialer(host, port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))
		if err := d.DialAndSend(m); err != nil {
			log.Printf("cancellation email to %s failed: %v", to, err)
		}
	}()
}
