package model

import "time"

type Payment struct {
	ID       uint       `json:"id"`
	OrderId  uint       `json:"orderId"`
	Amount   float64    `json:"amount"`
	Method   string     `json:"method"`
	LastFour string     `json:"lastFour"`
	Status   string     `json:"status"`
	PaidAt   *time.Time `json:"paidAt,omitempty"`
}

// CardInput is format-checked locally before any network call. Authorization
// is the fulfillment API's job.
type CardInput struct {
	CardNumber string `json:"cardNumber" validate:"required"`
	Expiry     string `json:"expiry" validate:"required"` // MM/YY
	CVV        string `json:"cvv" validate:"required"`
	HolderName string `json:"holderName"`
}

type SubmitPaymentInput struct {
	CardInput
}

type PaymentResult struct {
	Payment Payment `json:"payment"`
	Message string  `json:"message,omitempty"`
}

type PromotionCheckInput struct {
	Code     string  `json:"code" validate:"required"`
	Amount   float64 `json:"amount" validate:"gte=0"`
	Category string  `json:"category"`
}

type PromotionCheck struct {
	Valid          bool    `json:"valid"`
	DiscountAmount float64 `json:"discountAmount"`
	Reason         string  `json:"reason,omitempty"`
}
