package model

import (
	"time"

	"cinema_storefront/constants"
)

type OrderSummary struct {
	ID             uint            `json:"id"`
	PublicCode     string          `json:"publicCode"` // ORD-XXXXXX
	Status         string          `json:"status"`
	TotalAmount    float64         `json:"totalAmount"`
	DiscountAmount float64         `json:"discountAmount"`
	FinalAmount    float64         `json:"finalAmount"`
	CreatedAt      time.Time       `json:"createdAt"`
	PromotionCode  *string         `json:"promotionCode,omitempty"`
	Payment        *PaymentSummary `json:"payment,omitempty"`
}

type PaymentSummary struct {
	Method   string `json:"method"`
	LastFour string `json:"lastFour"`
}

type OrderDetail struct {
	OrderSummary
	Tickets   []Ticket             `json:"tickets"`
	Preorders []ConcessionPreorder `json:"concessionPreorders"`
	Payment   *Payment             `json:"paymentDetail,omitempty"`

	// Degraded is set when the detail fetch failed and the view was
	// synthesized from the summary alone.
	Degraded bool `json:"degraded"`
}

// Key implements flow.Keyed for pager de-duplication.
func (o OrderSummary) Key() string { return o.PublicCode }

type OrderClass string

const (
	OrderActive OrderClass = "active"
	OrderPast   OrderClass = "past"
)

// ClassifyOrder is the single partition rule for order lists. An order is
// past only when the server-confirmed status says so; child completeness is
// never inferred locally.
func ClassifyOrder(o OrderSummary) OrderClass {
	switch o.Status {
	case constants.OrderCancelled, constants.OrderUsed, constants.OrderCompleted:
		return OrderPast
	default:
		return OrderActive
	}
}

// OrderTerminated reports whether redemption is off the table entirely.
func OrderTerminated(status string) bool {
	return status == constants.OrderCancelled || status == constants.OrderRefunded
}
