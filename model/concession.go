package model

import (
	"time"

	"cinema_storefront/constants"
)

type ConcessionPreorder struct {
	ID          uint       `json:"id"`
	OrderId     uint       `json:"orderId"`
	ItemName    string     `json:"itemName"`
	Quantity    int        `json:"quantity"`
	UnitPrice   float64    `json:"unitPrice"`
	TotalPrice  float64    `json:"totalPrice"`
	PickupCode  string     `json:"pickupCode"` // CON-XXXXXX
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// ConcessionRedeemable mirrors TicketRedeemable with COMPLETED as the
// terminal state. COMPLETED is monotonic, re-marking is a no-op upstream.
func ConcessionRedeemable(p ConcessionPreorder, orderStatus string) bool {
	if OrderTerminated(orderStatus) {
		return false
	}
	return p.Status != constants.PreorderCompleted
}
