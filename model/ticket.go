package model

import (
	"time"

	"cinema_storefront/constants"
)

type SessionRef struct {
	ID        uint      `json:"id"`
	FilmTitle string    `json:"filmTitle"`
	Hall      string    `json:"hall"`
	Cinema    string    `json:"cinema"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

type SeatRef struct {
	Row    string `json:"row"`
	Number int    `json:"number"`
}

type Ticket struct {
	ID         uint        `json:"id"`
	TicketCode string      `json:"ticketCode"` // TKT-XXXXXX
	OrderId    uint        `json:"orderId"`
	Session    *SessionRef `json:"session,omitempty"`
	Seat       *SeatRef    `json:"seat,omitempty"`
	Price      float64     `json:"price"`
	Status     string      `json:"status"`
	UsedAt     *time.Time  `json:"usedAt,omitempty"`
}

// TicketRedeemable reports whether staff may mark the ticket used. A missing
// embedded session means information pending, not a refusal.
func TicketRedeemable(t Ticket, orderStatus string) bool {
	if OrderTerminated(orderStatus) {
		return false
	}
	return t.Status != constants.TicketUsed
}

// SessionEnded is the advisory late-redemption check. Authority stays with
// the server; callers surface a warning, never a block. Unknown session data
// yields false.
func SessionEnded(t Ticket, now time.Time) bool {
	if t.Session == nil || t.Session.EndTime.IsZero() {
		return false
	}
	return now.After(t.Session.EndTime)
}
