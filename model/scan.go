package model

// ScanKind discriminates the four shapes a scanned code can resolve to. The
// fulfillment API signals the shape by which fields are present; the client
// normalizes that into this union at the boundary (see fulfillment package).
type ScanKind string

const (
	ScanSingleTicket   ScanKind = "single_ticket"
	ScanMultiTicket    ScanKind = "multi_ticket"
	ScanSinglePreorder ScanKind = "single_preorder"
	ScanMultiPreorder  ScanKind = "multi_preorder"
)

type ScanResult struct {
	Kind      ScanKind             `json:"kind"`
	Order     OrderSummary         `json:"order"`
	Tickets   []Ticket             `json:"tickets,omitempty"`
	Preorders []ConcessionPreorder `json:"preorders,omitempty"`
}

func (r ScanResult) IsTicket() bool {
	return r.Kind == ScanSingleTicket || r.Kind == ScanMultiTicket
}

// RemainingTickets lists the tickets still eligible for a mark-used action.
func (r ScanResult) RemainingTickets() []Ticket {
	var out []Ticket
	for _, t := range r.Tickets {
		if TicketRedeemable(t, r.Order.Status) {
			out = append(out, t)
		}
	}
	return out
}

// RemainingPreorders lists the preorders still eligible for completion.
func (r ScanResult) RemainingPreorders() []ConcessionPreorder {
	var out []ConcessionPreorder
	for _, p := range r.Preorders {
		if ConcessionRedeemable(p, r.Order.Status) {
			out = append(out, p)
		}
	}
	return out
}
