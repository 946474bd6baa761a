package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"cinema_storefront/model"

	"github.com/google/uuid"
)

// ErrEmptyScan means the validation endpoint answered 200 but carried neither
// a single item nor a list — a contract violation worth surfacing.
var ErrEmptyScan = errors.New("fulfillment: scan response carries no items")

// ticketScanPayload mirrors the validation endpoint's shape-shifting answer:
// a `ticket` field for a single match, a `tickets` array when the code
// identifies a whole order.
type ticketScanPayload struct {
	Order   model.OrderSummary `json:"order"`
	Ticket  *model.Ticket      `json:"ticket"`
	Tickets []model.Ticket     `json:"tickets"`
}

type preorderScanPayload struct {
	Order     model.OrderSummary         `json:"order"`
	Preorder  *model.ConcessionPreorder  `json:"preorder"`
	Preorders []model.ConcessionPreorder `json:"concession_preorders"`
}

// ValidateTicketCode resolves a scanned code and normalizes the ad hoc
// field-presence protocol into the explicit ScanResult union.
func (c *Client) ValidateTicketCode(ctx context.Context, sess *Session, code string) (model.ScanResult, error) {
	q := url.Values{}
	q.Set("code", code)

	var payload ticketScanPayload
	if err := c.do(ctx, sess, http.MethodGet, "/redemption/tickets", q, nil, &payload); err != nil {
		return model.ScanResult{}, err
	}

	switch {
	case payload.Ticket != nil:
		return model.ScanResult{
			Kind:    model.ScanSingleTicket,
			Order:   payload.Order,
			Tickets: []model.Ticket{*payload.Ticket},
		}, nil
	case len(payload.Tickets) > 0:
		return model.ScanResult{
			Kind:    model.ScanMultiTicket,
			Order:   payload.Order,
			Tickets: payload.Tickets,
		}, nil
	default:
		return model.ScanResult{}, ErrEmptyScan
	}
}

func (c *Client) ValidateConcessionCode(ctx context.Context, sess *Session, code string) (model.ScanResult, error) {
	q := url.Values{}
	q.Set("code", code)

	var payload preorderScanPayload
	if err := c.do(ctx, sess, http.MethodGet, "/redemption/concessions", q, nil, &payload); err != nil {
		return model.ScanResult{}, err
	}

	switch {
	case payload.Preorder != nil:
		return model.ScanResult{
			Kind:      model.ScanSinglePreorder,
			Order:     payload.Order,
			Preorders: []model.ConcessionPreorder{*payload.Preorder},
		}, nil
	case len(payload.Preorders) > 0:
		return model.ScanResult{
			Kind:      model.ScanMultiPreorder,
			Order:     payload.Order,
			Preorders: payload.Preorders,
		}, nil
	default:
		return model.ScanResult{}, ErrEmptyScan
	}
}

type markBody struct {
	IdempotencyKey string `json:"idempotencyKey"`
}

// MarkTicketUsed flips one ticket to USED. The server no-ops or rejects a
// redundant mark; either way the workflow's re-resolve shows the truth.
func (c *Client) MarkTicketUsed(ctx context.Context, sess *Session, ticketID uint) (model.Ticket, error) {
	var ticket model.Ticket
	body := markBody{IdempotencyKey: uuid.New().String()}
	err := c.do(ctx, sess, http.MethodPost, fmt.Sprintf("/tickets/%d/use", ticketID), nil, body, &ticket)
	return ticket, err
}

func (c *Client) MarkConcessionCompleted(ctx context.Context, sess *Session, preorderID uint) (model.ConcessionPreorder, error) {
	var preorder model.ConcessionPreorder
	body := markBody{IdempotencyKey: uuid.New().String()}
	err := c.do(ctx, sess, http.MethodPost, fmt.Sprintf("/concessions/%d/complete", preorderID), nil, body, &preorder)
	return preorder, err
}
