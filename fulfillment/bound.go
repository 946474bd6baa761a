package fulfillment

import (
	"context"

	"cinema_storefront/model"
)

// Bound pairs the client with one caller's session so the flow layer can
// depend on operation interfaces without carrying auth plumbing around.
type Bound struct {
	Client  *Client
	Session *Session
}

func (b Bound) ListOrders(ctx context.Context, f model.FeedFilters, offset, limit int) ([]model.OrderSummary, error) {
	return b.Client.ListOrders(ctx, b.Session, f, offset, limit)
}

func (b Bound) GetOrderDetail(ctx context.Context, orderID uint) (model.OrderDetail, error) {
	return b.Client.GetOrderDetail(ctx, b.Session, orderID)
}

func (b Bound) CancelOrder(ctx context.Context, orderID uint) (model.OrderSummary, error) {
	return b.Client.CancelOrder(ctx, b.Session, orderID)
}

func (b Bound) ReturnOrder(ctx context.Context, orderID uint) (model.OrderSummary, error) {
	return b.Client.ReturnOrder(ctx, b.Session, orderID)
}

func (b Bound) ValidateTicketCode(ctx context.Context, code string) (model.ScanResult, error) {
	return b.Client.ValidateTicketCode(ctx, b.Session, code)
}

func (b Bound) ValidateConcessionCode(ctx context.Context, code string) (model.ScanResult, error) {
	return b.Client.ValidateConcessionCode(ctx, b.Session, code)
}

func (b Bound) MarkTicketUsed(ctx context.Context, ticketID uint) (model.Ticket, error) {
	return b.Client.MarkTicketUsed(ctx, b.Session, ticketID)
}

func (b Bound) MarkConcessionCompleted(ctx context.Context, preorderID uint) (model.ConcessionPreorder, error) {
	return b.Client.MarkConcessionCompleted(ctx, b.Session, preorderID)
}

func (b Bound) SubmitPayment(ctx context.Context, orderID uint, card model.CardInput, amount float64) (model.PaymentResult, error) {
	return b.Client.SubmitPayment(ctx, b.Session, orderID, card, amount)
}

func (b Bound) ValidatePromotion(ctx context.Context, in model.PromotionCheckInput) (model.PromotionCheck, error) {
	return b.Client.ValidatePromotion(ctx, b.Session, in)
}
