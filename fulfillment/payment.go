package fulfillment

import (
	"context"
	"fmt"
	"net/http"

	"cinema_storefront/model"
)

type submitPaymentBody struct {
	model.CardInput
	// Amount is the order's finalAmount verbatim. Never recompute it from
	// line items, the server's figure is the only one that counts.
	Amount float64 `json:"amount"`
}

func (c *Client) SubmitPayment(ctx context.Context, sess *Session, orderID uint, card model.CardInput, amount float64) (model.PaymentResult, error) {
	var result model.PaymentResult
	body := submitPaymentBody{CardInput: card, Amount: amount}
	err := c.do(ctx, sess, http.MethodPost, fmt.Sprintf("/orders/%d/payment", orderID), nil, body, &result)
	return result, err
}

// ValidatePromotion checks a promo code against the order amount. Consumed
// once per order before payment.
func (c *Client) ValidatePromotion(ctx context.Context, sess *Session, in model.PromotionCheckInput) (model.PromotionCheck, error) {
	var check model.PromotionCheck
	err := c.do(ctx, sess, http.MethodPost, "/promotions/validate", nil, in, &check)
	return check, err
}
