package fulfillment

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"cinema_storefront/model"
)

// ListOrders fetches one page of order summaries. Receiving fewer than limit
// items is the only no-more-pages signal the API gives.
func (c *Client) ListOrders(ctx context.Context, sess *Session, f model.FeedFilters, offset, limit int) ([]model.OrderSummary, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	if f.Tab != "" {
		q.Set("tab", f.Tab)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}

	var orders []model.OrderSummary
	if err := c.do(ctx, sess, http.MethodGet, "/orders", q, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrderDetail may fail independently of the summary being valid; callers
// fall back to a degraded view (see flow.DetailReconciler).
func (c *Client) GetOrderDetail(ctx context.Context, sess *Session, orderID uint) (model.OrderDetail, error) {
	var detail model.OrderDetail
	err := c.do(ctx, sess, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), nil, nil, &detail)
	return detail, err
}

// CancelOrder is only valid while the order is PENDING_PAYMENT; the API
// enforces that, the client just relays the answer.
func (c *Client) CancelOrder(ctx context.Context, sess *Session, orderID uint) (model.OrderSummary, error) {
	var order model.OrderSummary
	err := c.do(ctx, sess, http.MethodPost, fmt.Sprintf("/orders/%d/cancel", orderID), nil, nil, &order)
	return order, err
}

// ReturnOrder requests a refund for a PAID order.
func (c *Client) ReturnOrder(ctx context.Context, sess *Session, orderID uint) (model.OrderSummary, error) {
	var order model.OrderSummary
	err := c.do(ctx, sess, http.MethodPost, fmt.Sprintf("/orders/%d/return", orderID), nil, nil, &order)
	return order, err
}
