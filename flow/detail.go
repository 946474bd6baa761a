package flow

import (
	"context"
	"log"
	"sync"

	"cinema_storefront/fulfillment"
	"cinema_storefront/model"

	"github.com/jinzhu/copier"
)

// DetailFetcher is the slice of the fulfillment client the reconciler needs.
type DetailFetcher interface {
	GetOrderDetail(ctx context.Context, orderID uint) (model.OrderDetail, error)
}

// DetailReconciler fetches one order's authoritative detail on demand. When
// the detail endpoint fails but the summary is already known, it serves a
// degraded view instead of nothing: summaries carry enough for a minimal
// render. Responses are keyed by order id so a slow fetch can never paint a
// different order's detail.
type DetailReconciler struct {
	api DetailFetcher

	mu       sync.Mutex
	selected uint // 0 = nothing open
}

func NewDetailReconciler(api DetailFetcher) *DetailReconciler {
	return &DetailReconciler{api: api}
}

func (r *DetailReconciler) Open(ctx context.Context, summary model.OrderSummary) (model.OrderDetail, error) {
	r.mu.Lock()
	r.selected = summary.ID
	r.mu.Unlock()

	detail, err := r.api.GetOrderDetail(ctx, summary.ID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.selected != summary.ID {
		return model.OrderDetail{}, ErrSuperseded
	}

	if err != nil {
		if fulfillment.IsUnauthorized(err) {
			// Auth failures must not be papered over with a degraded view.
			return model.OrderDetail{}, err
		}
		log.Printf("order %s: detail fetch failed, serving degraded view: %v", summary.PublicCode, err)
		return degradedDetail(summary), nil
	}
	return detail, nil
}

// Close marks nothing as open; late responses for the closed order are
// discarded.
func (r *DetailReconciler) Close() {
	r.mu.Lock()
	r.selected = 0
	r.mu.Unlock()
}

func degradedDetail(summary model.OrderSummary) model.OrderDetail {
	var detail model.OrderDetail
	if err := copier.Copy(&detail.OrderSummary, &summary); err != nil {
		detail.OrderSummary = summary
	}
	detail.Tickets = []model.Ticket{}
	detail.Preorders = []model.ConcessionPreorder{}
	detail.Degraded = true
	return detail
}
