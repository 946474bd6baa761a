package helper

import (
	"sync"
	"time"

	"cinema_storefront/flow"
	"cinema_storefront/model"

	"github.com/google/uuid"
)

// The registries keep per-device / per-order flow state alive between
// requests so a staff scanner or a checkout page resumes where it left off.
// Everything here is in-memory on purpose: it is client-side bookkeeping,
// the fulfillment API stays the only authority.

type WorkflowRegistry struct {
	mu  sync.Mutex
	all map[string]*flow.RedemptionWorkflow
	ttl time.Duration
}

func NewWorkflowRegistry(ttl time.Duration) *WorkflowRegistry {
	return &WorkflowRegistry{all: make(map[string]*flow.RedemptionWorkflow), ttl: ttl}
}

func (r *WorkflowRegistry) Get(deviceKey string, create func() *flow.RedemptionWorkflow) *flow.RedemptionWorkflow {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.all[deviceKey]; ok {
		return w
	}
	w := create()
	r.all[deviceKey] = w
	return w
}

func (r *WorkflowRegistry) Prune(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for key, w := range r.all {
		if now.Sub(w.LastUsed()) > r.ttl {
			delete(r.all, key)
			n++
		}
	}
	return n
}

type PaymentRegistry struct {
	mu  sync.Mutex
	all map[uint]*flow.PaymentFlow
	ttl time.Duration
}

func NewPaymentRegistry(ttl time.Duration) *PaymentRegistry {
	return &PaymentRegistry{all: make(map[uint]*flow.PaymentFlow), ttl: ttl}
}

func (r *PaymentRegistry) Lookup(orderID uint) (*flow.PaymentFlow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.all[orderID]
	return f, ok
}

func (r *PaymentRegistry) Get(orderID uint, create func() *flow.PaymentFlow) *flow.PaymentFlow {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.all[orderID]; ok {
		return f
	}
	f := create()
	r.all[orderID] = f
	return f
}

func (r *PaymentRegistry) Prune(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, f := range r.all {
		if now.Sub(f.LastUsed()) > r.ttl {
			delete(r.all, id)
			n++
		}
	}
	return n
}

type feedEntry struct {
	pager    *flow.Pager[model.OrderSummary]
	lastUsed time.Time
}

type FeedRegistry struct {
	mu  sync.Mutex
	all map[string]*feedEntry
	ttl time.Duration
}

func NewFeedRegistry(ttl time.Duration) *FeedRegistry {
	return &FeedRegistry{all: make(map[string]*feedEntry), ttl: ttl}
}

// Open registers a new pager and hands back its feed id.
func (r *FeedRegistry) Open(pager *flow.Pager[model.OrderSummary]) string {
	id := uuid.New().String()
	r.mu.Lock()
	r.all[id] = &feedEntry{pager: pager, lastUsed: time.Now()}
	r.mu.Unlock()
	return id
}

func (r *FeedRegistry) Get(id string) (*flow.Pager[model.OrderSummary], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.all[id]
	if !ok {
		return nil, false
	}
	entry.lastUsed = time.Now()
	return entry.pager, true
}

func (r *FeedRegistry) Prune(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, entry := range r.all {
		if now.Sub(entry.lastUsed) > r.ttl {
			delete(r.all, id)
			n++
		}
	}
	return n
}
