package flow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"cinema_storefront/fulfillment"
	"cinema_storefront/model"
)

type WorkflowState string

const (
	StateIdle     WorkflowState = "idle"
	StateScanning WorkflowState = "scanning"
	StateResolved WorkflowState = "resolved"
	StateMutating WorkflowState = "mutating"
	StateError    WorkflowState = "error"
)

// ScanMode selects which validation endpoint a scanned code goes to. The
// scanner UI knows whether it is at the hall door or the concession counter.
type ScanMode string

const (
	ModeTicket     ScanMode = "ticket"
	ModeConcession ScanMode = "concession"
)

var (
	ErrNoResolution = errors.New("flow: no code resolved yet")
	// ErrOrderNotRedeemable is a precondition, not a failure: the data is
	// valid, the items just cannot be actioned. Staff get told why.
	ErrOrderNotRedeemable = errors.New("flow: order is cancelled or refunded")
	ErrMutationInFlight   = errors.New("flow: a mark operation is still running")
)

// RedemptionAPI is the slice of the fulfillment client the workflow uses.
type RedemptionAPI interface {
	ValidateTicketCode(ctx context.Context, code string) (model.ScanResult, error)
	ValidateConcessionCode(ctx context.Context, code string) (model.ScanResult, error)
	MarkTicketUsed(ctx context.Context, ticketID uint) (model.Ticket, error)
	MarkConcessionCompleted(ctx context.Context, preorderID uint) (model.ConcessionPreorder, error)
}

// Snapshot is what the scanner UI renders after every workflow step.
type Snapshot struct {
	State       WorkflowState      `json:"state"`
	Code        string             `json:"code,omitempty"`
	Result      *model.ScanResult  `json:"result,omitempty"`
	Blocked     bool               `json:"blocked"`
	BlockReason string             `json:"blockReason,omitempty"`
	Warnings    []string           `json:"warnings,omitempty"`
	ErrMsg      string             `json:"error,omitempty"`
}

// Event is published when a redemption mutation lands, for the staff live
// feed.
type Event struct {
	OrderCode string    `json:"orderCode"`
	ItemKind  string    `json:"itemKind"` // ticket | concession
	ItemID    uint      `json:"itemId"`
	At        time.Time `json:"at"`
}

// RedemptionWorkflow drives the staff scanning flow: resolve a code, show
// status, mark items used/completed, re-resolve. It never flips status
// locally — double-redemption prevention lives on the server, so after every
// mutation the server's view is fetched again and that is what gets shown.
type RedemptionWorkflow struct {
	api     RedemptionAPI
	clock   func() time.Time
	publish func(Event) // nil when no live feed is wired

	mu       sync.Mutex
	state    WorkflowState
	mode     ScanMode
	code     string
	seq      uint64 // scan generation: a fresh scan supersedes pending work
	result   *model.ScanResult
	errMsg   string
	lastUsed time.Time
}

func NewRedemptionWorkflow(api RedemptionAPI) *RedemptionWorkflow {
	return &RedemptionWorkflow{
		api:      api,
		clock:    time.Now,
		state:    StateIdle,
		lastUsed: time.Now(),
	}
}

// WithClock fixes the advisory-warning clock, for tests.
func (w *RedemptionWorkflow) WithClock(clock func() time.Time) *RedemptionWorkflow {
	w.clock = clock
	return w
}

// WithPublisher wires the live event feed.
func (w *RedemptionWorkflow) WithPublisher(publish func(Event)) *RedemptionWorkflow {
	w.publish = publish
	return w
}

// LastUsed supports idle pruning of per-device workflows.
func (w *RedemptionWorkflow) LastUsed() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastUsed
}

// Resolve turns a scanned code into current item status. A fresh scan clears
// any prior matches immediately so the operator is never looking at another
// code's results while this one is pending.
func (w *RedemptionWorkflow) Resolve(ctx context.Context, mode ScanMode, code string) (Snapshot, error) {
	w.mu.Lock()
	w.seq++
	seq := w.seq
	w.state = StateScanning
	w.mode = mode
	w.code = code
	w.result = nil
	w.errMsg = ""
	w.lastUsed = w.clock()
	w.mu.Unlock()

	return w.refresh(ctx, seq, mode, code)
}

// refresh re-runs validation for the code active at seq and installs the
// answer unless a newer scan has superseded it.
func (w *RedemptionWorkflow) refresh(ctx context.Context, seq uint64, mode ScanMode, code string) (Snapshot, error) {
	var (
		res model.ScanResult
		err error
	)
	if mode == ModeConcession {
		res, err = w.api.ValidateConcessionCode(ctx, code)
	} else {
		res, err = w.api.ValidateTicketCode(ctx, code)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if seq != w.seq {
		return w.snapshotLocked(), ErrSuperseded
	}
	if err != nil {
		w.state = StateError
		w.result = nil
		w.errMsg = scanErrorMessage(err)
		return w.snapshotLocked(), err
	}
	w.state = StateResolved
	w.result = &res
	return w.snapshotLocked(), nil
}

// MarkSingle marks one ticket used or one preorder completed, then
// re-resolves the same code so the displayed state is the server's.
func (w *RedemptionWorkflow) MarkSingle(ctx context.Context, itemID uint) (Snapshot, error) {
	return w.mark(ctx, []uint{itemID})
}

// MarkBulk issues each item's mutation independently and concurrently.
// Partial failure is recoverable: the terminating re-resolve always runs
// after every sub-call settles, and what it returns is the truth.
func (w *RedemptionWorkflow) MarkBulk(ctx context.Context, itemIDs []uint) (Snapshot, error) {
	return w.mark(ctx, itemIDs)
}

func (w *RedemptionWorkflow) mark(ctx context.Context, itemIDs []uint) (Snapshot, error) {
	w.mu.Lock()
	if w.state == StateMutating {
		snap := w.snapshotLocked()
		w.mu.Unlock()
		return snap, ErrMutationInFlight
	}
	if w.state != StateResolved || w.result == nil {
		snap := w.snapshotLocked()
		w.mu.Unlock()
		return snap, ErrNoResolution
	}
	if model.OrderTerminated(w.result.Order.Status) {
		snap := w.snapshotLocked()
		w.mu.Unlock()
		return snap, ErrOrderNotRedeemable
	}
	seq := w.seq
	mode := w.mode
	code := w.code
	orderCode := w.result.Order.PublicCode
	w.state = StateMutating
	w.lastUsed = w.clock()
	w.mu.Unlock()

	// Fan out, then wait for every sub-call to settle before the single
	// reconciling re-resolve.
	var (
		wg       sync.WaitGroup
		failMu   sync.Mutex
		failures []error
	)
	for _, id := range itemIDs {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			var err error
			if mode == ModeConcession {
				_, err = w.api.MarkConcessionCompleted(ctx, id)
			} else {
				_, err = w.api.MarkTicketUsed(ctx, id)
			}
			if err != nil {
				if fulfillment.IsConflict(err) {
					// Already redeemed. The end state is what the operator
					// cares about; the re-resolve will show it.
					return
				}
				failMu.Lock()
				failures = append(failures, err)
				failMu.Unlock()
				return
			}
			if w.publish != nil {
				w.publish(Event{
					OrderCode: orderCode,
					ItemKind:  string(mode),
					ItemID:    id,
					At:        w.clock(),
				})
			}
		}(id)
	}
	wg.Wait()

	snap, err := w.refresh(ctx, seq, mode, code)
	if err != nil {
		return snap, err
	}
	if len(failures) > 0 {
		log.Printf("redemption: %d of %d mark calls failed for order %s: %v",
			len(failures), len(itemIDs), orderCode, failures[0])
		snap.ErrMsg = fmt.Sprintf("%d item(s) could not be marked, shown state is current", len(failures))
	}
	return snap, nil
}

// Clear returns the workflow to idle, e.g. when the operator dismisses an
// error.
func (w *RedemptionWorkflow) Clear() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seq++
	w.state = StateIdle
	w.code = ""
	w.result = nil
	w.errMsg = ""
	return w.snapshotLocked()
}

// Current reports the workflow state without touching it.
func (w *RedemptionWorkflow) Current() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *RedemptionWorkflow) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:  w.state,
		Code:   w.code,
		ErrMsg: w.errMsg,
	}
	if w.result == nil {
		return snap
	}
	res := *w.result
	snap.Result = &res

	if model.OrderTerminated(res.Order.Status) {
		snap.Blocked = true
		snap.BlockReason = fmt.Sprintf("order %s is %s, its items cannot be redeemed",
			res.Order.PublicCode, res.Order.Status)
	}
	if res.IsTicket() {
		now := w.clock()
		for _, t := range res.Tickets {
			if model.SessionEnded(t, now) {
				snap.Warnings = append(snap.Warnings,
					fmt.Sprintf("session for ticket %s has already ended", t.TicketCode))
			}
		}
	}
	return snap
}

func scanErrorMessage(err error) string {
	if fulfillment.IsNotFound(err) || errors.Is(err, fulfillment.ErrEmptyScan) {
		return "code does not match any ticket or preorder"
	}
	var ae *fulfillment.APIError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return "could not validate code, please retry"
}
