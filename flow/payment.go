package flow

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"cinema_storefront/constants"
	"cinema_storefront/fulfillment"
	"cinema_storefront/model"
)

type PaymentState string

const (
	PaymentAwaitingInput PaymentState = "awaiting_input"
	PaymentValidating    PaymentState = "validating"
	PaymentSubmitting    PaymentState = "submitting"
	PaymentSucceeded     PaymentState = "succeeded"
	PaymentFailed        PaymentState = "failed"
)

var (
	// ErrAlreadyPaid: succeeded is final for the order within the session,
	// a double-click must not produce a second charge attempt.
	ErrAlreadyPaid      = errors.New("flow: payment already succeeded for this order")
	ErrSubmitInFlight   = errors.New("flow: payment submission in flight")
)

// bypassCards are the demo/test card numbers that skip the Luhn-less format
// check.
var bypassCards = map[string]bool{
	"9999888877776666": true,
	"8888777766665555": true,
}

var cvvPattern = regexp.MustCompile(`^\d{3,4}$`)

// ValidateCard is format-only validation; authorization belongs to the
// fulfillment API. Failures are field-scoped and never reach the network.
func ValidateCard(card model.CardInput, now time.Time) map[string]string {
	errs := map[string]string{}

	digits := strings.NewReplacer(" ", "", "-", "").Replace(card.CardNumber)
	if !bypassCards[digits] {
		if len(digits) != 16 || strings.IndexFunc(digits, notDigit) >= 0 {
			errs["cardNumber"] = "card number must be 16 digits"
		}
	}

	if month, year, ok := parseExpiry(card.Expiry); !ok {
		errs["expiry"] = "expiry must be MM/YY"
	} else if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		errs["expiry"] = "card has expired"
	}

	if !cvvPattern.MatchString(card.CVV) {
		errs["cvv"] = "CVV must be 3-4 digits"
	}
	return errs
}

func notDigit(r rune) bool { return r < '0' || r > '9' }

// parseExpiry reads MM/YY with the two-digit year in the current century, so
// "12/99" means 2099.
func parseExpiry(s string) (month, year int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, false
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	yy, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return month, 2000 + yy, true
}

// PaymentAPI is the slice of the fulfillment client the flow uses.
type PaymentAPI interface {
	SubmitPayment(ctx context.Context, orderID uint, card model.CardInput, amount float64) (model.PaymentResult, error)
}

type PaymentSnapshot struct {
	State       PaymentState         `json:"state"`
	FieldErrors map[string]string    `json:"fieldErrors,omitempty"`
	Message     string               `json:"message,omitempty"`
	Result      *model.PaymentResult `json:"result,omitempty"`
}

// PaymentFlow submits one payment attempt for one order. The amount sent is
// the order's finalAmount captured at construction, never a recomputed sum.
// Retry is allowed only from failed; succeeded is terminal.
type PaymentFlow struct {
	api         PaymentAPI
	clock       func() time.Time
	orderID     uint
	finalAmount float64

	mu       sync.Mutex
	state    PaymentState
	message  string
	result   *model.PaymentResult
	lastUsed time.Time
}

func NewPaymentFlow(api PaymentAPI, order model.OrderSummary) *PaymentFlow {
	return &PaymentFlow{
		api:         api,
		clock:       time.Now,
		orderID:     order.ID,
		finalAmount: order.FinalAmount,
		state:       PaymentAwaitingInput,
		lastUsed:    time.Now(),
	}
}

func (f *PaymentFlow) WithClock(clock func() time.Time) *PaymentFlow {
	f.clock = clock
	return f
}

func (f *PaymentFlow) LastUsed() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastUsed
}

func (f *PaymentFlow) Current() PaymentSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *PaymentFlow) Submit(ctx context.Context, card model.CardInput) (PaymentSnapshot, error) {
	f.mu.Lock()
	f.lastUsed = f.clock()
	switch f.state {
	case PaymentSucceeded:
		snap := f.snapshotLocked()
		f.mu.Unlock()
		return snap, ErrAlreadyPaid
	case PaymentSubmitting, PaymentValidating:
		snap := f.snapshotLocked()
		f.mu.Unlock()
		return snap, ErrSubmitInFlight
	}

	f.state = PaymentValidating
	if errs := ValidateCard(card, f.clock()); len(errs) > 0 {
		f.state = PaymentAwaitingInput
		snap := f.snapshotLocked()
		snap.FieldErrors = errs
		f.mu.Unlock()
		return snap, nil
	}
	f.state = PaymentSubmitting
	f.message = ""
	f.mu.Unlock()

	result, err := f.api.SubmitPayment(ctx, f.orderID, card, f.finalAmount)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = PaymentFailed
		f.message = paymentErrorMessage(err)
		return f.snapshotLocked(), nil
	}
	if result.Payment.Status != constants.PaymentPaid {
		f.state = PaymentFailed
		if result.Message != "" {
			f.message = result.Message
		} else {
			f.message = "payment was declined, please try again"
		}
		return f.snapshotLocked(), nil
	}

	f.state = PaymentSucceeded
	f.result = &result
	return f.snapshotLocked(), nil
}

func (f *PaymentFlow) snapshotLocked() PaymentSnapshot {
	snap := PaymentSnapshot{State: f.state, Message: f.message}
	if f.result != nil {
		res := *f.result
		snap.Result = &res
	}
	return snap
}

func paymentErrorMessage(err error) string {
	var ae *fulfillment.APIError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return "payment could not be processed, please try again"
}
