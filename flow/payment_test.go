package flow

import (
	"context"
	"testing"
	"time"

	"cinema_storefront/constants"
	"cinema_storefront/fulfillment"
	"cinema_storefront/model"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestValidateCard(t *testing.T) {
	t.Parallel()

	valid := model.CardInput{CardNumber: "4111 1111 1111 1111", Expiry: "12/28", CVV: "123"}

	t.Run("accepts a well-formed card", func(t *testing.T) {
		require.Empty(t, ValidateCard(valid, testNow))
	})

	t.Run("card number must be 16 digits after stripping separators", func(t *testing.T) {
		for _, number := range []string{"4111", "41111111111111112222", "4111-abcd-1111-1111"} {
			card := valid
			card.CardNumber = number
			errs := ValidateCard(card, testNow)
			require.Contains(t, errs, "cardNumber")
		}
	})

	t.Run("bypass cards skip the number check", func(t *testing.T) {
		card := valid
		card.CardNumber = "9999888877776666"
		require.Empty(t, ValidateCard(card, testNow))
	})

	t.Run("bypass card does not bypass the other fields", func(t *testing.T) {
		// Reserved demo card with a junk expiry still fails locally.
		card := model.CardInput{CardNumber: "9999888877776666", Expiry: "00/20", CVV: "123"}
		errs := ValidateCard(card, testNow)
		require.Contains(t, errs, "expiry")
	})

	t.Run("expiry in the past is rejected", func(t *testing.T) {
		card := valid
		card.Expiry = "01/24"
		errs := ValidateCard(card, testNow)
		require.Contains(t, errs, "expiry")

		// Current month is still valid.
		card.Expiry = "03/26"
		require.Empty(t, ValidateCard(card, testNow))
	})

	t.Run("two-digit year reads as current century", func(t *testing.T) {
		card := valid
		card.Expiry = "12/99" // 2099
		require.Empty(t, ValidateCard(card, testNow))
	})

	t.Run("malformed expiry strings", func(t *testing.T) {
		for _, expiry := range []string{"1/28", "13/28", "12-28", "12/2028", "ab/cd"} {
			card := valid
			card.Expiry = expiry
			require.Contains(t, ValidateCard(card, testNow), "expiry", "expiry %q", expiry)
		}
	})

	t.Run("cvv must be 3-4 digits", func(t *testing.T) {
		for _, cvv := range []string{"12", "12345", "12a"} {
			card := valid
			card.CVV = cvv
			require.Contains(t, ValidateCard(card, testNow), "cvv")
		}
		card := valid
		card.CVV = "1234"
		require.Empty(t, ValidateCard(card, testNow))
	})
}

type fakePaymentAPI struct {
	calls      int
	lastAmount float64
	result     model.PaymentResult
	err        error
}

func (f *fakePaymentAPI) SubmitPayment(ctx context.Context, orderID uint, card model.CardInput, amount float64) (model.PaymentResult, error) {
	f.calls++
	f.lastAmount = amount
	if f.err != nil {
		return model.PaymentResult{}, f.err
	}
	return f.result, nil
}

func discountedOrder() model.OrderSummary {
	// Line items sum to 120; the promotion knocks it to 100. The server's
	// figure is what must go over the wire.
	return model.OrderSummary{
		ID:             9,
		PublicCode:     "ORD-000009",
		Status:         constants.OrderPendingPayment,
		TotalAmount:    120,
		DiscountAmount: 20,
		FinalAmount:    100,
	}
}

func TestPaymentFlow_Submit(t *testing.T) {
	t.Parallel()

	goodCard := model.CardInput{CardNumber: "4111111111111111", Expiry: "12/28", CVV: "123"}

	t.Run("sends the order's final amount verbatim", func(t *testing.T) {
		api := &fakePaymentAPI{result: model.PaymentResult{
			Payment: model.Payment{Status: constants.PaymentPaid},
		}}
		pf := NewPaymentFlow(api, discountedOrder()).WithClock(func() time.Time { return testNow })

		snap, err := pf.Submit(context.Background(), goodCard)
		require.NoError(t, err)
		require.Equal(t, PaymentSucceeded, snap.State)
		require.Equal(t, 100.0, api.lastAmount)
	})

	t.Run("validation failures never reach the network", func(t *testing.T) {
		api := &fakePaymentAPI{}
		pf := NewPaymentFlow(api, discountedOrder()).WithClock(func() time.Time { return testNow })

		snap, err := pf.Submit(context.Background(), model.CardInput{
			CardNumber: "9999888877776666",
			Expiry:     "00/20",
			CVV:        "123",
		})
		require.NoError(t, err)
		require.Equal(t, PaymentAwaitingInput, snap.State)
		require.Contains(t, snap.FieldErrors, "expiry")
		require.Zero(t, api.calls)
	})

	t.Run("decline fails with the server message and allows retry", func(t *testing.T) {
		api := &fakePaymentAPI{result: model.PaymentResult{
			Payment: model.Payment{Status: constants.PaymentFailed},
			Message: "insufficient funds",
		}}
		pf := NewPaymentFlow(api, discountedOrder()).WithClock(func() time.Time { return testNow })

		snap, err := pf.Submit(context.Background(), goodCard)
		require.NoError(t, err)
		require.Equal(t, PaymentFailed, snap.State)
		require.Equal(t, "insufficient funds", snap.Message)

		// Retry from failed is allowed, and this one goes through.
		api.result = model.PaymentResult{Payment: model.Payment{Status: constants.PaymentPaid}}
		snap, err = pf.Submit(context.Background(), goodCard)
		require.NoError(t, err)
		require.Equal(t, PaymentSucceeded, snap.State)
		require.Equal(t, 2, api.calls)
	})

	t.Run("network failure uses a generic message", func(t *testing.T) {
		api := &fakePaymentAPI{err: &fulfillment.APIError{Status: 502, Message: ""}}
		pf := NewPaymentFlow(api, discountedOrder()).WithClock(func() time.Time { return testNow })

		snap, err := pf.Submit(context.Background(), goodCard)
		require.NoError(t, err)
		require.Equal(t, PaymentFailed, snap.State)
		require.NotEmpty(t, snap.Message)
	})

	t.Run("succeeded is terminal for the order", func(t *testing.T) {
		api := &fakePaymentAPI{result: model.PaymentResult{
			Payment: model.Payment{Status: constants.PaymentPaid},
		}}
		pf := NewPaymentFlow(api, discountedOrder()).WithClock(func() time.Time { return testNow })

		_, err := pf.Submit(context.Background(), goodCard)
		require.NoError(t, err)

		_, err = pf.Submit(context.Background(), goodCard)
		require.ErrorIs(t, err, ErrAlreadyPaid)
		require.Equal(t, 1, api.calls, "a double-click must not charge twice")
	})
}
