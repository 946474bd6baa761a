package handler

import (
	"cinema_storefront/constants"
	"cinema_storefront/flow"
	"cinema_storefront/fulfillment"
	"cinema_storefront/model"
	"cinema_storefront/utils"

	"github.com/gofiber/fiber/v2"
)

// redirectGraceMs is the UX pause before the UI navigates away from a
// successful payment. Cosmetic, not a correctness knob.
const redirectGraceMs = 1500

// SubmitPayment runs one payment attempt through the per-order flow. The
// flow is created from the order's authoritative detail so the submitted
// amount is the server's finalAmount, never a sum the client computed.
func SubmitPayment(c *fiber.Ctx) error {
	orderId := uint(c.Locals("inputId").(int))
	input := c.Locals("input").(model.SubmitPaymentInput)

	pf, ok := Payments.Lookup(orderId)
	if !ok {
		detail, err := bound(c).GetOrderDetail(c.Context(), orderId)
		if err != nil {
			return relayOrderError(c, err)
		}
		// The flow outlives this request; token-only session, no fiber ctx.
		token, _ := c.Locals("rawToken").(string)
		api := fulfillment.Bound{Client: API, Session: &fulfillment.Session{Token: token}}
		pf = Payments.Get(orderId, func() *flow.PaymentFlow {
			return flow.NewPaymentFlow(api, detail.OrderSummary)
		})
	}

	snap, err := pf.Submit(c.Context(), input.CardInput)
	if err != nil {
		switch err {
		case flow.ErrAlreadyPaid:
			return utils.ErrorResponse(c, fiber.StatusConflict, "Payment already completed for this order", err)
		case flow.ErrSubmitInFlight:
			return utils.ErrorResponse(c, fiber.StatusConflict, "Payment already submitting", err)
		default:
			return utils.ErrorResponse(c, fiber.StatusBadGateway, constants.UPSTREAM_ERROR, err)
		}
	}

	if len(snap.FieldErrors) > 0 {
		// Local validation failure: field-scoped, never sent upstream.
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":     constants.ERROR_INPUT,
			"fieldErrors": snap.FieldErrors,
		})
	}

	response := fiber.Map{"payment": snap}
	if snap.State == flow.PaymentSucceeded {
		response["redirectAfterMs"] = redirectGraceMs
	}
	return utils.SuccessResponse(c, fiber.StatusOK, response)
}

// CheckPromotion validates a promo code against the order amount before
// payment.
func CheckPromotion(c *fiber.Ctx) error {
	input := c.Locals("input").(model.PromotionCheckInput)

	check, err := bound(c).ValidatePromotion(c.Context(), input)
	if err != nil {
		return relayOrderError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, check)
}
