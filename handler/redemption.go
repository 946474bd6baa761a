package handler

import (
	"errors"
	"fmt"

	"cinema_storefront/constants"
	"cinema_storefront/flow"
	"cinema_storefront/fulfillment"
	"cinema_storefront/model"
	"cinema_storefront/utils"
	"cinema_storefront/validate"

	"github.com/gofiber/fiber/v2"
)

// deviceKey identifies one scanner device so its workflow survives between
// requests. Staff apps send X-Device-Id; without it the account id is the
// best available key.
func deviceKey(c *fiber.Ctx, claim *model.TokenClaim) string {
	if id := c.Get("X-Device-Id"); id != "" {
		return fmt.Sprintf("%d:%s", claim.AccountId, id)
	}
	return fmt.Sprintf("%d", claim.AccountId)
}

func workflowFor(c *fiber.Ctx, claim *model.TokenClaim) *flow.RedemptionWorkflow {
	// The workflow outlives this request, so it gets a token-only session;
	// the fiber context must not leak into the registry.
	token, _ := c.Locals("rawToken").(string)
	api := fulfillment.Bound{Client: API, Session: &fulfillment.Session{Token: token}}
	cinemaId := uint(0)
	if claim.CinemaId != nil {
		cinemaId = *claim.CinemaId
	}
	return Workflows.Get(deviceKey(c, claim), func() *flow.RedemptionWorkflow {
		return flow.NewRedemptionWorkflow(api).WithPublisher(func(ev flow.Event) {
			PublishRedemptionEvent(cinemaId, ev)
		})
	})
}

// Scan resolves a scanned code for the staff device and returns the
// workflow snapshot: matched items, their current status, preconditions.
func Scan(c *fiber.Ctx) error {
	claim := c.Locals("claim").(*model.TokenClaim)
	input := c.Locals("input").(validate.ScanInput)

	wf := workflowFor(c, claim)
	snap, err := wf.Resolve(c.Context(), flow.ScanMode(input.Mode), input.Code)
	if err != nil {
		if errors.Is(err, flow.ErrSuperseded) {
			// A newer scan on this device won; show its state instead.
			return utils.SuccessResponse(c, fiber.StatusOK, wf.Current())
		}
		if fulfillment.IsUnauthorized(err) {
			return utils.ErrorResponse(c, 401, constants.UNAUTHORIZED, err)
		}
		if fulfillment.IsNotFound(err) || errors.Is(err, fulfillment.ErrEmptyScan) {
			return utils.ErrorResponse(c, 404, constants.CODE_NOT_FOUND, err)
		}
		return utils.ErrorResponse(c, fiber.StatusBadGateway, constants.UPSTREAM_ERROR, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, snap)
}

// CurrentScan reports the device's workflow state without changing it.
func CurrentScan(c *fiber.Ctx) error {
	claim := c.Locals("claim").(*model.TokenClaim)
	return utils.SuccessResponse(c, fiber.StatusOK, workflowFor(c, claim).Current())
}

// ClearScan dismisses the current resolution or error.
func ClearScan(c *fiber.Ctx) error {
	claim := c.Locals("claim").(*model.TokenClaim)
	return utils.SuccessResponse(c, fiber.StatusOK, workflowFor(c, claim).Clear())
}

// Mark marks the given items used/completed and returns the re-resolved
// state. One id or many, the workflow treats both the same way.
func Mark(c *fiber.Ctx) error {
	claim := c.Locals("claim").(*model.TokenClaim)
	input := c.Locals("input").(validate.MarkInput)

	wf := workflowFor(c, claim)
	snap, err := wf.MarkBulk(c.Context(), input.IDs)
	if err != nil {
		switch {
		case errors.Is(err, flow.ErrNoResolution):
			return utils.ErrorResponse(c, 400, "Scan a code before marking", err)
		case errors.Is(err, flow.ErrOrderNotRedeemable):
			// Precondition, not a failure: tell staff why.
			return utils.ErrorResponse(c, fiber.StatusConflict, snap.BlockReason, err)
		case errors.Is(err, flow.ErrMutationInFlight):
			return utils.ErrorResponse(c, fiber.StatusConflict, "Previous mark still running", err)
		case errors.Is(err, flow.ErrSuperseded):
			return utils.SuccessResponse(c, fiber.StatusOK, wf.Current())
		case fulfillment.IsUnauthorized(err):
			return utils.ErrorResponse(c, 401, constants.UNAUTHORIZED, err)
		default:
			// The marks may have landed; only the refresh failed. The next
			// scan shows the truth.
			return utils.ErrorResponse(c, fiber.StatusBadGateway, constants.UPSTREAM_ERROR, err)
		}
	}
	return utils.SuccessResponse(c, fiber.StatusOK, snap)
}
