package handler

import (
	"context"
	"errors"

	"cinema_storefront/constants"
	"cinema_storefront/flow"
	"cinema_storefront/fulfillment"
	"cinema_storefront/middleware"
	"cinema_storefront/model"
	"cinema_storefront/utils"

	"github.com/gofiber/fiber/v2"
)

// OpenOrderFeed starts a fresh infinite-scroll view for one filter set and
// returns its first page plus a feed id for subsequent load-more calls.
// Changing filters means opening a new feed, which is exactly the reset
// semantics the pager wants.
func OpenOrderFeed(c *fiber.Ctx) error {
	input := c.Locals("input").(model.OpenFeedInput)
	token, _ := c.Locals("rawToken").(string)

	fetch := func(ctx context.Context, f model.FeedFilters, offset, limit int) ([]model.OrderSummary, error) {
		return API.ListOrders(ctx, &fulfillment.Session{Token: token}, f, offset, limit)
	}
	pager := flow.NewPager(fetch, model.DefaultPageSize)
	feedId := Feeds.Open(pager)

	items, hasMore, err := pager.Reset(c.Context(), input.FeedFilters)
	if err != nil && !errors.Is(err, flow.ErrSuperseded) {
		if fulfillment.IsUnauthorized(err) {
			return utils.ErrorResponse(c, 401, constants.UNAUTHORIZED, err)
		}
		// Feed stays usable: the next load-more retries the same page.
		return utils.ErrorResponse(c, fiber.StatusBadGateway, constants.UPSTREAM_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"feedId":  feedId,
		"rows":    partitionRows(items, input.Tab),
		"hasMore": hasMore,
	})
}

// LoadMoreOrders advances an open feed by one page.
func LoadMoreOrders(c *fiber.Ctx) error {
	feedId := c.Params("feedId")
	pager, ok := Feeds.Get(feedId)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Feed expired, reopen it", nil)
	}

	tab := c.Query("tab")
	items, hasMore, err := pager.LoadMore(c.Context())
	if err != nil && !errors.Is(err, flow.ErrSuperseded) {
		if fulfillment.IsUnauthorized(err) {
			return utils.ErrorResponse(c, 401, constants.UNAUTHORIZED, err)
		}
		return utils.ErrorResponse(c, fiber.StatusBadGateway, constants.UPSTREAM_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"feedId":  feedId,
		"rows":    partitionRows(items, tab),
		"hasMore": hasMore,
	})
}

// partitionRows applies the one order classifier so a tabbed view can never
// disagree with itself about which bucket an order is in.
func partitionRows(items []model.OrderSummary, tab string) []model.OrderSummary {
	if tab == "" {
		return items
	}
	rows := make([]model.OrderSummary, 0, len(items))
	for _, o := range items {
		if string(model.ClassifyOrder(o)) == tab {
			rows = append(rows, o)
		}
	}
	return rows
}

// GetOrderDetail reconciles an already-known summary with the authoritative
// detail. The summary travels in the request body so a failed detail fetch
// can still produce a degraded view instead of a blank screen.
func GetOrderDetail(c *fiber.Ctx) error {
	var summary model.OrderSummary
	if err := c.BodyParser(&summary); err != nil || summary.ID == 0 {
		return utils.ErrorResponse(c, 400, constants.ERROR_INPUT, err)
	}

	reconciler := flow.NewDetailReconciler(bound(c))
	detail, err := reconciler.Open(c.Context(), summary)
	if err != nil {
		if errors.Is(err, flow.ErrSuperseded) {
			return utils.SuccessResponse(c, fiber.StatusOK, nil)
		}
		return utils.ErrorResponse(c, 401, constants.UNAUTHORIZED, err)
	}

	// One QR for the whole order, same as the paper ticket counter prints.
	response := fiber.Map{
		"detail": detail,
		"class":  model.ClassifyOrder(detail.OrderSummary),
		"qrCode": utils.QRCodeDataURL(detail.PublicCode, 400),
	}
	if !detail.Degraded {
		pickupCodes := fiber.Map{}
		for _, p := range detail.Preorders {
			if p.PickupCode != "" {
				pickupCodes[p.PickupCode] = utils.QRCodeDataURL(p.PickupCode, 256)
			}
		}
		response["pickupQrCodes"] = pickupCodes
	}
	return utils.SuccessResponse(c, fiber.StatusOK, response)
}

// CancelOrder relays a cancellation request; valid only while the order is
// awaiting payment, which the fulfillment API enforces.
func CancelOrder(c *fiber.Ctx) error {
	orderId := c.Locals("inputId").(int)

	order, err := bound(c).CancelOrder(c.Context(), uint(orderId))
	if err != nil {
		return relayOrderError(c, err)
	}

	if email := c.Query("email"); email != "" {
		utils.SendCancellationEmail(email, order.PublicCode, order.FinalAmount)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, order)
}

// ReturnOrder requests a refund for a paid order.
func ReturnOrder(c *fiber.Ctx) error {
	orderId := c.Locals("inputId").(int)

	order, err := bound(c).ReturnOrder(c.Context(), uint(orderId))
	if err != nil {
		return relayOrderError(c, err)
	}

	if email := c.Query("email"); email != "" {
		utils.SendCancellationEmail(email, order.PublicCode, order.FinalAmount)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, order)
}

func relayOrderError(c *fiber.Ctx, err error) error {
	if middleware.SessionExpired(c) || fulfillment.IsUnauthorized(err) {
		return utils.ErrorResponse(c, 401, constants.UNAUTHORIZED, err)
	}
	if fulfillment.IsNotFound(err) {
		return utils.ErrorResponse(c, 404, constants.ORDER_NOT_FOUND, err)
	}
	var ae *fulfillment.APIError
	if errors.As(err, &ae) && ae.Status < 500 {
		return utils.ErrorResponse(c, ae.Status, ae.Message, err)
	}
	return utils.ErrorResponse(c, fiber.StatusBadGateway, constants.UPSTREAM_ERROR, err)
}
