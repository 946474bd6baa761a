package handler

import (
	"time"

	"cinema_storefront/fulfillment"
	"cinema_storefront/helper"
	"cinema_storefront/middleware"

	"github.com/gofiber/fiber/v2"
)

var (
	API *fulfillment.Client

	Workflows = helper.NewWorkflowRegistry(30 * time.Minute)
	Payments  = helper.NewPaymentRegistry(30 * time.Minute)
	Feeds     = helper.NewFeedRegistry(30 * time.Minute)
)

// Setup wires the fulfillment client and starts the registry janitor.
func Setup(api *fulfillment.Client) {
	API = api
	helper.StartRegistryJanitor(Workflows, Payments, Feeds)
}

func bound(c *fiber.Ctx) fulfillment.Bound {
	return fulfillment.Bound{Client: API, Session: middleware.SessionFromCtx(c)}
}
