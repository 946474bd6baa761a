package router

import (
	"cinema_storefront/handler"
	"cinema_storefront/middleware"
	"cinema_storefront/validate"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App) {
	api := app.Group("/api", logger.New())
	v1 := api.Group("/v1", logger.New())

	order := v1.Group("/orders", logger.New())
	order.Post("/feed", middleware.Protected(), validate.OpenFeed(), handler.OpenOrderFeed)
	order.Post("/feed/:feedId/more", middleware.Protected(), handler.LoadMoreOrders)
	order.Post("/detail", middleware.Protected(), handler.GetOrderDetail)
	order.Post("/:orderId/cancel", middleware.Protected(), validate.GetById("orderId"), handler.CancelOrder)
	order.Post("/:orderId/return", middleware.Protected(), validate.GetById("orderId"), handler.ReturnOrder)
	order.Post("/:orderId/payment", middleware.Protected(), validate.GetById("orderId"), validate.SubmitPayment(), handler.SubmitPayment)

	promotion := v1.Group("/promotion", logger.New())
	promotion.Post("/check", middleware.Protected(), validate.CheckPromotion(), handler.CheckPromotion)

	staff := v1.Group("/staff", logger.New())
	staff.Post("/scan", middleware.Protected(), validate.StaffOnly(), validate.Scan(), handler.Scan)
	staff.Get("/scan", middleware.Protected(), validate.StaffOnly(), handler.CurrentScan)
	staff.Post("/scan/clear", middleware.Protected(), validate.StaffOnly(), handler.ClearScan)
	staff.Post("/scan/mark", middleware.Protected(), validate.StaffOnly(), validate.Mark(), handler.Mark)

	app.Get("/ws/redemption/:cinemaId", websocket.New(handler.RedemptionFeed))
}
