package main

import (
	"log"
	"os"

	"cinema_storefront/fulfillment"
	"cinema_storefront/handler"
	"cinema_storefront/helper"
	"cinema_storefront/router"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}

	app := fiber.New()

	origin := os.Getenv("CORS_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173/"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origin,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept, X-Device-Id",
		AllowCredentials: true,
		ExposeHeaders:    "Set-Cookie",
		MaxAge:           600,
	}))

	handler.Setup(fulfillment.NewClientFromEnv())
	defer helper.StopRegistryJanitor()

	router.SetupRoutes(app)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8002"
	}
	log.Fatal(app.Listen(":" + port))
}
