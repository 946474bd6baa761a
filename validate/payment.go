package validate

import (
	"cinema_storefront/constants"
	"cinema_storefront/model"
	"cinema_storefront/utils"

	"github.com/gofiber/fiber/v2"
)

// SubmitPayment only checks request shape here. Card format rules (digits,
// expiry, CVV) belong to the payment flow so they stay testable without HTTP.
func SubmitPayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.SubmitPaymentInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponse(c, 400, constants.ERROR_INPUT, err)
		}
		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponse(c, 400, err.Error(), err)
		}
		c.Locals("input", input)
		return c.Next()
	}
}

func CheckPromotion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.PromotionCheckInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponse(c, 400, constants.ERROR_INPUT, err)
		}
		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponse(c, 400, err.Error(), err)
		}
		c.Locals("input", input)
		return c.Next()
	}
}
