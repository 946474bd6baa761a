package validate

import (
	"cinema_storefront/constants"
	"cinema_storefront/model"
	"cinema_storefront/utils"

	"github.com/gofiber/fiber/v2"
)

func OpenFeed() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.OpenFeedInput
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
