package validate

import (
	"errors"

	"cinema_storefront/helper"
	"cinema_storefront/utils"

	"github.com/gofiber/fiber/v2"
)

type ScanInput struct {
	Mode string `json:"mode" validate:"required,oneof=ticket concession"`
	Code string `json:"code" validate:"required,min=4"`
}

type MarkInput struct {
	IDs []uint `json:"ids" validate:"required,min=1"`
}

// StaffOnly gates the scanner endpoints.
func StaffOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claim, err := helper.GetClaims(c)
		if err != nil || !helper.IsStaff(claim) {
			return utils.ErrorResponse(c, fiber.StatusForbidden, "Staff permission required", errors.New("not permission"))
		}
		c.Locals("claim", claim)
		return c.Next()
	}
}

func Scan() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input ScanInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponse(c, 400, "Invalid input", err)
		}
		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponse(c, 400, err.Error(), err)
		}
		c.Locals("input", input)
		return c.Next()
	}
}

func Mark() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input MarkInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponse(c, 400, "Invalid input", err)
		}
		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponse(c, 400, err.Error(), err)
		}
		c.Locals("input", input)
		return c.Next()
	}
}
