package helper

import (
	"errors"
	"os"

	"cinema_storefront/model"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var JwtSecret = []byte(os.Getenv("JWT_SECRET"))

const (
	RoleStaff    = "STAFF"
	RoleCustomer = "CUSTOMER"
)

// GetClaims reads the parsed token placed in locals by middleware.Protected.
func GetClaims(c *fiber.Ctx) (*model.TokenClaim, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, errors.New("no token in context")
	}
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}

	claim := &model.TokenClaim{}
	if v, ok := mapClaims["accountId"].(float64); ok {
		claim.AccountId = uint(v)
	}
	if v, ok := mapClaims["customerId"].(float64); ok {
		claim.CustomerId = uint(v)
	}
	if v, ok := mapClaims["username"].(string); ok {
		claim.Username = v
	}
	if v, ok := mapClaims["role"].(string); ok {
		claim.Role = v
	}
	if v, ok := mapClaims["cinemaId"].(float64); ok {
		id := uint(v)
		claim.CinemaId = &id
	}
	return claim, nil
}

func IsStaff(claim *model.TokenClaim) bool {
	return claim != nil && claim.Role == RoleStaff
}
