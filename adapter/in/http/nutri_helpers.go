// Package http holds the inbound HTTP handlers.
package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"nutri_server/pkg/apperr"
)

// GetUserID extracts the authenticated user id set by the JWT middleware.
func GetUserID(c *fiber.Ctx) (int64, error) {
	userID, ok := c.Locals("user_id").(int64)
	if !ok || userID <= 0 {
		return 0, apperr.Unauthorized("not authenticated")
	}
	return userID, nil
}

// ParamInt64 parses a positive int64 route parameter.
func ParamInt64(c *fiber.Ctx, name string) (int64, error) {
	v, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || v <= 0 {
		return 0, apperr.InvalidInput(name, "must be a positive integer")
	}
	return v, nil
}

// QuerySessionID returns the optional session_id query parameter.
func QuerySessionID(c *fiber.Ctx) *int64 {
	v := c.QueryInt("session_id", 0)
	if v <= 0 {
		return nil
	}
	id := int64(v)
	return &id
}
