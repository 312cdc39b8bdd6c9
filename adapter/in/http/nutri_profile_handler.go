package http

import (
	"github.com/gofiber/fiber/v2"

	"nutri_server/core/domain"
	"nutri_server/core/service/profile"
	"nutri_server/pkg/response"
)

// ProfileHandler exposes the user profile operations.
type ProfileHandler struct {
	service *profile.Service
}

func NewProfileHandler(service *profile.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Register registers profile routes.
func (h *ProfileHandler) Register(router fiber.Router) {
	profiles := router.Group("/profile")
	profiles.Get("/", h.Get)
	profiles.Put("/", h.Save)
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	p, err := h.service.Get(c.UserContext(), userID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, p)
}

// Save upserts the profile and schedules a background generation pass.
func (h *ProfileHandler) Save(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var raw domain.RawProfile
	if err := c.BodyParser(&raw); err != nil {
		return response.Error(c, err)
	}

	saved, err := h.service.Save(c.UserContext(), userID, &raw)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, saved)
}
