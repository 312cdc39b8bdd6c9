package http

import (
	"github.com/gofiber/fiber/v2"

	"nutri_server/core/service/feedback"
	"nutri_server/pkg/response"
)

// FeedbackHandler records product feedback.
type FeedbackHandler struct {
	service *feedback.Service
}

func NewFeedbackHandler(service *feedback.Service) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// Register registers feedback routes.
func (h *FeedbackHandler) Register(router fiber.Router) {
	router.Post("/feedback", h.Submit)
}

type feedbackRequest struct {
	ProductID int64  `json:"product_id"`
	Sentiment string `json:"sentiment"`
	Notes     string `json:"notes"`
}

func (h *FeedbackHandler) Submit(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req feedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, err)
	}

	fb, err := h.service.Submit(c.UserContext(), userID, req.ProductID, req.Sentiment, req.Notes)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, fb)
}
