package http

import (
	"github.com/gofiber/fiber/v2"

	"nutri_server/core/service/recommendation"
	"nutri_server/pkg/response"
)

// RecommendationHandler exposes the recommendation pipeline.
type RecommendationHandler struct {
	service *recommendation.Service
}

func NewRecommendationHandler(service *recommendation.Service) *RecommendationHandler {
	return &RecommendationHandler{service: service}
}

// Register registers recommendation routes.
func (h *RecommendationHandler) Register(router fiber.Router) {
	recs := router.Group("/recommendations")
	recs.Post("/", h.Generate)
	recs.Get("/", h.List)
	recs.Get("/session/:sessionId", h.ListBySession)
}

type generateRequest struct {
	SessionID *int64 `json:"session_id"`
}

// Generate runs a synchronous generation pass for the authenticated user.
func (h *RecommendationHandler) Generate(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req generateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.Error(c, err)
		}
	}
	if req.SessionID == nil {
		req.SessionID = QuerySessionID(c)
	}

	result, err := h.service.Generate(c.UserContext(), userID, req.SessionID)
	if err != nil {
		return response.Error(c, err)
	}
	if len(result.Recommendations) == 0 {
		return response.OKWithMessage(c, result.OverallReasoning, result)
	}
	return response.OK(c, result)
}

// List returns the user's stored recommendations, newest first.
func (h *RecommendationHandler) List(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	recs, err := h.service.ListByUser(c.UserContext(), userID, c.QueryInt("limit", 50))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, recs)
}

// ListBySession returns the recommendations stored for one session.
func (h *RecommendationHandler) ListBySession(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Error(c, err)
	}
	sessionID, err := ParamInt64(c, "sessionId")
	if err != nil {
		return response.Error(c, err)
	}

	recs, err := h.service.ListBySession(c.UserContext(), userID, sessionID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, recs)
}
