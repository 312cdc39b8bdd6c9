package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"nutri_server/core/domain"
	"nutri_server/core/service/training"
	"nutri_server/pkg/response"
)

// TrainingHandler exposes training session CRUD.
type TrainingHandler struct {
	service *training.Service
}

func NewTrainingHandler(service *training.Service) *TrainingHandler {
	return &TrainingHandler{service: service}
}

// Register registers training session routes.
func (h *TrainingHandler) Register(router fiber.Router) {
	sessions := router.Group("/sessions")
	sessions.Post("/", h.Create)
	sessions.Get("/", h.List)
	sessions.Get("/:sessionId", h.Get)
	sessions.Put("/:sessionId", h.Update)
	sessions.Delete("/:sessionId", h.Delete)
}

type sessionRequest struct {
	SessionDate     *time.Time `json:"session_date"`
	Type            string     `json:"type"`
	Intensity       string     `json:"intensity"`
	DurationMinutes int        `json:"duration_min"`
	Weather         string     `json:"weather"`
	Notes           string     `json:"notes"`
}

func (r *sessionRequest) toDomain(userID int64) *domain.TrainingSession {
	s := &domain.TrainingSession{
		UserID:          userID,
		Type:            r.Type,
		Intensity:       r.Intensity,
		DurationMinutes: r.DurationMinutes,
		Weather:         r.Weather,
		Notes:           r.Notes,
	}
	if r.SessionDate != nil {
		s.SessionDate = *r.SessionDate
	}
	return s
}

// Create stores a session and triggers a background recommendation pass.
func (h *TrainingHandler) Create(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req sessionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, err)
	}

	created, err := h.service.Create(c.UserContext(), req.toDomain(userID))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, created)
}

func (h *TrainingHandler) List(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	sessions, err := h.service.List(c.UserContext(), userID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, sessions)
}

func (h *TrainingHandler) Get(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Error(c, err)
	}
	sessionID, err := ParamInt64(c, "sessionId")
	if err != nil {
		return response.Error(c, err)
	}

	session, err := h.service.Get(c.UserContext(), userID, sessionID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, session)
}

func (h *TrainingHandler) Update(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Error(c, err)
	}
	sessionID, err := ParamInt64(c, "sessionId")
	if err != nil {
		return response.Error(c, err)
	}

	var req sessionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, err)
	}

	session := req.toDomain(userID)
	session.SessionID = sessionID

	updated, err := h.service.Update(c.UserContext(), userID, session)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, updated)
}

func (h *TrainingHandler) Delete(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Error(c, err)
	}
	sessionID, err := ParamInt64(c, "sessionId")
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.service.Delete(c.UserContext(), userID, sessionID); err != nil {
		return response.Error(c, err)
	}
	return response.OKWithMessage(c, "session deleted", nil)
}
