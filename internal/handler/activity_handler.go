package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/referral-go-api/internal/service"
	"github.com/noah-isme/referral-go-api/internal/utils"
)

// ActivityHandler exposes the caller's own audit trail.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs an activity handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register wires activity routes.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("/activity", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	caller, ok := alumniCallerFromContext(c)
	if !ok {
		return sendForbiddenCaller(c)
	}

	entries, err := h.service.ListForAlumni(c.UserContext(), caller)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load activity")
	}

	return utils.SendSuccess(c, "activity retrieved", entries)
}
