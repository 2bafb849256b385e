package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/referral-go-api/internal/middleware"
	"github.com/noah-isme/referral-go-api/internal/service"
	"github.com/noah-isme/referral-go-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseIDParam(c *fiber.Ctx, key string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(key), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// studentCallerFromContext builds the caller only for an authenticated student token.
func studentCallerFromContext(c *fiber.Ctx) (service.StudentCaller, bool) {
	id, role, ok := middleware.CallerFromLocals(c)
	if !ok || role != middleware.RoleStudent {
		return service.StudentCaller{}, false
	}
	return service.StudentCaller{ID: id}, true
}

// alumniCallerFromContext builds the caller only for an authenticated alumni token.
func alumniCallerFromContext(c *fiber.Ctx) (service.AlumniCaller, bool) {
	id, role, ok := middleware.CallerFromLocals(c)
	if !ok || role != middleware.RoleAlumni {
		return service.AlumniCaller{}, false
	}
	return service.AlumniCaller{ID: id}, true
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func statusForError(err error) int {
	switch service.KindOf(err) {
	case service.KindNotFound:
		return fiber.StatusNotFound
	case service.KindUnauthorized:
		return fiber.StatusForbidden
	case service.KindInvalidState, service.KindDuplicate:
		return fiber.StatusConflict
	case service.KindIneligible:
		return fiber.StatusUnprocessableEntity
	case service.KindValidation:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// sendServiceError renders a classified failure with its reason tag. Unclassified
// failures are logged and replaced by the fallback message.
func sendServiceError(c *fiber.Ctx, logger zerolog.Logger, err error, fallback string) error {
	status := statusForError(err)
	if status == fiber.StatusInternalServerError {
		requestLogger(logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, status, fallback)
	}

	reason := service.ReasonOf(err)
	if reason == "" && status == fiber.StatusBadRequest {
		reason = "invalid-payload"
	}
	return utils.SendErrorWithReason(c, status, reason, err.Error())
}

func sendInvalidPayload(c *fiber.Ctx) error {
	return utils.SendErrorWithReason(c, fiber.StatusBadRequest, "invalid-payload", "invalid request payload")
}

func sendForbiddenCaller(c *fiber.Ctx) error {
	return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
}
