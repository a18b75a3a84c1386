package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/propfinder/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, not_found, conflict, unavailable, internal_error
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusConflict, "conflict", msg)
}

// errUnavailable returns a 503 error.
func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusServiceUnavailable, "unavailable", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

var badRequestErrors = []error{
	domain.ErrInvalidBoundingBox,
	domain.ErrOutOfRangeCoordinate,
	domain.ErrInvalidRadius,
	domain.ErrInvalidDirection,
	domain.ErrInvalidZoom,
	domain.ErrInvalidPoint,
	domain.ErrDuplicatePoint,
}

// errFromDomain maps service errors onto HTTP statuses.
func errFromDomain(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrViewportNotFound), errors.Is(err, domain.ErrPropertyNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, domain.ErrInvalidMode):
		return errConflict(c, err.Error())
	case errors.Is(err, domain.ErrLocationUnavailable):
		return errUnavailable(c, err.Error())
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return errBadRequest(c, err.Error())
		}
	}
	// unexpected failures stay in the logs, clients get a generic message
	LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	return errInternal(c, "internal server error")
}
