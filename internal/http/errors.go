package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/pricing"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/service"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/validation"
)

// apiError is the body of every non-2xx response.
type apiError struct {
	Code       string                `json:"error"`
	Message    string                `json:"message"`
	Violations validation.Violations `json:"violations,omitempty"`
	status     int
}

func mapError(err error) apiError {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return apiError{Code: "invalid_request", Message: "Please check the highlighted fields", Violations: verr.Violations, status: fiber.StatusBadRequest}
	case errors.Is(err, pricing.ErrInvalidParams):
		return apiError{Code: "invalid_params", Message: err.Error(), status: fiber.StatusBadRequest}
	case errors.Is(err, service.ErrInvalidStatus):
		return apiError{Code: "invalid_status", Message: "Status must be one of new, contacted, converted, lost", status: fiber.StatusBadRequest}
	case errors.Is(err, service.ErrEmailTaken):
		return apiError{Code: "email_taken", Message: "An account with this email already exists", status: fiber.StatusConflict}
	case errors.Is(err, service.ErrInvalidCredentials):
		return apiError{Code: "invalid_credentials", Message: "Invalid email or password", status: fiber.StatusUnauthorized}
	case errors.Is(err, service.ErrUnauthenticated):
		return apiError{Code: "unauthenticated", Message: "Please sign in", status: fiber.StatusUnauthorized}
	case errors.Is(err, service.ErrQuotationNotFound):
		return apiError{Code: "quotation_not_found", Message: "Quotation not found", status: fiber.StatusNotFound}
	case errors.Is(err, service.ErrDocumentsDisabled):
		return apiError{Code: "documents_disabled", Message: "Quotation documents are not enabled", status: fiber.StatusNotImplemented}
	default:
		return apiError{Code: "internal_error", Message: "Something went wrong, please try again", status: fiber.StatusInternalServerError}
	}
}

func respondError(c *fiber.Ctx, err error) error {
	e := mapError(err)
	if e.status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(e.status).JSON(e)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(apiError{Code: "invalid_body", Message: "Request body must be valid JSON"})
}
