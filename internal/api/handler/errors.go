package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Rrens/support-chat/internal/api/response"
	"github.com/Rrens/support-chat/internal/domain"
)

var validate = validator.New()

// writeError maps service errors onto status codes. Storage and unexpected
// failures never expose their cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		response.BadRequest(w, domain.Message(err, "invalid request"))
	case errors.Is(err, domain.ErrAuth):
		response.Unauthorized(w, domain.Message(err, "unauthorized"))
	case errors.Is(err, domain.ErrRateLimited):
		response.TooManyRequests(w, domain.Message(err, "Too many requests, please try again later."))
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, domain.Message(err, "not found"))
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Upstream unavailable")
		response.ServiceUnavailable(w, "AI service unavailable")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
		response.InternalError(w, "Server error")
	}
}

// validationMessage flattens validator errors into a single sentence.
func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email")
		case "min":
			msgs = append(msgs, field+" must be at least "+e.Param()+" characters")
		case "max":
			msgs = append(msgs, field+" must be at most "+e.Param()+" characters")
		default:
			msgs = append(msgs, field+" failed validation on "+e.Tag())
		}
	}
	return strings.Join(msgs, "; ")
}
