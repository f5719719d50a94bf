package handler

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/calleja/taskforge/internal/api/response"
	"github.com/calleja/taskforge/internal/domain"
)

var validate = validator.New()

// writeServiceError translates a service error into a transport status.
// Cross-tenant denials come out as a plain not-found, so the response never
// confirms that another tenant's resource exists.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		response.BadRequest(w, "validation failed")
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenExpired):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, domain.ErrReadOnlyRole),
		errors.Is(err, domain.ErrInsufficientRole),
		errors.Is(err, domain.ErrNotOwner),
		errors.Is(err, domain.ErrSelfAction),
		errors.Is(err, domain.ErrTenantSuspended),
		errors.Is(err, domain.ErrQuotaExceeded):
		response.Forbidden(w, err.Error())
	case errors.Is(err, domain.ErrCrossTenantAccess),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrTenantNotFound):
		response.NotFound(w, "resource not found")
	case errors.Is(err, domain.ErrSubdomainTaken),
		errors.Is(err, domain.ErrEmailTaken):
		response.Conflict(w, err.Error())
	case isRetryable(err):
		log.Warn().Err(err).Msg("transient store failure")
		w.Header().Set("Retry-After", "1")
		response.ServiceUnavailable(w, domain.ErrStoreUnavailable.Error())
	default:
		log.Error().Err(err).Msg("unhandled service error")
		response.InternalError(w, "internal server error")
	}
}

// isRetryable reports whether err is a timeout or lost connection the client
// may safely retry, as opposed to a bug surfaced as a plain 500.
func isRetryable(err error) bool {
	if errors.Is(err, domain.ErrStoreUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return pgconn.Timeout(err) || pgconn.SafeToRetry(err)
}

// validationMessages flattens validator errors to a field → message map
func validationMessages(err error) any {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	messages := make(map[string]string)
	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required":
			messages[field] = "field is required"
		case "email":
			messages[field] = "invalid email format"
		case "min":
			messages[field] = "must be at least " + e.Param() + " characters"
		case "max":
			messages[field] = "must be at most " + e.Param() + " characters"
		case "hostname_rfc1123":
			messages[field] = "must be a valid subdomain"
		case "oneof":
			messages[field] = "must be one of: " + e.Param()
		default:
			messages[field] = "validation failed on " + e.Tag()
		}
	}
	return messages
}

// clientIP returns the caller address with the port stripped. RealIP
// middleware has already folded X-Forwarded-For into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
