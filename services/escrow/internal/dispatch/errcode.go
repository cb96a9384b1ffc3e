package dispatch

import (
	"errors"
	"net/http"

	"github.com/Axel-C19/OpenMarket/pkg/domain"
)

// Code maps a core error to the HTTP status and stable string code
// exposed at the boundary. This is the only place that translation
// lives.
func Code(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, "OK"
	case errors.Is(err, domain.ErrMalformedRequest):
		return http.StatusBadRequest, "MALFORMED_REQUEST"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, "ALREADY_EXISTS"
	case errors.Is(err, domain.ErrUnknownToken):
		return http.StatusNotFound, "UNKNOWN_TOKEN"
	case errors.Is(err, domain.ErrNotOwner):
		return http.StatusForbidden, "NOT_OWNER"
	case errors.Is(err, domain.ErrInvalidDestination):
		return http.StatusBadRequest, "INVALID_DESTINATION"
	case errors.Is(err, domain.ErrAlreadyVoted):
		return http.StatusConflict, "ALREADY_VOTED"
	case errors.Is(err, domain.ErrEscrowNotClosed):
		return http.StatusConflict, "ESCROW_NOT_CLOSED"
	case errors.Is(err, domain.ErrBadSignature):
		return http.StatusForbidden, "BAD_SIGNATURE"
	case errors.Is(err, domain.ErrInvalidTable):
		return http.StatusBadRequest, "INVALID_TABLE"
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusConflict, "INSUFFICIENT_BALANCE"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}
