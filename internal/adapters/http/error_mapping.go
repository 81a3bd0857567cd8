package httpadapter

import (
	"net/http"

	"github.com/medreview/slide-compliance/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrValidation):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrMalformedDocument):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrInvalidClassifierOutput):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
