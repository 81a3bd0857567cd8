package httpadapter

import (
	"errors"
	"net/http"
	"testing"

	"github.com/medreview/slide-compliance/internal/core/domain"
)

func TestMapErrorToHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.WrapError(domain.ErrValidation, "op", errors.New("bad")), http.StatusBadRequest},
		{"not found", domain.WrapError(domain.ErrNotFound, "op", errors.New("gone")), http.StatusNotFound},
		{"malformed document", domain.WrapError(domain.ErrMalformedDocument, "op", errors.New("not a zip")), http.StatusUnprocessableEntity},
		{"invalid classifier output", domain.WrapError(domain.ErrInvalidClassifierOutput, "op", errors.New("bad json")), http.StatusBadGateway},
		{"service unavailable", domain.WrapError(domain.ErrServiceUnavailable, "op", errors.New("down")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := mapErrorToHTTPStatus(tc.err); got != tc.want {
			t.Fatalf("%s: status = %d, want %d", tc.name, got, tc.want)
		}
	}
}
