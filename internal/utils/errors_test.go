package utils

import (
	"errors"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeInvalidArgument, http.StatusBadRequest},
		{CodeUnsupported, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		err := E(tc.code, "Op", "msg", nil)
		if got := HTTPStatus(err); got != tc.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tc.code, got, tc.want)
		}
	}

	if got := HTTPStatus(ErrNotFound); got != http.StatusNotFound {
		t.Errorf("sentinel ErrNotFound should map to 404, got %d", got)
	}
	if got := HTTPStatus(errors.New("boom")); got != http.StatusInternalServerError {
		t.Errorf("unknown errors should map to 500, got %d", got)
	}
}

func TestIsCodeUnwrapsChain(t *testing.T) {
	inner := E(CodeNotFound, "Repo.Get", "gone", ErrNotFound)
	outer := E(CodeInternal, "Service.Get", "lookup failed", inner)

	if !IsCode(outer, CodeInternal) {
		t.Errorf("outer code should win")
	}
	if !errors.Is(outer, ErrNotFound) {
		t.Errorf("wrapped sentinel should still be reachable via errors.Is")
	}
}

func TestAppErrorMessage(t *testing.T) {
	err := E(CodeInternal, "AudioResponseService.Create", "failed to store audio file", errors.New("disk full"))
	want := "AudioResponseService.Create: failed to store audio file: disk full"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
