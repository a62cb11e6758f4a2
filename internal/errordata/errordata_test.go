package errordata

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf_FindsWrappedErrorData(t *testing.T) {
	base := New(KindNotVerified, "Phone number not verified. Please verify OTP first.")
	wrapped := fmt.Errorf("booking: %w", base)
	if got := KindOf(wrapped); got != KindNotVerified {
		t.Errorf("KindOf = %q, want %q", got, KindNotVerified)
	}
	if !Is(wrapped, KindNotVerified) {
		t.Error("Is should match through wrapping")
	}
	if Is(nil, KindNotVerified) {
		t.Error("Is(nil) should be false")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{New(KindInvalidInput, "x"), http.StatusBadRequest},
		{New(KindInvalidOtp, "x"), http.StatusBadRequest},
		{New(KindOtpExpired, "x"), http.StatusBadRequest},
		{New(KindNotVerified, "x"), http.StatusBadRequest},
		{New(KindNotifier, "x"), http.StatusBadRequest},
		{New(KindDoctorNotFound, "x"), http.StatusNotFound},
		{New(KindUnauthorized, "x"), http.StatusUnauthorized},
		{New(KindForbidden, "x"), http.StatusForbidden},
		{New(KindConflict, "x"), http.StatusConflict},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestWrap_UnwrapsCause(t *testing.T) {
	cause := errors.New("twilio 503")
	err := Wrap(KindNotifier, "Failed to send OTP: twilio 503", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
}

func TestPublicMessage(t *testing.T) {
	if got := PublicMessage(New(KindInvalidOtp, "Invalid OTP")); got != "Invalid OTP" {
		t.Errorf("PublicMessage = %q, want Invalid OTP", got)
	}
	if got := PublicMessage(errors.New("pq: connection refused")); got != "internal server error" {
		t.Errorf("PublicMessage leaked %q", got)
	}
}
