package errordata

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindInvalidOtp        Kind = "invalid_otp"
	KindOtpExpired        Kind = "otp_expired"
	KindNotVerified       Kind = "not_verified"
	KindDoctorNotFound    Kind = "doctor_not_found"
	KindNotifier          Kind = "notifier_error"
	KindNotFound          Kind = "not_found"
	KindUnauthorized      Kind = "unauthorized"
	KindForbidden         Kind = "forbidden"
	KindConflict          Kind = "conflict"
	KindInsufficientStock Kind = "insufficient_stock"
)

// ErrorData is a user-facing error. Message is safe to return to clients; Err, when set,
// is the underlying cause and is only logged.
type ErrorData struct {
	Kind    Kind
	Message string
	Err     error
}

func New(kind Kind, msg string) *ErrorData {
	return &ErrorData{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *ErrorData {
	return &ErrorData{Kind: kind, Message: msg, Err: err}
}

func (ed *ErrorData) Error() string {
	return ed.Message
}

func (ed *ErrorData) Unwrap() error {
	return ed.Err
}

func (ed *ErrorData) HasMessage() bool {
	return ed.Message != ""
}

// KindOf returns the Kind of the first ErrorData in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var ed *ErrorData
	if errors.As(err, &ed) {
		return ed.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidInput, KindInvalidOtp, KindOtpExpired, KindNotVerified, KindNotifier, KindInsufficientStock:
		return http.StatusBadRequest
	case KindDoctorNotFound, KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage hides unclassified errors from clients.
func PublicMessage(err error) string {
	var ed *ErrorData
	if errors.As(err, &ed) && ed.HasMessage() {
		return ed.Message
	}
	return "internal server error"
}
