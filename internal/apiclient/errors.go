package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrValidation         = errors.New("validation failed")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
	ErrNoRefreshToken     = errors.New("no refresh token stored")
	ErrSessionExpired     = errors.New("session expired")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}

	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	case ErrValidation:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
	case ErrServiceUnavailable:
		return e.StatusCode == http.StatusServiceUnavailable
	default:
		return false
	}
}

// errorBody covers the envelopes the backend uses: {"message"}, {"error"} and {"detail"},
// where detail is either a string or a list of field errors.
type errorBody struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Detail  json.RawMessage `json:"detail"`
}

type fieldDetail struct {
	Loc []interface{} `json:"loc"`
	Msg string        `json:"msg"`
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
		return apiErr
	}

	switch {
	case parsed.Message != "":
		apiErr.Message = parsed.Message
	case parsed.Error != "":
		apiErr.Message = parsed.Error
	case len(parsed.Detail) > 0:
		apiErr.Message = detailMessage(parsed.Detail)
	default:
		apiErr.Message = http.StatusText(status)
	}

	return apiErr
}

func detailMessage(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	var fields []fieldDetail
	if err := json.Unmarshal(raw, &fields); err == nil {
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			msgs = append(msgs, f.Msg)
		}
		return strings.Join(msgs, "; ")
	}

	return string(raw)
}
