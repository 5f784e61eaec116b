package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sangkips/trademate-console/pkg/apperror"
)

// Error is a non-2xx response from the backend, or a failed round trip.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend %s %s: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("backend %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// Unwrap exposes the equivalent AppError so callers can match apperror sentinels
// and render the backend's message, plus the transport error when there is one.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.AppError(), e.Err}
	}
	return []error{e.AppError()}
}

// AppError maps the response onto the console's error type.
func (e *Error) AppError() *apperror.AppError {
	switch {
	case e.Status == http.StatusUnauthorized:
		return apperror.NewAppError(http.StatusUnauthorized, apperror.ErrTokenExpired.Message)
	case e.Status == 0 || e.Status >= http.StatusInternalServerError:
		msg := e.Message
		if msg == "" {
			msg = apperror.ErrUnavailable.Message
		}
		return apperror.NewAppError(http.StatusBadGateway, msg)
	}
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return apperror.NewAppError(e.Status, msg)
}

// errorBody is the backend's error envelope. Some routes use "error" instead of "message".
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func parseError(method, path string, status int, body []byte) *Error {
	e := &Error{Method: method, Path: path, Status: status}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		e.Message = eb.Message
		if e.Message == "" {
			e.Message = eb.Error
		}
	}
	if e.Message == "" && len(body) > 0 && len(body) < 200 && !strings.HasPrefix(strings.TrimSpace(string(body)), "<") {
		e.Message = strings.TrimSpace(string(body))
	}
	return e
}
