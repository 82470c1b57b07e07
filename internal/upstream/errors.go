package upstream

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
)

// Fallback messages used when the upstream body carries no usable message.
const (
	msgUnreachable  = "could not reach the reservations service"
	msgUnauthorized = "your session has expired, please sign in again"
	msgFailed       = "the reservations service could not complete the request"
)

// APIError is the single error shape produced by the client.  Status is the
// upstream HTTP status, or 0 when no response was received.
type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *APIError) Error() string { return e.Message }

// IsUnauthorized reports whether err is an upstream 401.
func IsUnauthorized(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusUnauthorized
}

// StatusOf returns the upstream status carried by err, or 0.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

// errorBody covers the two failure shapes the upstream emits: a plain
// {"message": ...} and the validation form {"message", "errors": {field: [..]}}.
type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// newAPIError derives the message from the response body, falling back to a
// fixed string per status class.
func newAPIError(status int, body []byte) *APIError {
	var eb errorBody
	if len(body) > 0 && json.Unmarshal(body, &eb) == nil {
		if eb.Message != "" {
			return &APIError{Message: eb.Message, Status: status}
		}
		if len(eb.Errors) > 0 {
			fields := make([]string, 0, len(eb.Errors))
			for f := range eb.Errors {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			for _, f := range fields {
				if msgs := eb.Errors[f]; len(msgs) > 0 {
					return &APIError{Message: msgs[0], Status: status}
				}
			}
		}
	}
	if status == http.StatusUnauthorized {
		return &APIError{Message: msgUnauthorized, Status: status}
	}
	return &APIError{Message: msgFailed, Status: status}
}
