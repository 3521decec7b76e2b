package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
)

// APIError represents an API error response
type APIError struct {
	Code       string
	Message    string
	Field      string
	StatusCode int
	Details    map[string]interface{}
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Code != "" {
		return fmt.Sprintf("[%d] %s: %s", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("[%d] %s", e.StatusCode, msg)
}

// ParseError turns a non-2xx response into an *APIError. It understands the
// structured {code, message, field} body as well as bare {error} and {detail}.
func ParseError(resp *resty.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode()}

	var body errorBody
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		apiErr.Code = "unknown_error"
		apiErr.Message = strings.TrimSpace(string(resp.Body()))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(apiErr.StatusCode)
		}
		return apiErr
	}

	apiErr.Code = body.Code
	apiErr.Field = body.Field
	switch {
	case body.Error != "":
		apiErr.Message = body.Error
		if body.Message != "" {
			apiErr.Details = map[string]interface{}{"message": body.Message}
		}
	case body.Message != "":
		apiErr.Message = body.Message
	case body.Detail != "":
		apiErr.Message = body.Detail
	default:
		apiErr.Message = http.StatusText(apiErr.StatusCode)
	}
	if body.Details != "" {
		apiErr.addDetail("details", body.Details)
	}
	if body.RequiredPhrase != "" {
		apiErr.addDetail("required_phrase", body.RequiredPhrase)
	}
	return apiErr
}

func (e *APIError) addDetail(key string, value interface{}) {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized checks if error is due to missing/invalid authentication
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

// IsForbidden checks if error is due to insufficient permissions
func IsForbidden(err error) bool {
	return statusOf(err) == http.StatusForbidden
}

// IsNotFound checks if error is due to resource not found
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsRateLimited checks if the request was throttled
func IsRateLimited(err error) bool {
	return statusOf(err) == http.StatusTooManyRequests
}

// IsServerError checks if error is due to server error (5xx)
func IsServerError(err error) bool {
	return statusOf(err) >= http.StatusInternalServerError
}

// CheckResponse checks if response is successful and returns error if not
func CheckResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return ParseError(resp)
	}
	return nil
}

// decode checks the response and unmarshals its body into target
func decode(resp *resty.Response, err error, target interface{}) error {
	if err := CheckResponse(resp, err); err != nil {
		return err
	}
	if target == nil {
		return nil
	}
	return json.Unmarshal(resp.Body(), target)
}

// jsonBody marshals v with json-iterator for SetBody
func jsonBody(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}
