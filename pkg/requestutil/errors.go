package requestutil

import (
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/carlmjohnson/requests"
)

// maxErrorBody limits how much of a failed response is kept
// in the error message.
const maxErrorBody = 512

// HTTPError is returned when a feed answers with an
// unexpected status code.
type HTTPError struct {
	StatusCode int
	Method     string
	URL        string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, e.Message)
}

// CheckStatus validates that the response code is one of accept.
// When accept is empty, any 2xx code is allowed.
func CheckStatus(accept ...int) requests.ResponseHandler {
	return func(response *http.Response) error {
		code := response.StatusCode
		if len(accept) == 0 && code >= 200 && code <= 299 {
			return nil
		}
		if slices.Contains(accept, code) {
			return nil
		}
		body, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
		return &HTTPError{
			StatusCode: code,
			Method:     response.Request.Method,
			URL:        response.Request.URL.String(),
			Message:    strings.TrimSpace(string(body)),
		}
	}
}
