package figma

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// apiErrorBody covers the error envelopes the Figma API returns:
// {"status":404,"err":"Not found"} and {"error":true,"status":400,"message":"..."}.
type apiErrorBody struct {
	Status  int    `json:"status"`
	Err     string `json:"err"`
	Message string `json:"message"`
	Reason  string `json:"reason"`
}

// Classify maps a completed non-2xx exchange to an *Error. It never returns nil.
func Classify(method string, status int, headers http.Header, body []byte, url string) *Error {
	apiErr := &Error{
		Kind:       kindForStatus(status),
		StatusCode: status,
		Method:     method,
		URL:        url,
		Message:    errorMessage(status, body),
		Body:       body,
	}

	if apiErr.Kind == KindRateLimited && headers != nil {
		apiErr.RetryAfter = ParseRetryAfter(headers.Get("Retry-After"))
	}

	return apiErr
}

// ClassifyTransport maps a failure that produced no response. Deadlines,
// cancellations and net timeouts are KindTimeout; everything else (refused
// connections, DNS and TLS failures) is KindNetwork.
func ClassifyTransport(method, url string, err error) *Error {
	kind := KindNetwork
	if isTimeout(err) {
		kind = KindTimeout
	}

	msg := "transport failure"
	if err != nil {
		msg = err.Error()
	}

	return &Error{
		Kind:    kind,
		Method:  method,
		URL:     url,
		Message: msg,
		Err:     err,
	}
}

func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return KindAuthentication
	case http.StatusForbidden:
		return KindAuthorization
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return KindServerError
	default:
		return KindGenericHTTP
	}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

func errorMessage(status int, body []byte) string {
	if len(body) > 0 {
		var parsed apiErrorBody
		if json.Unmarshal(body, &parsed) == nil {
			switch {
			case parsed.Message != "":
				return parsed.Message
			case parsed.Err != "":
				return parsed.Err
			case parsed.Reason != "":
				return parsed.Reason
			}
		}
	}

	return http.StatusText(status)
}

// ParseRetryAfter parses a Retry-After header given in seconds or as an
// HTTP-date. It returns nil when the value is absent or unparseable.
func ParseRetryAfter(value string) *time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
			return nil
		}

		d := time.Duration(seconds * float64(time.Second))

		return &d
	}

	if t, err := http.ParseTime(value); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}

		return &d
	}

	return nil
}
