// SPDX-License-Identifier: MIT

package feed

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrUnavailable = errors.New("media source: host unreachable or transport failure")
	ErrTimeout     = errors.New("media source: request timed out")
	ErrStatus      = errors.New("media source: unexpected HTTP status")
	ErrBadResponse = errors.New("media source: invalid response format or malformed data")
)

const maxErrorBody = 256

var secretPattern = regexp.MustCompile(`(?i)((?:token|signature|x-amz-signature|sig|password)=)[^&\s"']+`)

// FetchError is the transient failure returned by Client.Fetch.
// It wraps one of the sentinel errors and keeps the diagnostic context.
type FetchError struct {
	Sentinel error
	Status   int
	Body     string
	Err      error // lower-level cause (net.Error, json.SyntaxError, ...)
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch playlist: %v", e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Sentinel
}

// Message is the short human-readable text shown on the display.
func (e *FetchError) Message() string {
	switch {
	case errors.Is(e.Sentinel, ErrTimeout):
		return "The media server took too long to respond."
	case errors.Is(e.Sentinel, ErrStatus):
		return fmt.Sprintf("The media server returned an error (HTTP %d).", e.Status)
	case errors.Is(e.Sentinel, ErrBadResponse):
		return "The media server sent a response that could not be read."
	default:
		return "The media server could not be reached."
	}
}

// Reason is a low-cardinality label for metrics.
func (e *FetchError) Reason() string {
	switch {
	case errors.Is(e.Sentinel, ErrTimeout):
		return "timeout"
	case errors.Is(e.Sentinel, ErrStatus):
		return "status"
	case errors.Is(e.Sentinel, ErrBadResponse):
		return "bad_response"
	default:
		return "unavailable"
	}
}

// Message extracts the display message from any error, preferring FetchError's.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Message()
	}
	return err.Error()
}

// wrapError classifies a transport error or HTTP status into a FetchError.
func wrapError(err error, status int, body []byte) *FetchError {
	fe := &FetchError{Status: status, Err: err, Body: sanitizeBody(body)}

	switch {
	case err != nil && isTimeout(err):
		fe.Sentinel = ErrTimeout
	case err != nil && status == 0:
		fe.Sentinel = ErrUnavailable
	case status != 0 && (status < http.StatusOK || status >= http.StatusMultipleChoices):
		fe.Sentinel = ErrStatus
	default:
		fe.Sentinel = ErrBadResponse
	}
	return fe
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sanitizeBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "…"
	}
	return secretPattern.ReplaceAllString(s, "${1}[REDACTED]")
}
