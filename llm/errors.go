package llm

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/cliplens/cliplens/errors"
)

// classifyHTTP maps a non-2xx provider response to the error taxonomy.
// Status codes are the authoritative signal; the retry policy never sniffs
// message text.
func classifyHTTP(op string, status int, body string) *errors.AppError {
	err := fmt.Errorf("provider returned HTTP %d: %s", status, truncate(body, 500))

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.Auth(op, err, "API key was rejected by the provider")
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests:
		return errors.Transport(op, err, "provider is throttling or timing out")
	case status >= 500:
		return errors.Transport(op, err, "provider is unavailable")
	default:
		return errors.Internal(op, err, "provider rejected the request")
	}
}

// classifyCallErr maps transport-level failures (the request never produced
// a response) to the taxonomy.
func classifyCallErr(op string, err error) *errors.AppError {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Timeout(op, err, "provider call exceeded its time budget")
	}
	if stderrors.Is(err, context.Canceled) {
		return errors.Transport(op, err, "provider call was cancelled")
	}

	var urlErr *url.Error
	if stderrors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return errors.Timeout(op, err, "provider call exceeded its time budget")
		}
		return errors.Transport(op, err, "failed to reach the provider")
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		if netErr.Timeout() {
			return errors.Timeout(op, err, "provider call exceeded its time budget")
		}
		return errors.Transport(op, err, "failed to reach the provider")
	}

	return errors.Transport(op, err, "provider call failed")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
