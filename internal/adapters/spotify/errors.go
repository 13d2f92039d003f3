package spotify

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pressplay-labs/setlist/internal/core/domain"
)

// classifyStatus maps a non-200 catalog response to a tagged gateway error.
// The core only ever inspects the kind; wire-level details stay here.
//
// 403 maps to not-found: the catalog returns it for resources (notably the
// recommendation engine) that do not exist for the current market, and the
// pipeline treats both identically.
func classifyStatus(op string, resp *http.Response) error {
	kind := domain.KindUnknown
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		kind = domain.KindRateLimited
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusUnauthorized:
		kind = domain.KindNotFound
	case resp.StatusCode == http.StatusBadRequest:
		kind = domain.KindInvalid
	case resp.StatusCode >= http.StatusInternalServerError:
		kind = domain.KindUnavailable
	}
	return &domain.GatewayError{
		Kind:       kind,
		Op:         op,
		RetryAfter: parseRetryAfter(resp),
		Err:        fmt.Errorf("status %d", resp.StatusCode),
	}
}

// parseRetryAfter reads the Retry-After header as either seconds or an HTTP
// date. Zero means the header was absent or useless.
func parseRetryAfter(resp *http.Response) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(retryAfter); err == nil {
		if until := time.Until(when); until > 0 {
			return until
		}
	}
	return 0
}
