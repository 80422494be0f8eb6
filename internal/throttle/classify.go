package throttle

import (
	"context"
	"errors"
	"net"
	"net/url"

	"google.golang.org/api/googleapi"
)

// Category buckets a remote failure into one retry/skip/abort policy class.
type Category string

const (
	RateLimited      Category = "RATE_LIMITED"
	QuotaExceeded    Category = "QUOTA_EXCEEDED"
	PermissionDenied Category = "PERMISSION_DENIED"
	NotFound         Category = "NOT_FOUND"
	InvalidRequest   Category = "INVALID_REQUEST"
	ServerError      Category = "SERVER_ERROR"
	NetworkError     Category = "NETWORK_ERROR"
	Unknown          Category = "UNKNOWN"
)

// Classification is the typed verdict on a remote failure. It is plain data:
// the retry loop and the batch executor branch on it rather than matching
// error types.
type Classification struct {
	Category   Category
	Message    string
	Retryable  bool
	UserAction string
	StatusCode int
	Reason     string
}

// Classify maps a remote error into a Classification following a fixed
// precedence: 429, 403+quotaExceeded, 403, 404, 400, 5xx, network, unknown.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Category: Unknown, Message: "no error"}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code, apiReason(apiErr), err.Error())
	}

	if isNetworkError(err) {
		return Classification{
			Category:   NetworkError,
			Message:    err.Error(),
			Retryable:  true,
			UserAction: "check connectivity and retry",
		}
	}

	return Classification{
		Category:   Unknown,
		Message:    err.Error(),
		Retryable:  false,
		UserAction: "inspect the error and report if it persists",
	}
}

func classifyStatus(code int, reason, msg string) Classification {
	c := Classification{Message: msg, StatusCode: code, Reason: reason}

	switch {
	case code == 429:
		c.Category = RateLimited
		c.Retryable = true
		c.UserAction = "slow down; the client will back off automatically"
	case code == 403 && reason == "quotaExceeded":
		// Not transient: nothing recovers it except the daily reset.
		c.Category = QuotaExceeded
		c.Retryable = false
		c.UserAction = "wait for the daily quota reset or rotate to another project"
	case code == 403:
		c.Category = PermissionDenied
		c.Retryable = false
		c.UserAction = "re-authenticate or check playlist ownership"
	case code == 404:
		c.Category = NotFound
		c.Retryable = false
		c.UserAction = "check the playlist or video ID"
	case code == 400:
		c.Category = InvalidRequest
		c.Retryable = false
		c.UserAction = "check the request input"
	case code >= 500:
		c.Category = ServerError
		c.Retryable = true
		c.UserAction = "retry later"
	default:
		c.Category = Unknown
		c.Retryable = false
		c.UserAction = "inspect the error and report if it persists"
	}
	return c
}

func apiReason(apiErr *googleapi.Error) string {
	if len(apiErr.Errors) > 0 {
		return apiErr.Errors[0].Reason
	}
	return ""
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
