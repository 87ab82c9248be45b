package pushover

import (
	"net/http"
	"strconv"
	"time"
)

// Rate-limit headers returned on every successful messages call.
const (
	limitHeader     = "X-Limit-App-Limit"
	remainingHeader = "X-Limit-App-Remaining"
	resetHeader     = "X-Limit-App-Reset"
)

// RateLimits is the application quota snapshot advertised by the service.
// It is replaced wholesale on every successful send.
type RateLimits struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

func parseRateLimits(h http.Header) *RateLimits {
	limit, err := strconv.Atoi(h.Get(limitHeader))
	if err != nil {
		return nil
	}
	remaining, _ := strconv.Atoi(h.Get(remainingHeader))

	var resetAt time.Time
	if sec, err := strconv.ParseInt(h.Get(resetHeader), 10, 64); err == nil {
		resetAt = time.Unix(sec, 0).UTC()
	}

	return &RateLimits{
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
