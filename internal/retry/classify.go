package retry

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ClassifyResponse maps a raw HTTP response to an Outcome. 2xx succeeds,
// 429 and 5xx are retryable, every other status fails fast. A 429 carrying
// an integer Retry-After header yields a server-directed delay.
func ClassifyResponse(status int, header http.Header, body string) Outcome {
	switch {
	case status >= 200 && status < 300:
		return Success(body)
	case status == http.StatusTooManyRequests:
		return Retryable("rate_limited", retryAfter(header))
	case status >= 500 && status <= 599:
		return Retryable(fmt.Sprintf("http_%d", status), 0)
	default:
		return Fatal(fmt.Sprintf("http_%d", status))
	}
}

func retryAfter(header http.Header) time.Duration {
	v := header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		// HTTP-date form is not supported; fall back to the schedule.
		return 0
	}
	return time.Duration(secs) * time.Second
}
