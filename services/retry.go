// services/retry.go - Transient failure retry
package services

import (
	"strings"
	"time"
)

const (
	retryAttempts = 3
	retryBase     = 500 * time.Millisecond
	retryMax      = 5 * time.Second
)

// withRetry runs fn up to three times with exponential backoff,
// retrying only transient database failures. Domain errors pass
// through untouched.
func withRetry(fn func() error) error {
	var err error
	delay := retryBase
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if err = fn(); err == nil || !isTransient(err) {
			return err
		}
		time.Sleep(delay)
		delay *= 2
		if delay > retryMax {
			delay = retryMax
		}
	}
	return err
}

// isTransient matches driver-level failures worth retrying.
func isTransient(err error) bool {
	msg := err.Error()
	for _, probe := range []string{"deadlock", "timeout", "connection reset", "busy", "locked"} {
		if strings.Contains(msg, probe) {
			return true
		}
	}
	return false
}
