package utils

import (
	"fmt"
	"time"
)

// RetryWithBackoff retries a named operation up to maxRetries times with
// quadratic backoff between attempts.
func RetryWithBackoff(name string, maxRetries int, fn func() error, logger *Logger) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * time.Second
			logger.Warn("Retrying %s (attempt %d/%d) after %v...", name, attempt+1, maxRetries, backoff)
			time.Sleep(backoff)
		}
		if err := fn(); err != nil {
			lastErr = err
			logger.Error("%s attempt %d failed: %v", name, attempt+1, err)
			continue
		}
		return nil
	}
	return fmt.Errorf("%s: all %d attempts failed, last error: %w", name, maxRetries, lastErr)
}
