package ai

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// RetryConfig tunes the backoff policy applied around a Generator.
type RetryConfig struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int
	// InitialDelay seeds the exponential backoff; it doubles per retry.
	InitialDelay time.Duration
	// MaxDelay caps the computed backoff.
	MaxDelay time.Duration
	// RetryAfterBuffer is added on top of a provider-supplied retry hint.
	RetryAfterBuffer time.Duration
}

// DefaultRetryConfig mirrors the provider's published rate-limit guidance.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:       5,
		InitialDelay:     2 * time.Second,
		MaxDelay:         60 * time.Second,
		RetryAfterBuffer: time.Second,
	}
}

// RetryingGenerator wraps a Generator with exponential backoff and
// quota-aware error classification.
type RetryingGenerator struct {
	inner  Generator
	cfg    RetryConfig
	logger zerolog.Logger

	// sleep is swappable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryingGenerator wraps the given generator with the retry policy.
func NewRetryingGenerator(inner Generator, cfg RetryConfig, logger zerolog.Logger) *RetryingGenerator {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultRetryConfig().MaxRetries
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultRetryConfig().InitialDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultRetryConfig().MaxDelay
	}

	return &RetryingGenerator{
		inner:  inner,
		cfg:    cfg,
		logger: logger.With().Str("component", "model_retry").Logger(),
		sleep:  sleepContext,
	}
}

// Generate delegates to the wrapped generator, retrying retryable failures
// with exponential backoff. A 429 carrying a daily-quota marker is never
// retried: waiting cannot help within the same day.
func (g *RetryingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	delay := g.cfg.InitialDelay

	var lastErr *StatusError
	for attempt := 0; ; attempt++ {
		text, err := g.inner.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			return "", err
		}

		if statusErr.StatusCode == 429 && isDailyQuota(statusErr.Message) {
			return "", fmt.Errorf("%w: %s", ErrDailyQuota, statusErr.Message)
		}

		if !statusErr.Retryable() {
			return "", statusErr
		}

		lastErr = statusErr
		if attempt >= g.cfg.MaxRetries {
			return "", &TransientError{
				Attempts:   attempt + 1,
				LastStatus: lastErr.StatusCode,
				Err:        lastErr,
			}
		}

		wait := delay
		if hint, ok := parseRetryAfter(statusErr.Message); ok {
			wait = hint + g.cfg.RetryAfterBuffer
		}

		g.logger.Warn().
			Int("attempt", attempt+1).
			Int("status", statusErr.StatusCode).
			Dur("wait", wait).
			Msg("model call failed, retrying")

		if err := g.sleep(ctx, wait); err != nil {
			return "", err
		}

		delay *= 2
		if delay > g.cfg.MaxDelay {
			delay = g.cfg.MaxDelay
		}
	}
}

// dailyQuotaMarkers are the substrings the provider uses when a 429 refers to
// a per-day quota rather than a per-minute rate limit.
var dailyQuotaMarkers = []string{"per day", "perday", "daily"}

func isDailyQuota(message string) bool {
	lowered := strings.ToLower(message)
	for _, marker := range dailyQuotaMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// retryAfterPatterns match the two shapes the provider embeds its retry hint
// in: prose ("Please retry in 37.5s") and a structured field ("retryDelay": "37s").
var retryAfterPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)retry in ([0-9]+(?:\.[0-9]+)?)s`),
	regexp.MustCompile(`(?i)retrydelay"?\s*:\s*"?([0-9]+(?:\.[0-9]+)?)s`),
}

func parseRetryAfter(message string) (time.Duration, bool) {
	for _, pattern := range retryAfterPatterns {
		match := pattern.FindStringSubmatch(message)
		if match == nil {
			continue
		}
		seconds, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		return time.Duration(seconds * float64(time.Second)), true
	}
	return 0, false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
