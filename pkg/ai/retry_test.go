package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type scriptedGenerator struct {
	responses []scriptedResponse
	calls     int
}

type scriptedResponse struct {
	text string
	err  error
}

func (s *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	idx := s.calls
	s.calls++
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	r := s.responses[idx]
	return r.text, r.err
}

func newTestRetrier(inner Generator, cfg RetryConfig) (*RetryingGenerator, *[]time.Duration) {
	g := NewRetryingGenerator(inner, cfg, zerolog.Nop())
	waits := &[]time.Duration{}
	g.sleep = func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
	return g, waits
}

func TestRetryingGeneratorPassesThroughSuccess(t *testing.T) {
	stub := &scriptedGenerator{responses: []scriptedResponse{{text: "feedback"}}}
	g, waits := newTestRetrier(stub, RetryConfig{MaxRetries: 3, InitialDelay: time.Second, MaxDelay: 8 * time.Second})

	text, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	require.Equal(t, "feedback", text)
	require.Equal(t, 1, stub.calls)
	require.Empty(t, *waits)
}

func TestRetryingGeneratorEmptyResponseIsValid(t *testing.T) {
	stub := &scriptedGenerator{responses: []scriptedResponse{{text: ""}}}
	g, _ := newTestRetrier(stub, RetryConfig{MaxRetries: 3, InitialDelay: time.Second, MaxDelay: 8 * time.Second})

	text, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	require.Empty(t, text)
	require.Equal(t, 1, stub.calls)
}

func TestRetryingGeneratorExhaustsRetriesOnOverload(t *testing.T) {
	stub := &scriptedGenerator{responses: []scriptedResponse{
		{err: &StatusError{StatusCode: 503, Message: "overloaded"}},
	}}
	g, waits := newTestRetrier(stub, RetryConfig{MaxRetries: 4, InitialDelay: time.Second, MaxDelay: 30 * time.Second})

	_, err := g.Generate(context.Background(), "prompt")

	var transient *TransientError
	require.ErrorAs(t, err, &transient)
	require.Equal(t, 5, transient.Attempts)
	require.Equal(t, 503, transient.LastStatus)
	require.Equal(t, 5, stub.calls, "one initial attempt plus the retry ceiling")

	require.Len(t, *waits, 4)
	for i := 1; i < len(*waits); i++ {
		require.Greater(t, (*waits)[i], (*waits)[i-1], "backoff must strictly increase below the cap")
	}
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}, *waits)
}

func TestRetryingGeneratorCapsBackoff(t *testing.T) {
	stub := &scriptedGenerator{responses: []scriptedResponse{
		{err: &StatusError{StatusCode: 500, Message: "internal"}},
	}}
	g, waits := newTestRetrier(stub, RetryConfig{MaxRetries: 5, InitialDelay: time.Second, MaxDelay: 4 * time.Second})

	_, err := g.Generate(context.Background(), "prompt")
	require.Error(t, err)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 4 * time.Second, 4 * time.Second}, *waits)
}

func TestRetryingGeneratorDailyQuotaIsNeverRetried(t *testing.T) {
	stub := &scriptedGenerator{responses: []scriptedResponse{
		{err: &StatusError{StatusCode: 429, Message: "Quota exceeded for metric generate_requests per day"}},
	}}
	g, waits := newTestRetrier(stub, RetryConfig{MaxRetries: 5, InitialDelay: time.Second, MaxDelay: 30 * time.Second})

	_, err := g.Generate(context.Background(), "prompt")
	require.ErrorIs(t, err, ErrDailyQuota)
	require.Equal(t, 1, stub.calls, "exactly one call before raising the quota error")
	require.Empty(t, *waits)
}

func TestRetryingGeneratorPerMinuteRateLimitIsRetried(t *testing.T) {
	stub := &scriptedGenerator{responses: []scriptedResponse{
		{err: &StatusError{StatusCode: 429, Message: "Rate limit exceeded, please slow down"}},
		{text: "recovered"},
	}}
	g, waits := newTestRetrier(stub, RetryConfig{MaxRetries: 3, InitialDelay: time.Second, MaxDelay: 8 * time.Second})

	text, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	require.Equal(t, "recovered", text)
	require.Equal(t, 2, stub.calls)
	require.Len(t, *waits, 1)
}

func TestRetryingGeneratorFatalErrorPropagatesImmediately(t *testing.T) {
	fatal := &StatusError{StatusCode: 400, Message: "invalid request"}
	stub := &scriptedGenerator{responses: []scriptedResponse{{err: fatal}}}
	g, waits := newTestRetrier(stub, RetryConfig{MaxRetries: 5, InitialDelay: time.Second, MaxDelay: 30 * time.Second})

	_, err := g.Generate(context.Background(), "prompt")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 400, statusErr.StatusCode)
	require.Equal(t, 1, stub.calls)
	require.Empty(t, *waits)
}

func TestRetryingGeneratorHonorsRetryAfterHint(t *testing.T) {
	stub := &scriptedGenerator{responses: []scriptedResponse{
		{err: &StatusError{StatusCode: 429, Message: `rate limited, "retryDelay": "7s"`}},
		{text: "ok"},
	}}
	g, waits := newTestRetrier(stub, RetryConfig{
		MaxRetries:       3,
		InitialDelay:     time.Second,
		MaxDelay:         30 * time.Second,
		RetryAfterBuffer: time.Second,
	})

	text, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	require.Equal(t, "ok", text)
	require.Equal(t, []time.Duration{8 * time.Second}, *waits, "hint plus safety buffer overrides computed backoff")
}

func TestRetryingGeneratorNonStatusErrorPropagates(t *testing.T) {
	plain := errors.New("marshal failure")
	stub := &scriptedGenerator{responses: []scriptedResponse{{err: plain}}}
	g, _ := newTestRetrier(stub, RetryConfig{MaxRetries: 3, InitialDelay: time.Second, MaxDelay: 8 * time.Second})

	_, err := g.Generate(context.Background(), "prompt")
	require.ErrorIs(t, err, plain)
	require.Equal(t, 1, stub.calls)
}

func TestParseRetryAfter(t *testing.T) {
	cases := []struct {
		message string
		want    time.Duration
		ok      bool
	}{
		{"Please retry in 37.5s before sending more requests", 37*time.Second + 500*time.Millisecond, true},
		{`{"retryDelay": "12s"}`, 12 * time.Second, true},
		{"quota exceeded", 0, false},
	}

	for _, tc := range cases {
		got, ok := parseRetryAfter(tc.message)
		require.Equal(t, tc.ok, ok, tc.message)
		require.Equal(t, tc.want, got, tc.message)
	}
}
