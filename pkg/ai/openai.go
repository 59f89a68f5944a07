package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultBaseURL targets Gemini's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

var (
	modelCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "inkwell",
		Subsystem: "ai",
		Name:      "model_call_duration_seconds",
		Help:      "Duration of model generation requests",
	}, []string{"model"})

	modelCallFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inkwell",
		Subsystem: "ai",
		Name:      "model_call_failures_total",
		Help:      "Number of failed model generation requests",
	}, []string{"model", "status"})
)

// ClientConfig defines configuration options for the model client.
type ClientConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// Client issues single generation calls against the model provider. It keeps
// no cache and no cross-call state; every call is a fresh round-trip.
type Client struct {
	client *openai.Client
	cfg    ClientConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewClient builds a provider client from the supplied configuration.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("model api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash-lite"
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL

	return &Client{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/inkwell-ed/inkwell-api/pkg/ai"),
		logger: cfg.Logger.With().Str("component", "model_client").Logger(),
	}, nil
}

// Generate sends the prompt and returns the raw response text. An empty
// response is valid; the model may legitimately return no content. Provider
// failures are surfaced as *StatusError for retry classification.
func (c *Client) Generate(parent context.Context, prompt string) (string, error) {
	ctx, span := c.tracer.Start(parent, "ai.generate", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, request)
	modelCallDuration.WithLabelValues(c.cfg.Model).Observe(time.Since(start).Seconds())

	if err != nil {
		statusErr := classify(err)
		modelCallFailures.WithLabelValues(c.cfg.Model, fmt.Sprintf("%d", statusErr.StatusCode)).Inc()
		span.RecordError(statusErr)
		span.SetStatus(codes.Error, statusErr.Error())
		return "", statusErr
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}

// classify converts provider errors into StatusError. Errors without an HTTP
// status (network failures, timeouts) are treated as overload so the retry
// layer backs off and tries again.
func classify(err error) *StatusError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &StatusError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}

	return &StatusError{StatusCode: 503, Message: err.Error()}
}
