package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxResponseBodySize bounds how much of a collaborator response is read (1MB).
const maxResponseBodySize = 1 << 20

// WebhookClient posts each turn to the collaborator's HTTP webhook.
type WebhookClient struct {
	url    string
	http   *http.Client
	logger *slog.Logger
	tracer trace.Tracer
}

// WebhookConfig holds configuration for the webhook client.
type WebhookConfig struct {
	URL            string
	RequestTimeout time.Duration
}

// DefaultWebhookConfig returns default configuration.
func DefaultWebhookConfig() WebhookConfig {
	return WebhookConfig{
		RequestTimeout: 30 * time.Second,
	}
}

// NewWebhookClient creates a client for the collaborator webhook at cfg.URL.
func NewWebhookClient(cfg WebhookConfig, logger *slog.Logger) (*WebhookClient, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("collaborator url is required: %w", ErrUnavailable)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultWebhookConfig().RequestTimeout
	}

	return &WebhookClient{
		url:    cfg.URL,
		http:   &http.Client{Timeout: cfg.RequestTimeout},
		logger: logger,
		tracer: otel.Tracer("scamdex.internal.agent.webhook"),
	}, nil
}

// Converse sends one turn and decodes the verdict. Any transport error,
// non-2xx status or malformed body is reported as ErrCollaborator.
func (c *WebhookClient) Converse(ctx context.Context, req Request) (Verdict, error) {
	ctx, span := c.tracer.Start(ctx, "agent.converse", trace.WithAttributes(
		attribute.String("session.id", req.SessionID),
		attribute.Int("history.length", len(req.History)),
	))
	defer span.End()

	verdict, err := c.converse(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Verdict{}, fmt.Errorf("%w: %w", ErrCollaborator, err)
	}
	span.SetAttributes(attribute.String("verdict.kind", verdict.Kind().String()))
	return verdict, nil
}

func (c *WebhookClient) converse(ctx context.Context, req Request) (Verdict, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Verdict{}, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Verdict{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Verdict{}, fmt.Errorf("post webhook: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("failed to close collaborator response body", "error", closeErr)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return Verdict{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Verdict{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return DecodeVerdict(data)
}
