// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	perrors "jobboard-portal/internal/common/errors"
	"jobboard-portal/internal/common/logger"
	"jobboard-portal/internal/common/metrics"
)

const maxResponseBytes = 4 << 20

type tokenKey struct{}

// WithToken returns a context whose backend requests are authenticated with token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the session token carried by ctx, if any.
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Request describes one backend call. Route is the path template used for metric
// and span names, so that ids do not explode label cardinality.
type Request struct {
	Method string
	Route  string
	Path   string
	Query  url.Values
	Body   interface{}
}

type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client is the gateway to the job board REST backend. It returns parsed envelopes
// and only fails on transport problems; success=false envelopes are returned as-is.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	tracer     trace.Tracer
	logger     logger.Logger
}

func NewClient(cfg Config, log logger.Logger) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(limit, burst),
		tracer:  otel.Tracer("jobboard-portal/gateway"),
		logger:  log.WithFields(map[string]interface{}{"component": "gateway"}),
	}
}

// Do issues req against the backend and decodes the response envelope.
func (c *Client) Do(ctx context.Context, req Request) (*Envelope, error) {
	route := req.Route
	if route == "" {
		route = req.Path
	}
	operation := req.Method + " " + route

	ctx, span := c.tracer.Start(ctx, operation, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.route", route),
		))
	defer span.End()

	start := time.Now()
	env, err := c.do(ctx, req, operation)
	metrics.GatewayRequestDuration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metrics.GatewayRequests.WithLabelValues(req.Method, route, metrics.OutcomeTransport).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		c.logger.Warn("backend request failed", map[string]interface{}{
			"operation": operation,
			"error":     err.Error(),
		})
	case !env.Success:
		metrics.GatewayRequests.WithLabelValues(req.Method, route, metrics.OutcomeRejected).Inc()
		span.SetAttributes(attribute.Bool("envelope.success", false))
		c.logger.Debug("backend rejected request", map[string]interface{}{
			"operation": operation,
			"message":   env.Message,
		})
	default:
		metrics.GatewayRequests.WithLabelValues(req.Method, route, metrics.OutcomeSuccess).Inc()
		span.SetAttributes(attribute.Bool("envelope.success", true))
	}

	return env, err
}

func (c *Client) do(ctx context.Context, req Request, operation string) (*Envelope, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, perrors.NewTransportFailureError(operation, err)
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, perrors.NewTransportFailureError(operation, fmt.Errorf("marshal body: %w", err))
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, perrors.NewTransportFailureError(operation, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := TokenFrom(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, perrors.NewTransportFailureError(operation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, perrors.NewTransportFailureError(operation, fmt.Errorf("read body: %w", err))
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, perrors.NewTransportFailureError(operation,
			fmt.Errorf("status %d: undecodable envelope: %w", resp.StatusCode, err))
	}
	return &env, nil
}
