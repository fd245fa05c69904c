// Package transport executes described HTTP requests against the
// backend and classifies failures. It never inspects response bodies
// for business semantics; that is the response pipeline's job.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/smallbiznis/valora-session/internal/domain"
	"github.com/smallbiznis/valora-session/internal/storage"
)

const maxResponseBytes = 1 << 20

// Request describes a single backend call.
type Request struct {
	Method       string
	Path         string
	Query        url.Values
	Body         any
	AuthRequired bool
}

// Transport executes a described request and returns the raw response
// body or a classified infrastructure error.
type Transport interface {
	Execute(ctx context.Context, req Request) ([]byte, error)
}

// HTTPTransport is the default Transport. When a request is marked
// AuthRequired it reads the current access token from the secure store
// and attaches it; a missing token still sends the request so the
// server rejection flows through the uniform failure path.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
	tokens  storage.SecureStore
	limiter *rate.Limiter
	tracer  trace.Tracer
	logger  *zap.Logger
}

var _ Transport = (*HTTPTransport)(nil)

// Option customizes the HTTPTransport.
type Option func(*HTTPTransport)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(t *HTTPTransport) {
		if client != nil {
			t.client = client
		}
	}
}

// WithRateLimit throttles outgoing requests to the given budget per
// minute. Zero or negative disables throttling.
func WithRateLimit(requestsPerMinute int) Option {
	return func(t *HTTPTransport) {
		if requestsPerMinute <= 0 {
			return
		}
		burst := requestsPerMinute / 10
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
	}
}

// NewHTTPTransport constructs the default transport for baseURL.
func NewHTTPTransport(baseURL string, tokens storage.SecureStore, tracer trace.Tracer, logger *zap.Logger, opts ...Option) *HTTPTransport {
	if logger == nil {
		logger = zap.L()
	}
	t := &HTTPTransport{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
		tracer:  tracer,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Execute performs the request. Failures classify in priority order:
// connectivity or timeout faults, then non-2xx statuses with the raw
// body retained, then anything else.
func (t *HTTPTransport) Execute(ctx context.Context, req Request) ([]byte, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, domain.NewTransportError(fmt.Errorf("throttle wait: %w", err))
		}
	}

	var span trace.Span
	if t.tracer != nil {
		ctx, span = t.tracer.Start(ctx, "transport.execute", trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.path", req.Path),
		))
		defer span.End()
	}

	httpReq, err := t.buildRequest(ctx, req)
	if err != nil {
		return nil, domain.NewUnknownError(err)
	}

	start := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		if span != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return nil, domain.NewTransportError(err)
		}
		return nil, domain.NewUnknownError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, domain.NewTransportError(fmt.Errorf("read response: %w", err))
	}

	if span != nil {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	}
	t.logger.Debug("backend call",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if span != nil {
			span.SetStatus(codes.Error, resp.Status)
		}
		return nil, domain.NewServerError(resp.StatusCode, body)
	}
	return body, nil
}

func (t *HTTPTransport) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	endpoint := t.baseURL + req.Path
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	var payload io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, payload)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	if req.AuthRequired {
		token, err := t.tokens.Get(storage.KeyAccessToken)
		if err != nil {
			t.logger.Warn("read access token", zap.Error(err))
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return httpReq, nil
}
