// Package httpclient is a traced JSON client for outbound collaborator
// calls (payment gateways).
package httpclient

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

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/iliyamo/dantour/internal/metrics"
	"github.com/iliyamo/dantour/internal/tracing"
)

// StatusError is returned when the upstream answers outside 2xx.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(string(e.Body))
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("upstream returned %d: %s", e.Code, body)
}

// Client wraps an *http.Client with a span per call and an upstream name
// used for span names and metrics.
type Client struct {
	Name       string
	Tracer     trace.Tracer
	HTTPClient *http.Client
}

// New returns a Client for upstream name with the given per-call timeout.
func New(name string, timeout time.Duration) *Client {
	return &Client{
		Name:   name,
		Tracer: tracing.Tracer(),
		HTTPClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// PostJSON posts in as JSON and decodes the response into out (when not nil).
func (c *Client) PostJSON(ctx context.Context, target string, headers http.Header, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "encode request")
	}
	h := headers.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set("Content-Type", "application/json")
	return c.do(ctx, http.MethodPost, target, h, bytes.NewReader(body), out)
}

// PostForm posts url-encoded form values and decodes the JSON response.
func (c *Client) PostForm(ctx context.Context, target string, form url.Values, out any) error {
	h := http.Header{}
	h.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(ctx, http.MethodPost, target, h, strings.NewReader(form.Encode()), out)
}

func (c *Client) do(ctx context.Context, method, target string, headers http.Header, body io.Reader, out any) (err error) {
	parsed, err := url.Parse(target)
	if err != nil {
		return errors.Wrap(err, "parse url")
	}
	ctx, span := c.Tracer.Start(ctx, "call-"+c.Name, trace.WithSpanKind(trace.SpanKindClient))
	defer func() {
		metrics.UpstreamCalls.WithLabelValues(c.Name, metrics.Result(err)).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req, err := http.NewRequestWithContext(ctx, method, parsed.String(), body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	span.SetAttributes(
		attribute.String("http.url", parsed.Scheme+"://"+parsed.Host+parsed.Path),
		attribute.String("http.method", method),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, c.Name)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrap(err, "read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: raw}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
