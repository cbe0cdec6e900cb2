package faceapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kozaktomas/face-portal/internal/constants"
	"github.com/kozaktomas/face-portal/internal/metrics"
)

var errHeaderTimeout = errors.New("no response headers within wait bound")

// newRequest creates an upstream request carrying the caller's identity token.
func (c *Client) newRequest(ctx context.Context, method, endpoint, uid string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	req.Header.Set(constants.AuthenticationHeader, uid)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// doBuffered performs a request bounded by timeout and reads the whole response body.
// Any HTTP status is returned as a Response; only transport failures are errors.
func (c *Client) doBuffered(ctx context.Context, op, method, endpoint, uid string, body io.Reader, contentType string, timeout time.Duration) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := c.newRequest(ctx, method, endpoint, uid, body, contentType)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req) //nolint:gosec // URL constructed from validated parsedURL via resolveURL
	if err != nil {
		err = classifyTransportError(err)
		metrics.ObserveUpstream(op, outcomeOf(err), time.Since(start))
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		err = classifyTransportError(err)
		metrics.ObserveUpstream(op, outcomeOf(err), time.Since(start))
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	metrics.ObserveUpstream(op, metrics.StatusOutcome(resp.StatusCode), time.Since(start))

	c.captureResponse(op, data)

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// doStream performs a request whose wait bound only covers the response headers.
// The caller owns the returned body; closing it releases the request context.
func (c *Client) doStream(ctx context.Context, op, method, endpoint, uid string, body io.Reader, contentType string, timeout time.Duration) (*http.Response, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	timer := time.AfterFunc(timeout, func() { cancel(errHeaderTimeout) })

	req, err := c.newRequest(ctx, method, endpoint, uid, body, contentType)
	if err != nil {
		timer.Stop()
		cancel(nil)
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req) //nolint:gosec // URL constructed from validated parsedURL via resolveURL
	fired := !timer.Stop()
	if err == nil && fired {
		resp.Body.Close()
		err = context.Cause(ctx)
	}
	if err != nil {
		if errors.Is(context.Cause(ctx), errHeaderTimeout) {
			err = fmt.Errorf("%w: %w", ErrTimeout, errHeaderTimeout)
		} else {
			err = classifyTransportError(err)
		}
		cancel(nil)
		metrics.ObserveUpstream(op, outcomeOf(err), time.Since(start))
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	metrics.ObserveUpstream(op, metrics.StatusOutcome(resp.StatusCode), time.Since(start))

	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: func() { cancel(nil) }}
	return resp, nil
}

// cancelOnClose releases the request context once the streamed body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel func()
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// doJSON performs a buffered request and unmarshals a 2xx JSON response into T.
// Non-2xx responses become a *StatusError.
func doJSON[T any](ctx context.Context, c *Client, op, method, endpoint, uid string, timeout time.Duration) (*T, error) {
	resp, err := c.doBuffered(ctx, op, method, endpoint, uid, nil, "", timeout)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{StatusCode: resp.StatusCode, Header: resp.Header, Body: resp.Body}
	}

	var result T
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	return &result, nil
}
