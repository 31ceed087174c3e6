// Package transport issues probe requests over real HTTP.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/hamed0406/probecheck/internal/harness"
)

// DefaultMaxBodyBytes bounds how much of a response body is read into memory.
const DefaultMaxBodyBytes = 64 << 10

const userAgent = "probecheck/1.0"

// HTTPTransport is the production harness.Transport.
type HTTPTransport struct {
	Client       *http.Client
	MaxBodyBytes int64
	DNS          *DNSDiagnoser // nil skips DNS diagnosis on connection errors
}

// NewHTTPTransport returns a transport on a fresh, non-shared client that
// reports redirects instead of following them.
func NewHTTPTransport() *HTTPTransport {
	c := cleanhttp.DefaultClient()
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &HTTPTransport{
		Client:       c,
		MaxBodyBytes: DefaultMaxBodyBytes,
		DNS:          NewDNSDiagnoser(),
	}
}

func (t *HTTPTransport) Do(ctx context.Context, req harness.Request) (*harness.Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	hreq, err := http.NewRequestWithContext(ctx, string(req.Method), req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		hreq.Header.Set("Content-Type", "application/json")
	}
	hreq.Header.Set("Accept", "application/json, */*")
	hreq.Header.Set("User-Agent", userAgent)
	for k, v := range req.Headers {
		hreq.Header.Set(k, v)
	}

	resp, err := t.Client.Do(hreq)
	if err != nil {
		return nil, t.classify(ctx, hreq.URL, err)
	}
	defer resp.Body.Close()

	limit := t.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: reading body after status %d: %v", harness.ErrTimeout, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("read body after status %d: %w", resp.StatusCode, err)
	}
	return &harness.Response{StatusCode: resp.StatusCode, Body: data}, nil
}

func (t *HTTPTransport) classify(ctx context.Context, u *url.URL, err error) error {
	switch {
	case isTimeout(err):
		return fmt.Errorf("%w: %v", harness.ErrTimeout, err)
	case isConnectionError(err):
		if t.DNS != nil {
			if st := t.DNS.Diagnose(ctx, u.Hostname()); st.Class != "" {
				return fmt.Errorf("%w: %v (dns=%s)", harness.ErrConnection, err, st.Class)
			}
		}
		return fmt.Errorf("%w: %v", harness.ErrConnection, err)
	}
	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// isConnectionError is true only when no connection was established. A
// reset on an open connection is not one.
func isConnectionError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var op *net.OpError
	if errors.As(err, &op) {
		return op.Op == "dial"
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH)
}
