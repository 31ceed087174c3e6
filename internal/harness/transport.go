package harness

import (
	"context"
	"errors"
	"time"
)

// Transports wrap these so the harness can tell failure kinds apart.
var (
	ErrConnection = errors.New("connection failed")
	ErrTimeout    = errors.New("timed out")
)

// Request is a single HTTP exchange the harness asks a Transport for.
type Request struct {
	Method  Method
	URL     string
	Headers map[string]string
	Body    any
	Timeout time.Duration
}

// Response is what came back when the target answered at all.
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport performs one request. A nil error means a response was received,
// whatever its status code.
type Transport interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req Request) (*Response, error)

func (f TransportFunc) Do(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
