package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// maxResponseBody caps how much of a response body is read into memory.
const maxResponseBody = 8 << 20

// Request describes one outbound call relative to the API base URL.
type Request struct {
	Method string
	Path   string
	Body   []byte
	Header http.Header
	// NoRenew disables session renewal for this call; a 401 is returned as-is.
	NoRenew bool
}

// Response is the status and raw body of a completed exchange.
type Response struct {
	Status int
	Body   []byte
	Header http.Header
}

// OK reports a 2xx status.
func (r Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Transport exchanges a single request with the server.
type Transport interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// NetTransport is a Transport over net/http. Its cookie jar carries the
// httpOnly refresh cookie the server sets, so renewal needs no bearer header.
type NetTransport struct {
	client  *http.Client
	baseURL string
}

func NewNetTransport(baseURL string, timeout time.Duration) (*NetTransport, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &NetTransport{
		client:  &http.Client{Jar: jar, Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (t *NetTransport) Do(ctx context.Context, req Request) (Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, t.baseURL+req.Path, body)
	if err != nil {
		return Response{}, err
	}
	if req.Header != nil {
		httpReq.Header = req.Header.Clone()
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return Response{}, fmt.Errorf("read body: %w", err)
	}
	return Response{Status: resp.StatusCode, Body: data, Header: resp.Header}, nil
}
