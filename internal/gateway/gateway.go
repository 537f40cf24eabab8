// Package gateway maps each remote capability onto a pipeline call and a
// response shape. Gateways hold no state and never retry.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"studyhub-client/internal/domain"
	transport "studyhub-client/internal/transport/http"
)

// Sender issues a request through the authenticated pipeline.
type Sender interface {
	Send(ctx context.Context, req transport.Request) (transport.Response, error)
}

func jsonRequest(method, path string, body any) (transport.Request, error) {
	req := transport.Request{Method: method, Path: path, Header: make(http.Header)}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return transport.Request{}, err
		}
		req.Body = data
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do sends req and decodes a 2xx body into out (when non-nil).
func do(ctx context.Context, s Sender, req transport.Request, out any) error {
	resp, err := s.Send(ctx, req)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return remoteError(resp)
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &domain.RemoteError{Status: resp.Status, Message: "unexpected response: " + err.Error()}
	}
	return nil
}

func call(ctx context.Context, s Sender, method, path string, body, out any) error {
	req, err := jsonRequest(method, path, body)
	if err != nil {
		return err
	}
	return do(ctx, s, req, out)
}

// remoteError extracts the server's "detail", which is either a string or a
// list of validation issues carrying "msg".
func remoteError(resp transport.Response) *domain.RemoteError {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	message := ""
	if err := json.Unmarshal(resp.Body, &envelope); err == nil && len(envelope.Detail) > 0 {
		var text string
		var issues []struct {
			Msg string `json:"msg"`
		}
		switch {
		case json.Unmarshal(envelope.Detail, &text) == nil:
			message = text
		case json.Unmarshal(envelope.Detail, &issues) == nil:
			msgs := make([]string, 0, len(issues))
			for _, issue := range issues {
				if issue.Msg != "" {
					msgs = append(msgs, issue.Msg)
				}
			}
			message = strings.Join(msgs, "; ")
		}
	}
	return &domain.RemoteError{Status: resp.Status, Message: message}
}
