package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"studyhub-client/internal/credential"
	"studyhub-client/internal/domain"
)

// DefaultRefreshPath is the renewal endpoint; it authenticates with the refresh cookie.
const DefaultRefreshPath = "/auth/refresh-token"

const renewKey = "renew"

// Navigator redirects the user, e.g. to the login entry point.
type Navigator interface {
	Navigate(route string)
}

// Pipeline sends every API call: it attaches the bearer token, renews an
// expired session at most once per call, and escalates to session loss when
// renewal fails. Renewals are single-flight across all concurrent callers.
type Pipeline struct {
	transport   Transport
	creds       *credential.Store
	nav         Navigator
	logger      *zap.Logger
	metrics     *Metrics
	refreshPath string
	renewals    singleflight.Group
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

func WithMetrics(metrics *Metrics) Option {
	return func(p *Pipeline) { p.metrics = metrics }
}

func WithRefreshPath(path string) Option {
	return func(p *Pipeline) { p.refreshPath = path }
}

func NewPipeline(transport Transport, creds *credential.Store, nav Navigator, opts ...Option) *Pipeline {
	p := &Pipeline{
		transport:   transport,
		creds:       creds,
		nav:         nav,
		logger:      zap.NewNop(),
		refreshPath: DefaultRefreshPath,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// attempt is the retry state of one Send call. It travels alongside the
// request instead of being stamped onto it.
type attempt struct {
	n       int
	token   string
	version uint64
}

func (a attempt) retried() bool { return a.n > 0 }

// Send issues req and returns the server's response for any status except an
// unrecoverable 401. Transport failures come back as *domain.TransportError and
// a failed renewal as domain.ErrSessionLost. Non-auth errors are never retried.
func (p *Pipeline) Send(ctx context.Context, req Request) (Response, error) {
	token, version := p.creds.Current()
	return p.send(ctx, req, attempt{token: token, version: version})
}

func (p *Pipeline) send(ctx context.Context, req Request, at attempt) (Response, error) {
	resp, err := p.exchange(ctx, req, at.token)
	if err != nil {
		return Response{}, err
	}
	if resp.Status != http.StatusUnauthorized || req.NoRenew || at.retried() {
		return resp, nil
	}

	fresh, err := p.renew(ctx, at.version)
	if err != nil {
		return Response{}, err
	}
	return p.send(ctx, req, attempt{n: at.n + 1, token: fresh})
}

func (p *Pipeline) exchange(ctx context.Context, req Request, token string) (Response, error) {
	header := req.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	header.Set("X-Request-ID", uuid.NewString())
	req.Header = header

	start := time.Now()
	resp, err := p.transport.Do(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		p.metrics.observe(req.Method, 0, elapsed)
		p.logger.Debug("request failed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return Response{}, &domain.TransportError{Op: req.Method + " " + req.Path, Err: err}
	}
	p.metrics.observe(req.Method, resp.Status, elapsed)
	p.logger.Debug("request completed",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", resp.Status),
		zap.Duration("elapsed", elapsed))
	return resp, nil
}

// renew returns a token to retry with. stale is the credential version the
// failed call was sent with. Callers always join a renewal in flight; with
// none in flight, a store that moved past stale means the session was
// already renewed (or lost) and no new renewal is started.
func (p *Pipeline) renew(ctx context.Context, stale uint64) (string, error) {
	ch := p.renewals.DoChan(renewKey, func() (interface{}, error) {
		if token, done, err := p.settled(stale); done {
			return token, err
		}
		return p.refresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", &domain.TransportError{Op: "renew session", Err: ctx.Err()}
	}
}

// settled reports whether the session changed since version stale was read.
func (p *Pipeline) settled(stale uint64) (string, bool, error) {
	current, version := p.creds.Current()
	if version == stale {
		return "", false, nil
	}
	if current == "" {
		return "", true, fmt.Errorf("%w: cleared during renewal", domain.ErrSessionLost)
	}
	return current, true, nil
}

func (p *Pipeline) refresh(ctx context.Context) (string, error) {
	p.logger.Info("renewing session")
	resp, err := p.transport.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   p.refreshPath,
		Header: http.Header{"X-Request-ID": []string{uuid.NewString()}},
	})

	var grant domain.TokenGrant
	switch {
	case err != nil:
		err = fmt.Errorf("refresh: %w", err)
	case !resp.OK():
		err = fmt.Errorf("refresh: status %d", resp.Status)
	default:
		if decodeErr := json.Unmarshal(resp.Body, &grant); decodeErr != nil {
			err = fmt.Errorf("refresh: decode: %w", decodeErr)
		} else if grant.AccessToken == "" {
			err = fmt.Errorf("refresh: empty access token")
		}
	}
	if err != nil {
		return "", p.loseSession(ctx, err)
	}

	if saveErr := p.creds.Set(ctx, grant.AccessToken); saveErr != nil {
		p.logger.Warn("renewed token not persisted", zap.Error(saveErr))
	}
	p.metrics.renewal("renewed")
	p.logger.Info("session renewed")
	return grant.AccessToken, nil
}

func (p *Pipeline) loseSession(ctx context.Context, cause error) error {
	p.metrics.renewal("failed")
	p.logger.Warn("session renewal failed", zap.Error(cause))
	if err := p.creds.Clear(ctx); err != nil {
		p.logger.Warn("clear credentials", zap.Error(err))
	}
	p.nav.Navigate(domain.RouteLogin)
	return fmt.Errorf("%w: %v", domain.ErrSessionLost, cause)
}
