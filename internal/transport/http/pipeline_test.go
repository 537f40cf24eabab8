package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyhub-client/internal/credential"
	"studyhub-client/internal/domain"
	"studyhub-client/internal/infra/memory"
)

// fakeAPI accepts "Bearer fresh" on /data and answers 401 to anything else.
type fakeAPI struct {
	refreshCalls atomic.Int32
	refreshOK    bool
	dataCalls    atomic.Int32
	// gate, when set, holds every unauthorized /data response until released.
	gate chan struct{}

	mu          sync.Mutex
	authHeaders []string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)
		if r.Header.Get("Authorization") != "" {
			http.Error(w, `{"detail":"bearer not expected"}`, http.StatusBadRequest)
			return
		}
		if !f.refreshOK {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"refresh token expired"}`))
			return
		}
		time.Sleep(20 * time.Millisecond)
		_, _ = w.Write([]byte(`{"access_token":"fresh","token_type":"bearer"}`))
	})
	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		f.dataCalls.Add(1)
		auth := r.Header.Get("Authorization")
		f.mu.Lock()
		f.authHeaders = append(f.authHeaders, auth)
		f.mu.Unlock()
		if auth == "Bearer fresh" {
			_, _ = w.Write([]byte(`{"ok":true}`))
			return
		}
		if f.gate != nil {
			<-f.gate
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"token expired"}`))
	})
	mux.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		f.dataCalls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"kaput"}`))
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Incorrect email or password"}`))
	})
	return mux
}

type fixture struct {
	api      *fakeAPI
	server   *httptest.Server
	creds    *credential.Store
	nav      *memory.Navigator
	pipeline *Pipeline
	metrics  *Metrics
}

func newFixture(t *testing.T, api *fakeAPI, initialToken string) *fixture {
	t.Helper()
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)

	transport, err := NewNetTransport(server.URL, 5*time.Second)
	require.NoError(t, err)

	creds := credential.NewStore(memory.NewTokenSlot(initialToken))
	require.NoError(t, creds.Init(context.Background()))

	nav := memory.NewNavigator()
	metrics := NewMetrics(prometheus.NewRegistry())
	return &fixture{
		api:      api,
		server:   server,
		creds:    creds,
		nav:      nav,
		metrics:  metrics,
		pipeline: NewPipeline(transport, creds, nav, WithMetrics(metrics)),
	}
}

func TestSendAttachesBearerToken(t *testing.T) {
	f := newFixture(t, &fakeAPI{}, "fresh")

	resp, err := f.pipeline.Send(context.Background(), Request{Method: http.MethodGet, Path: "/data"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, []string{"Bearer fresh"}, f.api.authHeaders)
	assert.Zero(t, f.api.refreshCalls.Load())
}

func TestSendWithoutTokenIsUnauthenticated(t *testing.T) {
	f := newFixture(t, &fakeAPI{}, "")

	resp, err := f.pipeline.Send(context.Background(), Request{Method: http.MethodPost, Path: "/auth/login", NoRenew: true})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.Zero(t, f.api.refreshCalls.Load(), "login failures must not trigger renewal")
	assert.Empty(t, f.nav.Routes())
}

func TestSendRenewsAndReplaysOnce(t *testing.T) {
	f := newFixture(t, &fakeAPI{refreshOK: true}, "stale")

	resp, err := f.pipeline.Send(context.Background(), Request{Method: http.MethodGet, Path: "/data"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, int32(1), f.api.refreshCalls.Load())
	assert.Equal(t, []string{"Bearer stale", "Bearer fresh"}, f.api.authHeaders)
	assert.Equal(t, "fresh", f.creds.Token())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Renewals.WithLabelValues("renewed")))
}

func TestConcurrentUnauthorizedCallsShareOneRenewal(t *testing.T) {
	const n = 8
	api := &fakeAPI{refreshOK: true, gate: make(chan struct{})}
	f := newFixture(t, api, "stale")

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := f.pipeline.Send(context.Background(), Request{Method: http.MethodGet, Path: "/data"})
			if err == nil && resp.Status != http.StatusOK {
				err = errors.New(http.StatusText(resp.Status))
			}
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return api.dataCalls.Load() == n }, 2*time.Second, 5*time.Millisecond)
	close(api.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), api.refreshCalls.Load())
	assert.Equal(t, int32(2*n), api.dataCalls.Load())
	fresh := 0
	for _, h := range api.authHeaders {
		if h == "Bearer fresh" {
			fresh++
		}
	}
	assert.Equal(t, n, fresh)
}

func TestFailedRenewalLosesSessionOnce(t *testing.T) {
	const n = 6
	api := &fakeAPI{refreshOK: false, gate: make(chan struct{})}
	f := newFixture(t, api, "stale")

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.pipeline.Send(context.Background(), Request{Method: http.MethodGet, Path: "/data"})
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return api.dataCalls.Load() == n }, 2*time.Second, 5*time.Millisecond)
	close(api.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.ErrorIs(t, err, domain.ErrSessionLost)
	}
	assert.Equal(t, int32(1), api.refreshCalls.Load())
	assert.False(t, f.creds.IsAuthenticated())
	assert.Equal(t, 1, f.nav.Count(domain.RouteLogin))
	assert.Equal(t, int32(n), api.dataCalls.Load(), "no call is replayed after session loss")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SessionLost))
}

func TestNonAuthErrorsAreNotRetried(t *testing.T) {
	f := newFixture(t, &fakeAPI{refreshOK: true}, "stale")

	resp, err := f.pipeline.Send(context.Background(), Request{Method: http.MethodGet, Path: "/boom"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Equal(t, int32(1), f.api.dataCalls.Load())
	assert.Zero(t, f.api.refreshCalls.Load())
}

func TestTransportFailureIsWrapped(t *testing.T) {
	f := newFixture(t, &fakeAPI{}, "stale")
	f.server.Close()

	_, err := f.pipeline.Send(context.Background(), Request{Method: http.MethodGet, Path: "/data"})
	var transportErr *domain.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "GET /data", transportErr.Op)
	assert.True(t, f.creds.IsAuthenticated(), "transport failures leave the session alone")
}

func TestReplayIsNotRenewedAgain(t *testing.T) {
	// Refresh hands out a token /data still rejects.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh-token" {
			_, _ = w.Write([]byte(`{"access_token":"still-bad"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	transport, err := NewNetTransport(server.URL, time.Second)
	require.NoError(t, err)
	creds := credential.NewStore(memory.NewTokenSlot("stale"))
	require.NoError(t, creds.Init(context.Background()))
	nav := memory.NewNavigator()
	metrics := NewMetrics(prometheus.NewRegistry())
	pipeline := NewPipeline(transport, creds, nav, WithMetrics(metrics))

	resp, err := pipeline.Send(context.Background(), Request{Method: http.MethodGet, Path: "/data"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Renewals.WithLabelValues("renewed")))
	assert.Equal(t, "still-bad", creds.Token())
	assert.Empty(t, nav.Routes())
}
