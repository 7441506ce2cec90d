package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ajudae/go-client/internal/logging"
)

// fakeCreds is an in-memory Credentials implementation for transport tests.
type fakeCreds struct {
	mu      sync.Mutex
	access  string
	refresh string
	cleared bool
}

func (f *fakeCreds) AccessToken(ctx context.Context) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access
}

func (f *fakeCreds) RefreshToken(ctx context.Context) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refresh
}

func (f *fakeCreds) SetAccessToken(ctx context.Context, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = token
}

func (f *fakeCreds) SetRefreshToken(ctx context.Context, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh = token
}

func (f *fakeCreds) Clear(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access, f.refresh = "", ""
	f.cleared = true
}

func (f *fakeCreds) snapshot() (access, refresh string, cleared bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access, f.refresh, f.cleared
}

// authServer is a scripted backend: /data requires the token in validTokens,
// /auth/refresh exchanges "R1" for a fresh access token.
type authServer struct {
	mu           sync.Mutex
	validTokens  map[string]bool
	refreshDelay time.Duration
	refreshFails bool

	refreshCalls atomic.Int64
	dataCalls    atomic.Int64
}

func newAuthServer() *authServer {
	return &authServer{validTokens: map[string]bool{"A-new": true}}
}

func (s *authServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		s.refreshCalls.Add(1)
		time.Sleep(s.refreshDelay)

		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if s.refreshFails || req.RefreshToken != "R1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"invalid refresh token"}`))
			return
		}
		_, _ = fmt.Fprint(w, `{"accessToken":"A-new","refreshToken":"R2"}`)
	})

	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		s.dataCalls.Add(1)

		s.mu.Lock()
		ok := s.validTokens[tokenOf(r)]
		s.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"token expired"}`))
			return
		}
		_, _ = fmt.Fprint(w, `{"value":"ok"}`)
	})

	return mux
}

func tokenOf(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > len(bearerPrefix) {
		return h[len(bearerPrefix):]
	}
	return ""
}

func newTestClient(t *testing.T, srv *httptest.Server, creds Credentials) *Client {
	t.Helper()
	return New(Options{
		BaseURL:     srv.URL,
		Credentials: creds,
		Logger:      logging.NewDefault(),
	})
}

func TestAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &fakeCreds{access: "A1"})
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/data", nil, nil, nil))
	require.Equal(t, "Bearer A1", gotAuth)
}

func TestSendsUnauthenticatedWhenNoToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &fakeCreds{})
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/data", nil, nil, nil))
	require.Empty(t, gotAuth)
}

func TestRefreshesAndRetriesOnExpiredToken(t *testing.T) {
	backend := newAuthServer()
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	creds := &fakeCreds{access: "A-old", refresh: "R1"}
	c := newTestClient(t, srv, creds)

	var out struct {
		Value string `json:"value"`
	}
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/data", nil, nil, &out))
	require.Equal(t, "ok", out.Value)

	require.EqualValues(t, 1, backend.refreshCalls.Load())
	require.EqualValues(t, 2, backend.dataCalls.Load())

	access, refresh, _ := creds.snapshot()
	require.Equal(t, "A-new", access)
	require.Equal(t, "R2", refresh, "rotated refresh token must be stored")
}

func TestSingleFlightRefreshAcrossConcurrentRequests(t *testing.T) {
	backend := newAuthServer()
	backend.refreshDelay = 100 * time.Millisecond
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	creds := &fakeCreds{access: "A-old", refresh: "R1"}
	c := newTestClient(t, srv, creds)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.Do(context.Background(), http.MethodGet, "/data", nil, nil, nil)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "request %d", i)
	}
	require.EqualValues(t, 1, backend.refreshCalls.Load(), "exactly one refresh call for the whole batch")
}

func TestAtMostOneRetry(t *testing.T) {
	// Backend accepts no token at all: the retry after a successful refresh
	// still 401s and that second failure must be surfaced, not retried.
	refreshCalls := atomic.Int64{}
	dataCalls := atomic.Int64{}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		refreshCalls.Add(1)
		_, _ = fmt.Fprint(w, `{"accessToken":"A-new"}`)
	})
	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		dataCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"still unauthorized"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv, &fakeCreds{access: "A-old", refresh: "R1"})

	err := c.Do(context.Background(), http.MethodGet, "/data", nil, nil, nil)
	require.ErrorIs(t, err, ErrUnauthorized)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "still unauthorized", apiErr.Message)

	require.EqualValues(t, 2, dataCalls.Load(), "original attempt plus exactly one retry")
	require.EqualValues(t, 1, refreshCalls.Load())
}

func TestNoRefreshTokenPropagates401(t *testing.T) {
	backend := newAuthServer()
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	c := newTestClient(t, srv, &fakeCreds{access: "A-old"})

	err := c.Do(context.Background(), http.MethodGet, "/data", nil, nil, nil)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.EqualValues(t, 0, backend.refreshCalls.Load())
	require.EqualValues(t, 1, backend.dataCalls.Load())
}

func TestRefreshFailureClearsWholeSession(t *testing.T) {
	backend := newAuthServer()
	backend.refreshFails = true
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	creds := &fakeCreds{access: "A-old", refresh: "R1"}
	c := newTestClient(t, srv, creds)

	err := c.Do(context.Background(), http.MethodGet, "/data", nil, nil, nil)
	require.ErrorIs(t, err, ErrSessionExpired)

	access, refresh, cleared := creds.snapshot()
	require.True(t, cleared)
	require.Empty(t, access)
	require.Empty(t, refresh)
}

func TestOtherErrorsPassThroughWithoutRetry(t *testing.T) {
	calls := atomic.Int64{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"post not found","code":"POST_NOT_FOUND"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &fakeCreds{access: "A1", refresh: "R1"})

	err := c.Do(context.Background(), http.MethodGet, "/posts/x", nil, nil, nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.Status)
	require.Equal(t, "post not found", apiErr.Message)
	require.Equal(t, "POST_NOT_FOUND", apiErr.Code)
	require.NotErrorIs(t, err, ErrUnauthorized)
	require.EqualValues(t, 1, calls.Load())
}

func TestRetryReplaysRequestBody(t *testing.T) {
	var bodies []string
	var mu sync.Mutex

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		_, _ = fmt.Fprint(w, `{"accessToken":"A-new"}`)
	})
	mux.HandleFunc("/posts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(data))
		mu.Unlock()

		if tokenOf(r) != "A-new" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"token expired"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv, &fakeCreds{access: "A-old", refresh: "R1"})

	in := map[string]string{"title": "t", "content": "c"}
	require.NoError(t, c.Do(context.Background(), http.MethodPost, "/posts", nil, in, nil))

	require.Len(t, bodies, 2)
	require.JSONEq(t, bodies[0], bodies[1], "retried request must carry the same body")
}

func TestQueryParametersAreEncoded(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &fakeCreds{})

	q := url.Values{}
	q.Set("page", "2")
	q.Set("search", "algebra linear")
	var out []struct{}
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/posts", q, nil, &out))

	require.Equal(t, "2", gotQuery.Get("page"))
	require.Equal(t, "algebra linear", gotQuery.Get("search"))
}
