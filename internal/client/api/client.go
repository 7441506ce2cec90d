// Package api implements the HTTP client for the Ajudaê backend: a typed
// request dispatcher that attaches the bearer credential to every call,
// detects authentication expiry, and transparently refreshes the token pair
// while coalescing concurrent refresh attempts into a single flight.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ajudae/go-client/internal/client/models"
	"github.com/ajudae/go-client/internal/logging"
)

const defaultTimeout = 30 * time.Second

// Client is the typed HTTP client. Domain requests go through Do and are
// dispatched via the auth transport; the login and refresh endpoints use the
// base transport directly.
type Client struct {
	baseURL string
	authed  *http.Client
	plain   *http.Client
	log     logging.Logger
}

// Options configures a Client. Credentials and Logger are required; Base
// defaults to http.DefaultTransport and Timeout to 30s. The timeout bounds
// the whole exchange including a refresh and retry, so a refresh call that
// never resolves cannot suspend callers indefinitely.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	Credentials Credentials
	Logger      logging.Logger
	Base        http.RoundTripper
}

// New constructs a Client. Each Client owns its own session wiring, so
// tests can run several isolated clients in parallel.
func New(opts Options) *Client {
	base := opts.Base
	if base == nil {
		base = http.DefaultTransport
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	log := opts.Logger.With("component", "api")

	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		plain:   &http.Client{Transport: base, Timeout: timeout},
		log:     log,
	}

	c.authed = &http.Client{
		Transport: &authTransport{
			base:  base,
			creds: opts.Credentials,
			refresh: &coordinator{
				run:   c.refreshCall,
				creds: opts.Credentials,
				log:   log,
			},
			log: log,
		},
		Timeout: timeout,
	}
	return c
}

// Do performs an authenticated JSON request. in (when non-nil) is marshaled
// as the request body; a 2xx response is decoded into out (when non-nil).
// Non-2xx responses come back as *Error carrying the backend message.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	return c.dispatch(ctx, c.authed, method, path, query, in, out)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates against POST /auth/login. It goes through the auth
// transport like any other request; with no token present the request is
// simply sent unauthenticated.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	if err := c.dispatch(ctx, c.authed, http.MethodPost, "/auth/login", nil, loginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" || out.User == nil {
		return nil, errors.New("login response missing token or user")
	}
	return &out, nil
}

type registerRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role,omitempty"`
}

// Register creates an account via POST /auth/register. The backend signs
// the new user in, so the response mirrors Login's.
func (c *Client) Register(ctx context.Context, name, email, password string, role models.Role) (*models.LoginResponse, error) {
	var out models.LoginResponse
	req := registerRequest{Name: name, Email: email, Password: password, Role: role}
	if err := c.dispatch(ctx, c.authed, http.MethodPost, "/auth/register", nil, req, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" || out.User == nil {
		return nil, errors.New("register response missing token or user")
	}
	return &out, nil
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// refreshCall exchanges the refresh token for a new access token over the
// base transport. Run only by the coordinator's single flight.
func (c *Client) refreshCall(ctx context.Context, refreshToken string) (tokenPair, error) {
	var out refreshResponse
	if err := c.dispatch(ctx, c.plain, http.MethodPost, "/auth/refresh", nil, refreshRequest{RefreshToken: refreshToken}, &out); err != nil {
		return tokenPair{}, err
	}
	if out.AccessToken == "" {
		return tokenPair{}, errors.New("refresh response missing access token")
	}
	return tokenPair{access: out.AccessToken, refresh: out.RefreshToken}, nil
}

func (c *Client) dispatch(ctx context.Context, hc *http.Client, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return c.mapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	return errorFromResponse(resp)
}

// mapTransportError unwraps the *url.Error envelope http.Client adds.
// Session-expiry surfaces as-is; cancellation stays recognizable; anything
// else is a transport failure.
func (c *Client) mapTransportError(err error) error {
	if errors.Is(err, ErrSessionExpired) {
		return fmt.Errorf("%w", ErrSessionExpired)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// errorFromResponse builds an *Error from a non-2xx response, keeping the
// backend-provided message where available.
func errorFromResponse(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
		apiErr.Code = payload.Code
	}
	return apiErr
}
