package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ajudae/go-client/internal/logging"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

// authTransport intercepts every outbound request: it attaches the bearer
// credential before send and drives the refresh protocol on a 401 response.
// It never mutates the caller's request; attempts are clones.
type authTransport struct {
	base    http.RoundTripper
	creds   Credentials
	refresh *coordinator
	log     logging.Logger
}

// RoundTrip sends the request with the current access token attached. On a
// 401 it resolves the refresh token, awaits the shared refresh outcome, and
// resubmits the request exactly once with the new token. Every other
// response or error passes through unmodified.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	attempt := req.Clone(ctx)
	if token := t.creds.AccessToken(ctx); token != "" {
		attempt.Header.Set(authorizationHeader, bearerPrefix+token)
	}

	resp, err := t.base.RoundTrip(attempt)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	refreshToken := t.creds.RefreshToken(ctx)
	if refreshToken == "" {
		// No refresh possible; the caller must re-authenticate.
		return resp, nil
	}

	retry, retryErr := replay(req)
	if retryErr != nil {
		t.log.Warn(ctx, "cannot replay request body, surfacing 401", "error", retryErr)
		return resp, nil
	}

	token, err := t.refresh.refresh(ctx, refreshToken)
	if err != nil {
		drain(resp)
		t.log.Warn(ctx, "token refresh failed, ending session", "error", err)
		t.creds.Clear(ctx)
		return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	drain(resp)
	retry.Header.Set(authorizationHeader, bearerPrefix+token)

	// A request that fails with 401 again after a successful refresh is a
	// terminal failure for its caller: this path is not re-entered.
	return t.base.RoundTrip(retry)
}

// replay clones req with a fresh, unread body so it can be resubmitted.
func replay(req *http.Request) (*http.Request, error) {
	retry := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return retry, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("request body is not rewindable")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	retry.Body = body
	return retry, nil
}

// drain discards and closes a response body that will not be returned to
// the caller, so the underlying connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
