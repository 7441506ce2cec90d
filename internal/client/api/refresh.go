package api

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/ajudae/go-client/internal/logging"
)

// Credentials is the session surface the dispatcher needs. Implemented by
// session.Manager; tests substitute fakes.
type Credentials interface {
	// AccessToken returns the current access token, "" when absent.
	AccessToken(ctx context.Context) string

	// RefreshToken returns the current refresh token, "" when absent.
	RefreshToken(ctx context.Context) string

	// SetAccessToken records a newly obtained access token.
	SetAccessToken(ctx context.Context, token string)

	// SetRefreshToken records a rotated refresh token.
	SetRefreshToken(ctx context.Context, token string)

	// Clear ends the session: all credentials dropped together.
	Clear(ctx context.Context)
}

// tokenPair is the outcome of a refresh call. The refresh token is empty
// when the backend does not rotate.
type tokenPair struct {
	access  string
	refresh string
}

// refreshFunc performs the actual refresh HTTP call. It must go over the
// base transport so a 401 from /auth/refresh cannot recurse.
type refreshFunc func(ctx context.Context, refreshToken string) (tokenPair, error)

// coordinator guarantees at most one in-flight refresh call. Requests that
// hit a 401 while a refresh is already running wait for that call and share
// its outcome instead of racing the backend's token rotation with their own
// refresh attempts.
type coordinator struct {
	group singleflight.Group
	run   refreshFunc
	creds Credentials
	log   logging.Logger
}

// refresh returns the access token obtained by the shared refresh call.
// The new tokens are recorded on the credentials exactly once, inside the
// single execution.
func (c *coordinator) refresh(ctx context.Context, refreshToken string) (string, error) {
	token, err, shared := c.group.Do("refresh", func() (any, error) {
		// The shared call serves every waiter; one caller's cancellation
		// must not abort it. The transport timeout still bounds it.
		ctx := context.WithoutCancel(ctx)

		c.log.Debug(ctx, "refreshing access token")
		pair, err := c.run(ctx, refreshToken)
		if err != nil {
			return nil, err
		}

		c.creds.SetAccessToken(ctx, pair.access)
		if pair.refresh != "" {
			c.creds.SetRefreshToken(ctx, pair.refresh)
		}
		return pair.access, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		c.log.Debug(ctx, "joined in-flight token refresh")
	}
	return token.(string), nil
}
