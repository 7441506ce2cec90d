// Package credstore persists the session secrets (access token, refresh
// token, serialized user) on the device. Values are sealed before they touch
// disk, so the vault file never contains plaintext credentials.
//
// The store is deliberately forgiving: callers treat any failure as "value
// absent" and fall back to the in-memory session state, because the local
// database may be unavailable (read-only filesystems, emulators, first run).
package credstore

import "context"

// Keys under which the session triple is stored.
const (
	KeyAccessToken  = "authToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// Store is a durable key/value store for session secrets. A nil value with a
// nil error from Get means the key is absent. Implementations must be safe
// for concurrent use from parallel request paths.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error

	// SetMany writes several keys in one transaction, so a login either
	// persists the whole session triple or none of it.
	SetMany(ctx context.Context, values map[string][]byte) error

	Delete(ctx context.Context, key string) error

	// Clear removes every stored credential.
	Clear(ctx context.Context) error
}
