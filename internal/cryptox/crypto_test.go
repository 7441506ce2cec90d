package cryptox

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ajudae/go-client/internal/shared"
)

func TestSealOpenRoundTrip(t *testing.T) {
	key := shared.RandBytes(32)

	sealed, err := Seal([]byte("token-value"), key)
	require.NoError(t, err)
	require.NotContains(t, string(sealed), "token-value")

	plain, err := Open(sealed, key)
	require.NoError(t, err)
	require.Equal(t, []byte("token-value"), plain)
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	key := shared.RandBytes(32)

	sealed, err := Seal([]byte("secret"), key)
	require.NoError(t, err)

	sealed[len(sealed)-1] ^= 0xff
	_, err = Open(sealed, key)
	require.Error(t, err)
}

func TestOpenRejectsWrongKey(t *testing.T) {
	sealed, err := Seal([]byte("secret"), shared.RandBytes(32))
	require.NoError(t, err)

	_, err = Open(sealed, shared.RandBytes(32))
	require.Error(t, err)
}

func TestOpenRejectsShortBlob(t *testing.T) {
	_, err := Open([]byte{1, 2, 3}, shared.RandBytes(32))
	require.ErrorIs(t, err, ErrMalformedSealed)
}

func TestLoadOrCreateKeyIsStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.key")

	k1, err := LoadOrCreateKey(path)
	require.NoError(t, err)
	require.Len(t, k1, 32)

	k2, err := LoadOrCreateKey(path)
	require.NoError(t, err)
	require.Equal(t, k1, k2)
}

func TestLoadOrCreateKeyDistinctFiles(t *testing.T) {
	dir := t.TempDir()

	k1, err := LoadOrCreateKey(filepath.Join(dir, "a.key"))
	require.NoError(t, err)
	k2, err := LoadOrCreateKey(filepath.Join(dir, "b.key"))
	require.NoError(t, err)
	require.NotEqual(t, k1, k2)
}
