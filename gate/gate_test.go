package gate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rustyeddy/traderdash/backend"
	"github.com/rustyeddy/traderdash/internal/stub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "credential")
	fs := NewFileStore(path)

	_, ok, err := fs.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, fs.Save("abc"))
	key, ok, err := fs.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", key)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, fs.Clear())
	require.NoError(t, fs.Clear())
	_, ok, err = fs.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_TightensExistingMode(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "credential")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, NewFileStore(path).Save("new"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestNew_StoredKeyIsLoggedIn(t *testing.T) {
	t.Parallel()

	calls := 0
	verify := VerifierFunc(func(context.Context) error { calls++; return errors.New("never called") })

	st := &MemoryStore{}
	g, err := New(st, verify)
	require.NoError(t, err)
	assert.Equal(t, LoggedOut, g.State())
	assert.ErrorIs(t, g.Require(), ErrLoggedOut)

	require.NoError(t, st.Save("k"))
	g, err = New(st, verify)
	require.NoError(t, err)
	assert.Equal(t, LoggedIn, g.State())
	assert.NoError(t, g.Require())
	assert.Zero(t, calls)
}

func TestSubmit_StoresBeforeVerifying(t *testing.T) {
	t.Parallel()

	st := &MemoryStore{}
	var g *Gate
	var seenKey string
	var seenState State
	g, err := New(st, VerifierFunc(func(context.Context) error {
		seenKey, _ = g.Credential()
		seenState = g.State()
		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, g.Submit(context.Background(), " secret "))
	assert.Equal(t, "secret", seenKey)
	assert.Equal(t, Verifying, seenState)
	assert.Equal(t, LoggedIn, g.State())
}

func TestSubmit_FailureClearsKey(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	calls := 0
	st := &MemoryStore{}
	g, err := New(st, VerifierFunc(func(context.Context) error { calls++; return cause }))
	require.NoError(t, err)

	err = g.Submit(context.Background(), "secret")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, Rejected, g.State())
	assert.Equal(t, 1, calls)

	_, ok, _ := st.Load()
	assert.False(t, ok)
}

func TestSubmit_EmptyKey(t *testing.T) {
	t.Parallel()

	g, err := New(&MemoryStore{}, VerifierFunc(func(context.Context) error { return nil }))
	require.NoError(t, err)
	err = g.Submit(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.ErrorIs(t, err, ErrNoKey)
	assert.Equal(t, LoggedOut, g.State())
}

func TestLogout(t *testing.T) {
	t.Parallel()

	st := &MemoryStore{}
	require.NoError(t, st.Save("k"))
	g, err := New(st, VerifierFunc(func(context.Context) error { return nil }))
	require.NoError(t, err)

	require.NoError(t, g.Logout())
	assert.Equal(t, LoggedOut, g.State())
	_, ok := g.Credential()
	assert.False(t, ok)
}

func TestStateString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "logged in", LoggedIn.String())
	assert.Equal(t, "rejected", Rejected.String())
	assert.Equal(t, "unknown", State(42).String())
}

func newGate(t *testing.T, status int) (*Gate, *MemoryStore, *stub.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := stub.New(backend.DefaultAuthHeader, "right")
	s.Seed()
	if status != 0 {
		s.Fail("/api/journal/stats", status)
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	st := &MemoryStore{}
	c := backend.NewClient(backend.Options{
		BaseURL:     srv.URL,
		Timeout:     time.Second,
		Credentials: backend.CredentialFunc(func() (string, bool) { return Credential(st) }),
	})
	g, err := New(st, c)
	require.NoError(t, err)
	return g, st, s
}

func TestSubmit_AgainstBackend(t *testing.T) {
	t.Run("right key", func(t *testing.T) {
		g, st, s := newGate(t, 0)
		require.NoError(t, g.Submit(context.Background(), "right"))
		assert.Equal(t, LoggedIn, g.State())
		key, _, _ := st.Load()
		assert.Equal(t, "right", key)
		assert.Equal(t, 1, s.Calls("/api/journal/stats"))
	})

	t.Run("wrong key", func(t *testing.T) {
		g, st, _ := newGate(t, 0)
		err := g.Submit(context.Background(), "wrong")
		assert.ErrorIs(t, err, ErrLoginFailed)
		assert.ErrorIs(t, err, backend.ErrAuthorization)
		assert.Equal(t, Rejected, g.State())
		_, ok, _ := st.Load()
		assert.False(t, ok)
	})

	t.Run("backend broken", func(t *testing.T) {
		g, _, _ := newGate(t, http.StatusInternalServerError)
		err := g.Submit(context.Background(), "right")
		assert.ErrorIs(t, err, ErrLoginFailed)
		assert.Equal(t, Rejected, g.State())
	})
}
