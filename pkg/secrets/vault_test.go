package secrets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vaultServer(t *testing.T, status int, body string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		assert.Equal(t, "test-token", r.Header.Get("X-Vault-Token"))
		assert.Equal(t, "/v1/secret/data/fonoclinic/db", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(addr string) VaultConfig {
	return VaultConfig{
		Enabled:   true,
		Addr:      addr,
		Token:     "test-token",
		Mount:     "secret",
		Path:      "fonoclinic/db",
		KVVersion: 2,
		Timeout:   time.Second,
	}
}

func TestApplyVaultSecrets_LoadsCredentialKeysOnly(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_USER", "already-set")
	t.Setenv("PATH_OVERRIDE", "")

	srv := vaultServer(t, http.StatusOK,
		`{"data":{"data":{"DB_PASSWORD":"s3cret","DB_USER":"vault-user","PATH_OVERRIDE":"/tmp"}}}`, nil)

	result, err := ApplyVaultSecrets(context.Background(), testConfig(srv.URL))
	require.NoError(t, err)

	assert.Equal(t, []string{"DB_PASSWORD"}, result.Loaded)
	assert.Equal(t, []string{"DB_USER"}, result.Skipped)
	assert.Equal(t, []string{"PATH_OVERRIDE"}, result.Ignored)
	assert.Equal(t, "s3cret", os.Getenv("DB_PASSWORD"))
	assert.Equal(t, "already-set", os.Getenv("DB_USER"))
	assert.Empty(t, os.Getenv("PATH_OVERRIDE"))
}

func TestApplyVaultSecrets_ClientErrorIsNotRetried(t *testing.T) {
	var hits int32
	srv := vaultServer(t, http.StatusForbidden, `{"errors":["permission denied"]}`, &hits)

	_, err := ApplyVaultSecrets(context.Background(), testConfig(srv.URL))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestApplyVaultSecrets_Disabled(t *testing.T) {
	result, err := ApplyVaultSecrets(context.Background(), VaultConfig{})
	require.NoError(t, err)
	assert.Empty(t, result.Loaded)
}

func TestApplyVaultSecrets_Incomplete(t *testing.T) {
	_, err := ApplyVaultSecrets(context.Background(), VaultConfig{Enabled: true, Addr: "http://vault"})
	assert.Error(t, err)
}

func TestBuildVaultURL(t *testing.T) {
	url, err := buildVaultURL("http://vault:8200/", "/secret/", "/fonoclinic/db", 1)
	require.NoError(t, err)
	assert.Equal(t, "http://vault:8200/v1/secret/fonoclinic/db", url)

	url, err = buildVaultURL("http://vault:8200", "secret", "fonoclinic/db", 2)
	require.NoError(t, err)
	assert.Equal(t, "http://vault:8200/v1/secret/data/fonoclinic/db", url)
}
