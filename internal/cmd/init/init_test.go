package init

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/wikimark/internal/config"
)

func TestVerifyConnection_Server(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pages/Start", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("= Start ="))
	}))
	defer server.Close()

	cfg := &config.Config{
		PagesURL:   server.URL + "/pages/PAGE",
		PagesToken: "test-token",
	}

	assert.NoError(t, verifyConnection(context.Background(), cfg))
}

func TestVerifyConnection_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
		errContain string
	}{
		{
			name:       "200 OK",
			statusCode: http.StatusOK,
		},
		{
			name:       "404 counts as reachable",
			statusCode: http.StatusNotFound,
		},
		{
			name:       "401 Unauthorized",
			statusCode: http.StatusUnauthorized,
			wantErr:    true,
			errContain: "authentication failed",
		},
		{
			name:       "403 Forbidden",
			statusCode: http.StatusForbidden,
			wantErr:    true,
			errContain: "access denied",
		},
		{
			name:       "502 Bad Gateway",
			statusCode: http.StatusBadGateway,
			wantErr:    true,
			errContain: "unexpected status code: 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			err := verifyConnection(context.Background(), &config.Config{PagesURL: server.URL})
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContain)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVerifyConnection_NetworkError(t *testing.T) {
	cfg := &config.Config{PagesURL: "http://localhost:99999"}

	err := verifyConnection(context.Background(), cfg)
	require.Error(t, err)
}

func TestVerifyConnection_Directory(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, verifyConnection(context.Background(), &config.Config{PagesDir: dir}))

	file := filepath.Join(dir, "Start")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	err := verifyConnection(context.Background(), &config.Config{PagesDir: file})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")

	err = verifyConnection(context.Background(), &config.Config{PagesDir: filepath.Join(dir, "missing")})
	require.Error(t, err)
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, validateURL(""))
	assert.NoError(t, validateURL("https://wiki.example.org"))
	assert.Error(t, validateURL("wiki.example.org"))
}

func TestConfigFilePermissions(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yml")

	cfg := config.Config{PagesURL: "https://wiki.example.org/PAGE", PagesToken: "secret-token"}
	require.NoError(t, cfg.Save(configPath))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "config file should have 0600 permissions")
}

func TestNewCmdInit_Flags(t *testing.T) {
	cmd := NewCmdInit()

	assert.Equal(t, "init", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	for _, name := range []string{"url", "pages-dir", "pages-url"} {
		flag := cmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "", flag.DefValue)
	}

	noVerifyFlag := cmd.Flags().Lookup("no-verify")
	require.NotNil(t, noVerifyFlag)
	assert.Equal(t, "false", noVerifyFlag.DefValue)
}
