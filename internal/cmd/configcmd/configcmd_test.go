package configcmd

import (
	"bytes"
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

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
	}
}

func TestRunShow_WithConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg := &config.Config{
		Application: "ikhaya",
		BaseURL:     "https://wiki.example.org",
		PagesToken:  "abcd1234efgh5678",
		InterWiki:   map[string]string{"wikipedia": "https://en.wikipedia.org/wiki/PAGE"},
	}
	require.NoError(t, cfg.Save(path))

	var buf bytes.Buffer
	require.NoError(t, runShow(path, true, &buf))

	out := buf.String()
	assert.Contains(t, out, "ikhaya")
	assert.Contains(t, out, "(source: config)")
	assert.Contains(t, out, "abcd********5678")
	assert.NotContains(t, out, "abcd1234efgh5678")
	assert.Contains(t, out, "wikipedia")
	assert.Contains(t, out, "wiki.example.org  (source: default)")
}

func TestRunShow_EnvSource(t *testing.T) {
	clearEnv(t)
	t.Setenv("WIKIMARK_FORMAT", "text")

	var buf bytes.Buffer
	require.NoError(t, runShow(filepath.Join(t.TempDir(), "none.yml"), true, &buf))

	out := buf.String()
	assert.Contains(t, out, "text  (source: WIKIMARK_FORMAT)")
	assert.Contains(t, out, "(file not found)")
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "****", maskToken("abcd"))
	assert.Equal(t, "abcd*efgh", maskToken("abcdXefgh"))
}

func TestRunClear(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, config.Default().Save(path))

	var buf bytes.Buffer
	require.NoError(t, runClear(path, true, &buf))
	assert.Contains(t, buf.String(), "Configuration cleared")
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	buf.Reset()
	t.Setenv("WIKIMARK_PAGES_DIR", "/srv/pages")
	require.NoError(t, runClear(path, true, &buf))
	assert.Contains(t, buf.String(), "No config file to remove")
	assert.Contains(t, buf.String(), "WIKIMARK_PAGES_DIR")
}

func TestRunTest_NoSource(t *testing.T) {
	var buf bytes.Buffer
	err := runTest(context.Background(), config.Default(), "Start", true, &buf)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "No page source configured")
}

func TestRunTest_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Start"), []byte("hi"), 0644))

	var buf bytes.Buffer
	require.NoError(t, runTest(context.Background(), &config.Config{PagesDir: dir}, "Start", true, &buf))
	assert.Contains(t, buf.String(), `Found page "Start"`)

	buf.Reset()
	require.NoError(t, runTest(context.Background(), &config.Config{PagesDir: dir}, "Other", true, &buf))
	assert.Contains(t, buf.String(), `Page "Other" does not exist`)

	err := runTest(context.Background(), &config.Config{PagesDir: filepath.Join(dir, "nope")}, "Start", true, &buf)
	require.Error(t, err)
}

func TestRunTest_Server(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr string
		wantOut string
	}{
		{"found", http.StatusOK, "", "Found page"},
		{"missing page", http.StatusNotFound, "", "does not exist"},
		{"unauthorized", http.StatusUnauthorized, "access denied", "Access denied: 401"},
		{"forbidden", http.StatusForbidden, "access denied", "Access denied: 403"},
		{"server error", http.StatusInternalServerError, "page source test failed", "Request failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			var buf bytes.Buffer
			err := runTest(context.Background(), &config.Config{PagesURL: server.URL}, "Start", true, &buf)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Contains(t, buf.String(), tt.wantOut)
		})
	}
}
