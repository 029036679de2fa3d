package root

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCmdRoot_Subcommands(t *testing.T) {
	cmd := NewCmdRoot()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"init", "render", "compile", "tokens", "tree", "escape", "page", "config", "completion"} {
		assert.Contains(t, names, want)
	}
}

func TestNewCmdRoot_GlobalFlags(t *testing.T) {
	cmd := NewCmdRoot()

	tests := []struct {
		name      string
		shorthand string
		def       string
	}{
		{"config", "c", ""},
		{"output", "o", "table"},
		{"no-color", "", "false"},
		{"verbose", "v", "false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := cmd.PersistentFlags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			assert.Equal(t, tt.def, flag.DefValue)
		})
	}
}

func TestRender_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "Start.wiki")
	require.NoError(t, os.WriteFile(page, []byte("'''bold'''"), 0644))

	cmd := NewCmdRoot()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(dir, "config.yml"), "render", page})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "<strong>bold</strong>")
}

func TestRender_Stdin(t *testing.T) {
	cmd := NewCmdRoot()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader("''em''"))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "config.yml"), "render", "--format", "text"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "em")
	assert.NotContains(t, out.String(), "<em>")
}

func TestVersion(t *testing.T) {
	cmd := NewCmdRoot()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "wikimark version dev (commit: unknown"))
}
