package compile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/wikimark/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wikimark/pkg/markup"
)

func globals(t *testing.T) cmdutil.Globals {
	t.Helper()
	t.Setenv("WIKIMARK_LOG_LEVEL", "")
	t.Setenv("WIKIMARK_FORMAT", "")
	return cmdutil.Globals{ConfigPath: filepath.Join(t.TempDir(), "config.yml"), NoColor: true}
}

func TestRunCompile_Stdout(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		static bool
	}{
		{"static", "'''bold'''", true},
		{"hybrid", "Today: [[Date()]]", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &compileOptions{Globals: globals(t), format: markup.FormatHTML}
			var out bytes.Buffer
			require.NoError(t, runCompile(opts, strings.NewReader(tt.input), &out, &bytes.Buffer{}))

			compiled := markup.Compiled(out.Bytes())
			assert.Equal(t, tt.static, compiled.IsStatic())
			format, err := compiled.Format()
			require.NoError(t, err)
			assert.Equal(t, markup.FormatHTML, format)
		})
	}
}

func TestRunCompile_ToFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Start.wiki")
	dst := filepath.Join(dir, "start.wmc")
	require.NoError(t, os.WriteFile(src, []byte("= Title =\nSome ''text''."), 0644))

	opts := &compileOptions{Globals: globals(t), file: src, out: dst, format: markup.FormatText}
	var out bytes.Buffer
	require.NoError(t, runCompile(opts, strings.NewReader(""), &out, &bytes.Buffer{}))

	assert.Contains(t, out.String(), "Compiled Start.wiki to "+dst)
	assert.Contains(t, out.String(), "static")

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	format, err := markup.Compiled(data).Format()
	require.NoError(t, err)
	assert.Equal(t, markup.FormatText, format)
}

func TestRunCompile_UnknownFormat(t *testing.T) {
	opts := &compileOptions{Globals: globals(t), format: "pdf"}
	err := runCompile(opts, strings.NewReader("x"), &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, markup.ErrUnknownFormat)
}

func TestNewCmdCompile_Flags(t *testing.T) {
	cmd := NewCmdCompile()
	for _, name := range []string{"out", "format", "raw", "strict"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "f", cmd.Flags().Lookup("format").Shorthand)
}
