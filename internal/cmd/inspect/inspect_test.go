package inspect

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/wikimark/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wikimark/pkg/markup"
)

func globals(t *testing.T, output string) cmdutil.Globals {
	t.Helper()
	t.Setenv("WIKIMARK_LOG_LEVEL", "")
	return cmdutil.Globals{
		ConfigPath: filepath.Join(t.TempDir(), "config.yml"),
		Output:     output,
		NoColor:    true,
	}
}

func TestRunTokens_Table(t *testing.T) {
	opts := &inspectOptions{Globals: globals(t, "table")}
	var out bytes.Buffer
	require.NoError(t, runTokens(opts, strings.NewReader("'''bold'''"), &out))

	s := out.String()
	assert.Contains(t, s, "TYPE")
	assert.Contains(t, s, "strong_begin")
	assert.Contains(t, s, `"bold"`)
	assert.Contains(t, s, "strong_end")
}

func TestRunTokens_JSON(t *testing.T) {
	opts := &inspectOptions{Globals: globals(t, "json")}
	var out bytes.Buffer
	require.NoError(t, runTokens(opts, strings.NewReader("''em''"), &out))

	var tokens []markup.Token
	require.NoError(t, json.Unmarshal(out.Bytes(), &tokens))
	require.Len(t, tokens, 3)
	assert.Equal(t, markup.TokenType("emphasized_begin"), tokens[0].Type)
	assert.Equal(t, markup.Token{Type: markup.TokenText, Value: "em"}, tokens[1])
}

func TestRunTokens_PlainKeepsLongValues(t *testing.T) {
	long := strings.Repeat("x", 100)
	opts := &inspectOptions{Globals: globals(t, "plain")}
	var out bytes.Buffer
	require.NoError(t, runTokens(opts, strings.NewReader(long), &out))
	assert.Contains(t, out.String(), long)
}

func TestRunTokens_InvalidOutput(t *testing.T) {
	opts := &inspectOptions{Globals: globals(t, "yaml")}
	err := runTokens(opts, strings.NewReader("x"), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRunTree(t *testing.T) {
	input := "= Title =\ntext"

	opts := &treeOptions{inspectOptions: inspectOptions{Globals: globals(t, "table")}}
	var out bytes.Buffer
	require.NoError(t, runTree(opts, strings.NewReader(input), &out, &bytes.Buffer{}))
	assert.Contains(t, out.String(), "Section")
	assert.Contains(t, out.String(), "Paragraph")

	opts.raw = true
	out.Reset()
	require.NoError(t, runTree(opts, strings.NewReader(input), &out, &bytes.Buffer{}))
	assert.NotContains(t, out.String(), "Section")
	assert.Contains(t, out.String(), "Headline")
}

func TestRunEscape(t *testing.T) {
	opts := &inspectOptions{}
	var out bytes.Buffer
	require.NoError(t, runEscape(opts, strings.NewReader("'''not bold'''"), &out))
	assert.Equal(t, `\'''not bold\'''`, out.String())
}
