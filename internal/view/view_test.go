package view

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(format Format) (*Renderer, *bytes.Buffer) {
	var buf bytes.Buffer
	r := NewRenderer(format, true)
	r.SetWriter(&buf)
	return r, &buf
}

func TestValidateFormat(t *testing.T) {
	for _, f := range append(ValidFormats(), "") {
		assert.NoError(t, ValidateFormat(f), f)
	}
	for _, f := range []string{"xml", "yaml", "TABLE"} {
		err := ValidateFormat(f)
		require.Error(t, err, f)
		assert.Contains(t, err.Error(), "invalid output format")
	}
	assert.Equal(t, []string{"table", "json", "plain"}, ValidFormats())
}

func TestNewRenderer_DefaultsToTable(t *testing.T) {
	r, buf := newTestRenderer("")
	r.RenderTable([]string{"TYPE"}, [][]string{{"text"}})
	assert.Equal(t, "TYPE\ntext\n", buf.String())
	assert.Equal(t, buf, r.Writer())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"fits", "Start", 10, "Start"},
		{"exact", "Start", 5, "Start"},
		{"ellipsis", "Foo/Bar Baz", 8, "Foo/B..."},
		{"no room for ellipsis", "Start", 3, "Sta"},
		{"empty", "", 10, ""},
		{"accents count one cell", "héllo wörld", 8, "héllo..."},
		{"wide runes count two cells", "日本語のテキスト", 9, "日本語..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.input, tt.maxLen))
		})
	}
}

func TestRenderTable(t *testing.T) {
	headers := []string{"#", "TYPE", "VALUE"}
	rows := [][]string{
		{"0", "strong_begin", `"'''"`},
		{"1", "text", `"bold"`},
		{"2", "strong_end"},
	}

	t.Run("table", func(t *testing.T) {
		r, buf := newTestRenderer(FormatTable)
		r.RenderTable(headers, rows)

		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		require.Len(t, lines, 4)
		assert.True(t, strings.HasPrefix(lines[0], "#  TYPE"))
		// Columns line up on the widest cell.
		assert.Equal(t, strings.Index(lines[0], "VALUE"), strings.Index(lines[1], `"'''"`))
		assert.Equal(t, strings.Index(lines[1], `"'''"`), strings.Index(lines[2], `"bold"`))
		assert.Equal(t, "2  strong_end", lines[3], "the last cell of a row is not padded")
	})

	t.Run("json", func(t *testing.T) {
		r, buf := newTestRenderer(FormatJSON)
		r.RenderTable(headers, rows)

		var got []map[string]string
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 3)
		assert.Equal(t, map[string]string{"#": "1", "type": "text", "value": `"bold"`}, got[1])
		assert.Equal(t, map[string]string{"#": "2", "type": "strong_end"}, got[2])
	})

	t.Run("plain", func(t *testing.T) {
		r, buf := newTestRenderer(FormatPlain)
		r.RenderTable(headers, rows)

		assert.NotContains(t, buf.String(), "TYPE")
		assert.Contains(t, buf.String(), "1\ttext\t\"bold\"\n")
	})
}

func TestRenderTable_Empty(t *testing.T) {
	r, buf := newTestRenderer(FormatTable)
	r.RenderTable([]string{"NAME", "SIZE"}, nil)
	assert.Equal(t, "NAME  SIZE\n", buf.String())

	r, buf = newTestRenderer(FormatJSON)
	r.RenderTable([]string{"NAME", "SIZE"}, nil)
	assert.Equal(t, "null\n", buf.String())
}

func TestRenderJSON(t *testing.T) {
	r, buf := newTestRenderer(FormatJSON)
	require.NoError(t, r.RenderJSON(map[string]any{"name": "Start", "size": 12}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Start", got["name"])
	assert.Equal(t, float64(12), got["size"])

	assert.Error(t, r.RenderJSON(make(chan int)))
}

func TestRenderKeyValue(t *testing.T) {
	r, buf := newTestRenderer(FormatTable)
	r.RenderKeyValue("Page", "Start")
	assert.Equal(t, "Page: Start\n", buf.String())

	r, buf = newTestRenderer(FormatJSON)
	r.RenderKeyValue("page", `Say "hi"`)
	assert.Equal(t, `{"page":"Say \"hi\""}`+"\n", buf.String())
}

func TestMessages(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*Renderer, string)
		want string
	}{
		{"text", (*Renderer).RenderText, "Compiled\n"},
		{"success", (*Renderer).Success, "✓ Compiled\n"},
		{"warning", (*Renderer).Warning, "! Compiled\n"},
		{"error", (*Renderer).Error, "✗ Compiled\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, buf := newTestRenderer(FormatTable)
			tt.fn(r, "Compiled")
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestRenderMarkdown_NoColor(t *testing.T) {
	r, buf := newTestRenderer(FormatTable)
	require.NoError(t, r.RenderMarkdown("# Title"))
	assert.Equal(t, "# Title\n", buf.String())
}
