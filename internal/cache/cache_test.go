package cache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/wikimark/pkg/markup"
)

func compile(t *testing.T, text string) markup.Compiled {
	t.Helper()
	m := markup.NewMachine(markup.MachineOptions{})
	doc, err := m.Parse(text)
	require.NoError(t, err)
	compiled, err := m.Compile(doc, markup.FormatHTML)
	require.NoError(t, err)
	return compiled
}

func TestKey_Hash(t *testing.T) {
	base := Key{Source: "''a''", Format: "html", Version: "1"}

	h1, err := base.Hash()
	require.NoError(t, err)
	h2, err := base.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	variants := []Key{
		{Source: "''b''", Format: "html", Version: "1"},
		{Source: "''a''", Format: "text", Version: "1"},
		{Source: "''a''", Format: "html", Version: "2"},
		{Source: "''a''", Format: "html", Version: "1", Raw: true},
		{Source: "''a''", Format: "html", Version: "1", Strict: true},
		{Source: "''a''", Format: "html", Version: "1", Domain: "wiki.example.org"},
		{Source: "''a''", Format: "html", Version: "1", Pages: []string{"Foo"}},
		{Source: "''a''", Format: "html", Version: "1", Smileys: []markup.Smiley{{Code: ":x", Glyph: "x"}}},
	}
	for _, v := range variants {
		h, err := v.Hash()
		require.NoError(t, err)
		assert.NotEqual(t, h1, h, "%+v", v)
	}
}

func TestCache_Memory(t *testing.T) {
	c := New("")
	compiled := compile(t, "hello")

	_, ok, err := c.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put("k", compiled))
	got, ok, err := c.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, compiled, got)
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Clear())
	assert.Equal(t, 0, c.Len())
}

func TestCache_Disk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	compiled := compile(t, "= Title =\n[[Date()]]")

	require.NoError(t, New(dir).Put("page", compiled))

	// A fresh cache finds the entry on disk.
	fresh := New(dir)
	got, ok, err := fresh.Get("page")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, compiled, got)
	assert.False(t, got.IsStatic())

	require.NoError(t, fresh.Clear())
	_, ok, err = New(dir).Get("page")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.wmc"), []byte("garbage"), 0644))

	_, ok, err := New(dir).Get("bad")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_Concurrent(t *testing.T) {
	c := New(t.TempDir())
	compiled := compile(t, "shared")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Put("same", compiled))
			got, ok, err := c.Get("same")
			assert.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, compiled, got)
		}()
	}
	wg.Wait()
}
