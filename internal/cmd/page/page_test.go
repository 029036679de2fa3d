package page

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/wikimark/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wikimark/internal/config"
	"github.com/open-cli-collective/wikimark/pkg/markup"
)

// setup writes a config pointing at a fresh page directory filled with
// pages and returns the globals to run commands with.
func setup(t *testing.T, output string, pages map[string]string) cmdutil.Globals {
	t.Helper()
	for _, v := range []string{"WIKIMARK_PAGES_DIR", "WIKIMARK_PAGES_URL", "WIKIMARK_BASE_URL", "WIKIMARK_APPLICATION", "WIKIMARK_LOG_LEVEL"} {
		t.Setenv(v, "")
	}
	dir := t.TempDir()
	for name, content := range pages {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}

	cfg := config.Default()
	cfg.PagesDir = dir
	cfg.BaseURL = "https://wiki.example.org"
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, cfg.Save(path))
	return cmdutil.Globals{ConfigPath: path, Output: output, NoColor: true}
}

func TestRunList_Success(t *testing.T) {
	g := setup(t, "table", map[string]string{
		"Start.wiki":       "x",
		"Foo/Bar_Baz.wiki": "y",
	})

	var out bytes.Buffer
	require.NoError(t, runList(t.Context(), &listOptions{Globals: g, limit: 25}, &out))
	assert.Contains(t, out.String(), "NAME")
	assert.Contains(t, out.String(), "Foo/Bar Baz")
	assert.Contains(t, out.String(), "Start")
}

func TestRunList_JSONOutput(t *testing.T) {
	g := setup(t, "json", map[string]string{"Start.wiki": "hello"})

	var out bytes.Buffer
	require.NoError(t, runList(t.Context(), &listOptions{Globals: g, limit: 25}, &out))

	var got []struct {
		Name string `json:"name"`
		Size int64  `json:"size"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Start", got[0].Name)
	assert.Equal(t, int64(5), got[0].Size)
}

func TestRunList_Limit(t *testing.T) {
	pages := map[string]string{}
	for i := range 5 {
		pages[fmt.Sprintf("Page%d.wiki", i)] = "x"
	}
	g := setup(t, "plain", pages)

	var out bytes.Buffer
	require.NoError(t, runList(t.Context(), &listOptions{Globals: g, limit: 2}, &out))
	assert.Contains(t, out.String(), "Page1")
	assert.NotContains(t, out.String(), "Page2")
	assert.Contains(t, out.String(), "showing first 2 pages")
}

func TestRunList_Empty(t *testing.T) {
	g := setup(t, "table", nil)

	var out bytes.Buffer
	require.NoError(t, runList(t.Context(), &listOptions{Globals: g, limit: 25}, &out))
	assert.Contains(t, out.String(), "No pages found")
}

func TestRunList_Errors(t *testing.T) {
	g := setup(t, "table", nil)

	err := runList(t.Context(), &listOptions{Globals: g, limit: -1}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid limit")

	bad := g
	bad.Output = "xml"
	err = runList(t.Context(), &listOptions{Globals: bad, limit: 25}, &bytes.Buffer{})
	assert.Error(t, err)

	t.Setenv("WIKIMARK_PAGES_DIR", "")
	noDir := cmdutil.Globals{ConfigPath: filepath.Join(t.TempDir(), "none.yml")}
	err = runList(t.Context(), &listOptions{Globals: noDir, limit: 25}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "needs pages_dir")
}

func TestRunView_Success(t *testing.T) {
	g := setup(t, "table", map[string]string{
		"Start.wiki": "= Welcome =\nHello '''World'''\n[[Include(Footer)]]",
		"Footer":     "''footer''",
	})

	var out bytes.Buffer
	require.NoError(t, runView(t.Context(), "Start", &viewOptions{Globals: g}, &out, &bytes.Buffer{}))

	s := out.String()
	assert.Contains(t, s, "Page: Start")
	assert.Contains(t, s, "URL: https://wiki.example.org/Start/")
	assert.Contains(t, s, "# Welcome")
	assert.Contains(t, s, "**World**")
	assert.Contains(t, s, "footer")
}

func TestRunView_SelfInclusion(t *testing.T) {
	g := setup(t, "table", map[string]string{"Loop.wiki": "before [[Include(Loop)]]"})

	var out bytes.Buffer
	require.NoError(t, runView(t.Context(), "Loop", &viewOptions{Globals: g, html: true, contentOnly: true}, &out, &bytes.Buffer{}))
	assert.Contains(t, out.String(), "before")
	assert.Contains(t, out.String(), `class="error"`)
}

func TestRunView_Raw(t *testing.T) {
	g := setup(t, "table", map[string]string{"Start.wiki": "'''markup'''"})

	var out bytes.Buffer
	require.NoError(t, runView(t.Context(), "Start", &viewOptions{Globals: g, raw: true, contentOnly: true}, &out, &bytes.Buffer{}))
	assert.Equal(t, "'''markup'''\n", out.String())
}

func TestRunView_JSONOutput(t *testing.T) {
	g := setup(t, "json", map[string]string{"Foo/Bar_Baz.wiki": "'''x'''"})

	var out bytes.Buffer
	require.NoError(t, runView(t.Context(), "Foo/Bar Baz", &viewOptions{Globals: g}, &out, &bytes.Buffer{}))

	var got pageJSON
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "Foo/Bar Baz", got.Name)
	assert.Equal(t, "https://wiki.example.org/Foo/Bar_Baz/", got.URL)
	assert.Equal(t, "'''x'''", got.Source)
	assert.Contains(t, got.HTML, "<strong>x</strong>")
}

func TestRunView_Web(t *testing.T) {
	g := setup(t, "table", nil)
	var opened string
	browse = func(url string) error {
		opened = url
		return nil
	}
	t.Cleanup(func() { browse = openBrowser })

	require.NoError(t, runView(t.Context(), "Foo Bar", &viewOptions{Globals: g, web: true}, &bytes.Buffer{}, &bytes.Buffer{}))
	assert.Equal(t, "https://wiki.example.org/Foo_Bar/", opened)
}

func TestRunView_PageNotFound(t *testing.T) {
	g := setup(t, "table", nil)

	err := runView(t.Context(), "Missing", &viewOptions{Globals: g}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, markup.ErrPageNotFound)
}

func TestRunView_EmptyContent(t *testing.T) {
	g := setup(t, "table", map[string]string{"Empty.wiki": ""})

	var out bytes.Buffer
	require.NoError(t, runView(t.Context(), "Empty", &viewOptions{Globals: g, contentOnly: true}, &out, &bytes.Buffer{}))
	assert.Equal(t, "(No content)\n", out.String())
}

func TestRunView_IncompatibleFlags(t *testing.T) {
	g := setup(t, "json", nil)
	err := runView(t.Context(), "Start", &viewOptions{Globals: g, contentOnly: true}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "incompatible with --output json")

	g.Output = "table"
	err = runView(t.Context(), "Start", &viewOptions{Globals: g, contentOnly: true, web: true}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "incompatible with --web")
}

func TestNewCmdPage_Subcommands(t *testing.T) {
	cmd := NewCmdPage()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"list", "view"}, names)
}

func TestCompletePages(t *testing.T) {
	g := setup(t, "table", map[string]string{"Start.wiki": "", "Stop.wiki": "", "Other.wiki": ""})
	cmd := NewCmdView()
	cmd.Flags().String("config", g.ConfigPath, "")

	names, directive := completePages(cmd, nil, "St")
	assert.Equal(t, []string{"Start", "Stop"}, names)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)

	names, _ = completePages(cmd, []string{"Start"}, "")
	assert.Empty(t, names)
}
