// Package pages provides stores that load wiki pages for inclusion.
package pages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/open-cli-collective/wikimark/pkg/markup"
)

// Extensions are tried in order when looking up a page file.
var Extensions = []string{"", ".wiki", ".txt"}

// DirStore loads pages from files below a directory. Page "Foo/Bar" is
// read from Foo/Bar, Foo/Bar.wiki or Foo/Bar.txt, with spaces in the name
// replaced by underscores.
type DirStore struct {
	dir string
}

// NewDirStore returns a store reading from dir.
func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir}
}

// Page implements markup.PageStore.
func (s *DirStore) Page(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	root, err := os.OpenRoot(s.dir)
	if err != nil {
		return "", fmt.Errorf("opening page directory: %w", err)
	}
	defer root.Close()

	file := fileName(name)
	if file == "" {
		return "", fmt.Errorf("%q: %w", name, markup.ErrPageNotFound)
	}
	for _, ext := range Extensions {
		data, err := readFile(root, file+ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("reading page %q: %w", name, err)
		}
		return string(data), nil
	}
	return "", fmt.Errorf("%q: %w", name, markup.ErrPageNotFound)
}

// Exists reports whether a file for page exists. It fits
// markup.StaticLinks.Exists.
func (s *DirStore) Exists(name string) bool {
	_, err := s.Page(context.Background(), name)
	return err == nil
}

// PageInfo describes a page file.
type PageInfo struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified"`
}

// List returns the pages below the directory sorted by name. Hidden files
// and directories are skipped, as are files with an extension outside
// Extensions.
func (s *DirStore) List(ctx context.Context) ([]PageInfo, error) {
	root, err := os.OpenRoot(s.dir)
	if err != nil {
		return nil, fmt.Errorf("opening page directory: %w", err)
	}
	defer root.Close()

	var pages []PageInfo
	err = fs.WalkDir(root.FS(), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p != "." && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := path.Ext(p)
		if !slices.Contains(Extensions, ext) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		pages = append(pages, PageInfo{
			Name:    markup.NormalizePageName(strings.TrimSuffix(p, ext)),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	slices.SortFunc(pages, func(a, b PageInfo) int { return strings.Compare(a.Name, b.Name) })
	return pages, nil
}

func readFile(root *os.Root, name string) ([]byte, error) {
	f, err := root.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fs.ErrNotExist
	}
	return io.ReadAll(f)
}

// fileName maps a page name to a slash separated relative path. Names that
// would leave the directory map to "".
func fileName(name string) string {
	name = markup.NormalizePageName(name)
	if name == "" {
		return ""
	}
	p := path.Clean(strings.ReplaceAll(name, " ", "_"))
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return ""
	}
	return p
}
