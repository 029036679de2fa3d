package markup

import (
	"net/url"
	"regexp"
	"strings"
)

// Links resolves link targets. The parser asks it for wiki shortcuts,
// the HTML renderer for everything else.
type Links interface {
	// Shortcut resolves standard shortcuts like [user:name:].
	Shortcut(name, page string) (string, bool)
	// InterWiki resolves [wiki:page:] links. A miss renders the caption
	// without a link.
	InterWiki(name, page string) (string, bool)
	PageURL(page, anchor string) string
	PageExists(page string) bool
	// IsLocal reports whether host belongs to this site.
	IsLocal(host string) bool
}

// DefaultShortcuts are the shortcut names recognised when StaticLinks has
// none configured. PAGE is replaced by the escaped page.
var DefaultShortcuts = map[string]string{
	"user":   "/user/PAGE/",
	"paste":  "/paste/PAGE/",
	"topic":  "/topic/PAGE/",
	"ikhaya": "/ikhaya/PAGE/",
	"search": "/search/?query=PAGE",
	"post":   "/post/PAGE/",
}

// StaticLinks is a Links backed by fixed maps.
type StaticLinks struct {
	BaseURL      string
	Domain       string
	Shortcuts    map[string]string
	InterWikiMap map[string]string
	Exists       func(page string) bool
}

func (l StaticLinks) shortcuts() map[string]string {
	if l.Shortcuts != nil {
		return l.Shortcuts
	}
	return DefaultShortcuts
}

// Shortcut implements Links.
func (l StaticLinks) Shortcut(name, page string) (string, bool) {
	rule, ok := l.shortcuts()[name]
	if !ok {
		return "", false
	}
	return l.absolute(expandRule(rule, page)), true
}

// InterWiki implements Links.
func (l StaticLinks) InterWiki(name, page string) (string, bool) {
	rule, ok := l.InterWikiMap[name]
	if !ok {
		return "", false
	}
	return expandRule(rule, page), true
}

// PageURL implements Links.
func (l StaticLinks) PageURL(page, anchor string) string {
	segments := strings.Split(strings.ReplaceAll(page, " ", "_"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	u := l.absolute("/" + strings.Join(segments, "/") + "/")
	if anchor != "" {
		u += "#" + url.QueryEscape(anchor)
	}
	return u
}

// PageExists implements Links.
func (l StaticLinks) PageExists(page string) bool {
	return l.Exists != nil && l.Exists(page)
}

// IsLocal implements Links.
func (l StaticLinks) IsLocal(host string) bool {
	return host == "" || (l.Domain != "" && (host == l.Domain || strings.HasSuffix(host, "."+l.Domain)))
}

func (l StaticLinks) absolute(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	return strings.TrimSuffix(l.BaseURL, "/") + path
}

func expandRule(rule, page string) string {
	quoted := url.PathEscape(page)
	if !strings.Contains(rule, "PAGE") {
		return rule + quoted
	}
	return strings.ReplaceAll(rule, "PAGE", quoted)
}

var pageSlashes = regexp.MustCompile(`/+`)

// NormalizePageName trims a page name, collapses runs of whitespace and
// slashes, strips outer slashes and turns underscores into spaces.
func NormalizePageName(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.Join(strings.Fields(name), " ")
	name = pageSlashes.ReplaceAllString(name, "/")
	return strings.Trim(name, "/ ")
}
