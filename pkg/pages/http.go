package pages

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/open-cli-collective/wikimark/pkg/markup"
)

const (
	defaultTimeout = 30 * time.Second
	// maxPageSize caps the body read for a single page.
	maxPageSize = 8 << 20
)

// StatusError is returned for error responses other than 404.
type StatusError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("page server error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("page server error (status %d): %s", e.StatusCode, e.Message)
}

// HTTPStore loads raw page markup from a wiki over HTTP. The URL pattern
// holds PAGE where the escaped page name goes; without it the name is
// appended as a path.
type HTTPStore struct {
	pattern    string
	token      string
	httpClient *http.Client
}

// NewHTTPStore returns a store fetching pages from pattern. A non-empty
// token is sent as a bearer token.
func NewHTTPStore(pattern, token string) *HTTPStore {
	return &HTTPStore{
		pattern: pattern,
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// URL returns the address page is fetched from.
func (s *HTTPStore) URL(page string) string {
	segments := strings.Split(strings.ReplaceAll(markup.NormalizePageName(page), " ", "_"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	escaped := strings.Join(segments, "/")
	if strings.Contains(s.pattern, "PAGE") {
		return strings.ReplaceAll(s.pattern, "PAGE", escaped)
	}
	return strings.TrimSuffix(s.pattern, "/") + "/" + escaped
}

// Page implements markup.PageStore.
func (s *HTTPStore) Page(ctx context.Context, name string) (string, error) {
	if markup.NormalizePageName(name) == "" {
		return "", fmt.Errorf("%q: %w", name, markup.ErrPageNotFound)
	}
	body, err := s.get(ctx, s.URL(name))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (s *HTTPStore) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", u, markup.ErrPageNotFound)
	case resp.StatusCode >= 400:
		statusErr := &StatusError{}
		if err := json.Unmarshal(body, statusErr); err != nil {
			statusErr.Message = strings.TrimSpace(string(body))
		}
		statusErr.StatusCode = resp.StatusCode
		return nil, statusErr
	}
	return body, nil
}
