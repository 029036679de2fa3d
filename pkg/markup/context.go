package markup

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ErrPageNotFound is returned by a PageStore for unknown pages.
var ErrPageNotFound = errors.New("page not found")

// PageStore loads the markup of other pages for inclusion.
type PageStore interface {
	Page(ctx context.Context, name string) (string, error)
}

// RenderContext carries per-request render state. Create one per top-level
// render and hand the same pointer to every nested render so page
// inclusion cycles are caught.
type RenderContext struct {
	// ID identifies the render in logs.
	ID          string
	Application string
	// Simplified drops every dynamic extension from the output.
	Simplified bool
	Values     map[string]any
	Pages      PageStore
	// Logger overrides the machine's logger for this render.
	Logger *log.Logger

	ctx       context.Context
	including map[string]bool
}

// NewRenderContext returns a context for application bound to ctx.
func NewRenderContext(ctx context.Context, application string) *RenderContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &RenderContext{
		ID:          uuid.NewString(),
		Application: application,
		Values:      map[string]any{},
		ctx:         ctx,
	}
}

// Context returns the context the render is bound to.
func (rc *RenderContext) Context() context.Context {
	if rc.ctx == nil {
		return context.Background()
	}
	return rc.ctx
}

// Value returns a free-form value.
func (rc *RenderContext) Value(key string) any {
	return rc.Values[key]
}

// Enter marks page as being rendered. It reports false when page is
// already on the inclusion path; otherwise the caller must call leave once
// the nested render is done.
func (rc *RenderContext) Enter(page string) (leave func(), ok bool) {
	if rc.including == nil {
		rc.including = map[string]bool{}
	}
	page = NormalizePageName(page)
	if rc.including[page] {
		return func() {}, false
	}
	rc.including[page] = true
	return func() { delete(rc.including, page) }, true
}
