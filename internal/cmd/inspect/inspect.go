// Package inspect provides commands that show how markup is read.
package inspect

import (
	"io"

	"github.com/open-cli-collective/wikimark/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wikimark/internal/view"
)

type inspectOptions struct {
	cmdutil.Globals
	file string
}

func (o *inspectOptions) renderer(out io.Writer) *view.Renderer {
	r := view.NewRenderer(view.Format(o.Output), o.NoColor)
	r.SetWriter(out)
	return r
}
