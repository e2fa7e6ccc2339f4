package scene

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
)

// Write serializes e and its subtree as markup.
func Write(w io.Writer, e *Element) error {
	return eris.Wrap(html.Render(w, e.node), "scene: render element")
}

// WriteHTML serializes the whole document with a doctype.
func WriteHTML(w io.Writer, d *Document) error {
	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return eris.Wrap(err, "scene: write doctype")
	}
	return Write(w, d.Root)
}

// Markup returns the serialized subtree. Serialization to memory cannot fail.
func (e *Element) Markup() string {
	var b strings.Builder
	_ = Write(&b, e)
	return b.String()
}
