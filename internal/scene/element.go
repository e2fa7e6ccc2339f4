// Package scene is a small retained element tree that the map is drawn into.
// It wraps golang.org/x/net/html nodes so elements can be appended, looked
// up, mutated, removed, and serialized as SVG or HTML, and adds a data slot
// per element the way a browser DOM carries bound data.
package scene

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// registry maps the html nodes of one tree back to their elements.
type registry struct {
	elems map[*html.Node]*Element
}

// Element is an element node in the scene tree. Elements are not safe for
// concurrent use.
type Element struct {
	node *html.Node
	reg  *registry
	data any
}

// NewElement creates a detached element.
func NewElement(tag string) *Element {
	reg := &registry{elems: make(map[*html.Node]*Element)}
	return reg.newElement(tag)
}

func (r *registry) newElement(tag string) *Element {
	e := &Element{
		node: &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))},
		reg:  r,
	}
	r.elems[e.node] = e
	return e
}

// adopt moves every element in the subtree of e into r.
func (r *registry) adopt(e *Element) {
	e.Walk(func(el *Element) bool {
		if el.reg != r {
			delete(el.reg.elems, el.node)
			el.reg = r
			r.elems[el.node] = el
		}
		return true
	})
}

// Node returns the underlying html node.
func (e *Element) Node() *html.Node { return e.node }

// Tag returns the element name.
func (e *Element) Tag() string { return e.node.Data }

// Append creates a child element with the given tag and returns it.
func (e *Element) Append(tag string) *Element {
	child := e.reg.newElement(tag)
	e.node.AppendChild(child.node)
	return child
}

// AppendChild attaches c as the last child of e, detaching it from any previous parent.
func (e *Element) AppendChild(c *Element) {
	c.Remove()
	e.reg.adopt(c)
	e.node.AppendChild(c.node)
}

// AppendText adds a text node after the existing children.
func (e *Element) AppendText(s string) *Element {
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	return e
}

// Remove detaches e from its parent. Removing a detached element is a no-op.
func (e *Element) Remove() {
	if p := e.node.Parent; p != nil {
		p.RemoveChild(e.node)
	}
}

// RemoveChildren detaches every child of e.
func (e *Element) RemoveChildren() {
	for c := e.node.FirstChild; c != nil; c = e.node.FirstChild {
		e.node.RemoveChild(c)
	}
}

// Parent returns the element's parent, or nil when detached.
func (e *Element) Parent() *Element {
	if e.node.Parent == nil {
		return nil
	}
	return e.reg.elems[e.node.Parent]
}

// Children returns the element children in order. Text nodes are skipped.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if el, ok := e.reg.elems[c]; ok {
			out = append(out, el)
		}
	}
	return out
}

// SetAttr sets an attribute, keeping first-set order. It returns e for chaining.
func (e *Element) SetAttr(name, value string) *Element {
	for i, a := range e.node.Attr {
		if a.Key == name {
			e.node.Attr[i].Val = value
			return e
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
	return e
}

// Attr returns an attribute value.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// Attrs returns a copy of the element's attributes in order.
func (e *Element) Attrs() []html.Attribute {
	out := make([]html.Attribute, len(e.node.Attr))
	copy(out, e.node.Attr)
	return out
}

// SetStyle sets an inline style property in the style attribute.
func (e *Element) SetStyle(name, value string) *Element {
	decls := e.styles()
	found := false
	for i := range decls {
		if decls[i][0] == name {
			decls[i][1] = value
			found = true
		}
	}
	if !found {
		decls = append(decls, [2]string{name, value})
	}

	var b strings.Builder
	for i, d := range decls {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(d[0] + ": " + d[1] + ";")
	}
	return e.SetAttr("style", b.String())
}

// Style returns an inline style property.
func (e *Element) Style(name string) (string, bool) {
	for _, d := range e.styles() {
		if d[0] == name {
			return d[1], true
		}
	}
	return "", false
}

func (e *Element) styles() [][2]string {
	v, _ := e.Attr("style")
	var out [][2]string
	for _, decl := range strings.Split(v, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		out = append(out, [2]string{strings.TrimSpace(name), strings.TrimSpace(value)})
	}
	return out
}

// SetText replaces the element's content with a single text node.
func (e *Element) SetText(s string) *Element {
	e.RemoveChildren()
	return e.AppendText(s)
}

// Text returns the concatenated text of the subtree.
func (e *Element) Text() string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return b.String()
}

// HTML returns the serialized children of e.
func (e *Element) HTML() string {
	var b strings.Builder
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	return b.String()
}

// ID returns the id attribute.
func (e *Element) ID() string {
	id, _ := e.Attr("id")
	return id
}

// HasClass reports whether the class attribute contains class.
func (e *Element) HasClass(class string) bool {
	v, ok := e.Attr("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// SetData binds a value to the element.
func (e *Element) SetData(v any) { e.data = v }

// Data returns the value bound with SetData.
func (e *Element) Data() any { return e.data }

// Walk visits e and its descendant elements depth-first. Returning false from
// fn skips the element's children.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children() {
		c.Walk(fn)
	}
}

// ByID returns the first element in the subtree with the given id.
func (e *Element) ByID(id string) *Element {
	var found *Element
	e.Walk(func(el *Element) bool {
		if found != nil {
			return false
		}
		if el.ID() == id {
			found = el
			return false
		}
		return true
	})
	return found
}

// ByClass returns every element in the subtree carrying class.
func (e *Element) ByClass(class string) []*Element {
	var out []*Element
	e.Walk(func(el *Element) bool {
		if el.HasClass(class) {
			out = append(out, el)
		}
		return true
	})
	return out
}

// ByTag returns every element in the subtree with the given tag.
func (e *Element) ByTag(tag string) []*Element {
	var out []*Element
	e.Walk(func(el *Element) bool {
		if el.Tag() == tag {
			out = append(out, el)
		}
		return true
	})
	return out
}

// Count returns the number of elements in the subtree, including e.
func (e *Element) Count() int {
	n := 0
	e.Walk(func(*Element) bool {
		n++
		return true
	})
	return n
}
