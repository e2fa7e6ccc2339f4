package scene

// Document is a minimal page: html > body, with the map mounted somewhere in body.
type Document struct {
	Root *Element
	Body *Element
}

// NewDocument creates a page whose body holds an empty div with the given id.
// An empty mountID creates a page with no mount point.
func NewDocument(mountID string) *Document {
	root := NewElement("html")
	body := root.Append("body")
	if mountID != "" {
		body.Append("div").SetAttr("id", mountID)
	}
	return &Document{Root: root, Body: body}
}

// ByID returns the first element with the given id, or nil.
func (d *Document) ByID(id string) *Element {
	return d.Root.ByID(id)
}
