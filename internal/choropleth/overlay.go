package choropleth

import (
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/model"
	"github.com/sells-group/choropleth-cli/internal/scene"
	"github.com/sells-group/choropleth-cli/internal/textmetrics"
)

// Element ids and classes owned by the hover overlay.
const (
	LabelGroupID = "label-group"
	LabelRectID  = "label-rect"
	LabelTextID  = "label-text"
	TooltipClass = "tooltip"
)

// DefaultLabelPadding is added around the label text on each side.
const DefaultLabelPadding = 5

// Target is a hoverable region path.
type Target struct {
	Path       *scene.Element
	Name       string
	Attributes *model.RegionAttributes
}

// View describes the overlay currently on screen.
type View struct {
	Region      string           `json:"region"`
	TooltipHTML string           `json:"tooltip_html"`
	LabelText   string           `json:"label_text"`
	LabelBox    textmetrics.Rect `json:"label_box"`
	StrokeWidth string           `json:"stroke_width"`
}

type hoverState struct {
	target  Target
	tooltip *scene.Element
	label   *scene.Element
	view    View
}

// Overlay owns the tooltip, label group, and highlight shown for the hovered
// region. At most one region is hovered at a time. Overlay is not safe for
// concurrent use; callers deliver pointer events one at a time.
type Overlay struct {
	body     *scene.Element
	svg      *scene.Element
	measurer textmetrics.Measurer
	padding  float64
	active   *hoverState
	detached bool
}

// NewOverlay creates an idle overlay. Tooltips go into body, labels into svg.
func NewOverlay(body, svg *scene.Element, measurer textmetrics.Measurer, padding float64) *Overlay {
	return &Overlay{
		body:     body,
		svg:      svg,
		measurer: measurer,
		padding:  padding,
	}
}

// Enter shows the overlay for t. A region that is still hovered is torn down first.
func (o *Overlay) Enter(t Target) {
	if o.detached {
		zap.L().Debug("choropleth: pointer entered a replaced map, ignoring", zap.String("region", t.Name))
		return
	}
	if o.active != nil {
		zap.L().Debug("choropleth: pointer entered without leave, clearing previous overlay",
			zap.String("previous", o.active.target.Name),
			zap.String("region", t.Name),
		)
		o.teardown()
	}

	tooltip := o.body.Append("div").
		SetAttr("class", TooltipClass).
		SetStyle("position", "absolute").
		SetStyle("z-index", "10").
		SetStyle("visibility", "visible").
		AppendText(t.Name)
	tooltip.Append("br")
	tooltip.AppendText("人口: " + t.Attributes.PopulationText())

	group := o.svg.Append("g").SetAttr("id", LabelGroupID)
	rect := group.Append("rect").
		SetAttr("id", LabelRectID).
		SetAttr("stroke", Stroke).
		SetAttr("stroke-width", "0.5").
		SetAttr("fill", "#fff")
	group.Append("text").
		SetAttr("id", LabelTextID).
		SetText(t.Name)

	bb := o.measurer.BBox(t.Name)
	box := textmetrics.Rect{
		X: bb.X - o.padding,
		Y: bb.Y - o.padding,
		W: bb.W + o.padding*2,
		H: bb.H + o.padding*2,
	}
	rect.SetAttr("x", num(box.X)).
		SetAttr("y", num(box.Y)).
		SetAttr("width", num(box.W)).
		SetAttr("height", num(box.H))

	t.Path.SetAttr("stroke-width", num(HighlightStrokeWidth))

	o.active = &hoverState{
		target:  t,
		tooltip: tooltip,
		label:   group,
		view: View{
			Region:      t.Name,
			TooltipHTML: tooltip.HTML(),
			LabelText:   t.Name,
			LabelBox:    box,
			StrokeWidth: num(HighlightStrokeWidth),
		},
	}
}

// Leave removes the overlay if path belongs to the hovered region.
// Leaving a region that is not hovered does nothing.
func (o *Overlay) Leave(path *scene.Element) {
	if o.active == nil || o.active.target.Path != path {
		zap.L().Debug("choropleth: pointer left a region that is not hovered")
		return
	}
	o.teardown()
}

// Close removes any live overlay.
func (o *Overlay) Close() {
	if o.active != nil {
		o.teardown()
	}
}

// Detach removes any live overlay and ignores every later Enter. It is used
// when the map that owns the overlay has been replaced by a newer render.
func (o *Overlay) Detach() {
	o.Close()
	o.detached = true
}

// Detached reports whether Detach has been called.
func (o *Overlay) Detached() bool { return o.detached }

// Current returns the overlay on screen, if any.
func (o *Overlay) Current() (View, bool) {
	if o.active == nil {
		return View{}, false
	}
	return o.active.view, true
}

// teardown reverses every side effect of Enter.
func (o *Overlay) teardown() {
	s := o.active
	s.tooltip.Remove()
	s.label.Remove()
	s.target.Path.SetAttr("stroke-width", num(StrokeWidth))
	o.active = nil
}
