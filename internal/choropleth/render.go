package choropleth

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/colorscale"
	"github.com/sells-group/choropleth-cli/internal/model"
	"github.com/sells-group/choropleth-cli/internal/projection"
	"github.com/sells-group/choropleth-cli/internal/scene"
	"github.com/sells-group/choropleth-cli/internal/textmetrics"
)

// Canvas is the fixed logical coordinate system of the rendered svg.
type Canvas struct {
	Width   float64 `yaml:"width" mapstructure:"width"`
	Height  float64 `yaml:"height" mapstructure:"height"`
	OffsetY float64 `yaml:"offset_y" mapstructure:"offset_y"`
}

// DefaultCanvas is 400x400 units with the view shifted up by 15.
func DefaultCanvas() Canvas {
	return Canvas{Width: 400, Height: 400, OffsetY: -15}
}

// ViewBox formats the canvas as an svg viewBox.
func (c Canvas) ViewBox() string {
	return "0 " + num(c.OffsetY) + " " + num(c.Width) + " " + num(c.Height)
}

// DefaultIcon is the marker image reference.
const DefaultIcon = "heart.png"

// Renderer draws choropleth maps into mount points.
type Renderer struct {
	proj        projection.Config
	canvas      Canvas
	icon        string
	offsets     Offsets
	sizeDivisor float64
	measurer    textmetrics.Measurer
	padding     float64
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithProjection sets the projection configuration.
func WithProjection(cfg projection.Config) Option {
	return func(r *Renderer) { r.proj = cfg }
}

// WithCanvas sets the svg coordinate system.
func WithCanvas(c Canvas) Option {
	return func(r *Renderer) { r.canvas = c }
}

// WithIcon sets the marker image reference.
func WithIcon(href string) Option {
	return func(r *Renderer) { r.icon = href }
}

// WithOffsets sets the marker offset table.
func WithOffsets(o Offsets) Option {
	return func(r *Renderer) { r.offsets = o }
}

// WithSizeDivisor sets the population-per-unit marker scale.
func WithSizeDivisor(d float64) Option {
	return func(r *Renderer) { r.sizeDivisor = d }
}

// WithMeasurer sets the label text measurer.
func WithMeasurer(m textmetrics.Measurer) Option {
	return func(r *Renderer) { r.measurer = m }
}

// WithLabelPadding sets the padding between label text and its box.
func WithLabelPadding(p float64) Option {
	return func(r *Renderer) { r.padding = p }
}

// NewRenderer creates a Renderer with the standard Japan framing.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		proj:        projection.DefaultConfig(),
		canvas:      DefaultCanvas(),
		icon:        DefaultIcon,
		offsets:     DefaultOffsets(),
		sizeDivisor: DefaultSizeDivisor,
		padding:     DefaultLabelPadding,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.measurer == nil {
		m, err := textmetrics.NewGoFont(textmetrics.DefaultSize)
		if err != nil {
			zap.L().Warn("choropleth: go font unavailable, using fixed-width label metrics", zap.Error(err))
			r.measurer = textmetrics.Fixed{CharWidth: 16, Ascent: 15, Descent: 4}
		} else {
			r.measurer = m
		}
	}
	return r
}

// Render clears the mount point and draws the map into it. The mount point
// must already exist in doc. Rendering again into the same mount replaces the
// previous map, including any overlay it was showing.
func (r *Renderer) Render(doc *scene.Document, mountID string, boundaries []model.BoundaryFeature, attrs []model.RegionAttributes) (*Map, error) {
	mount := doc.ByID(mountID)
	if mount == nil {
		return nil, eris.Errorf("choropleth: mount point %q not found", mountID)
	}

	id := uuid.New().String()
	log := zap.L().With(zap.String("component", "choropleth.render"), zap.String("render_id", id))

	if prev, ok := mount.Data().(*Map); ok {
		prev.detach()
	}
	mount.RemoveChildren()

	proj := projection.New(r.proj)
	scale := colorscale.Build(model.Populations(attrs))
	ix := NewIndex(attrs)
	regions := BuildRegions(proj, scale, ix, boundaries)
	markers := PlaceMarkers(proj, boundaries, attrs, r.offsets, r.sizeDivisor)

	svg := mount.Append("svg").
		SetAttr("xmlns", "http://www.w3.org/2000/svg").
		SetAttr("xmlns:xlink", "http://www.w3.org/1999/xlink").
		SetAttr("viewBox", r.canvas.ViewBox()).
		SetAttr("width", "100%").
		SetAttr("height", "100%")

	m := &Map{
		id:      id,
		svg:     svg,
		regions: regions,
		paths:   make([]*scene.Element, len(regions)),
		markers: markers,
		scale:   scale,
		byName:  make(map[string]int, len(regions)),
		overlay: NewOverlay(doc.Body, svg, r.measurer, r.padding),
		log:     log,
	}

	var unmatched int
	for i, rd := range regions {
		m.paths[i] = svg.Append("path").
			SetAttr("d", rd.D).
			SetAttr("stroke", rd.Stroke).
			SetAttr("stroke-width", num(rd.StrokeWidth)).
			SetAttr("class", "prefecture").
			SetAttr("fill", rd.Fill)
		if _, ok := m.byName[rd.Name]; !ok && rd.Name != "" {
			m.byName[rd.Name] = i
		}
		if !rd.Matched() {
			unmatched++
		}
	}

	for _, mk := range markers {
		svg.Append("image").
			SetAttr("class", "icon").
			SetAttr("xlink:href", r.icon).
			SetAttr("type", "image/svg+xml").
			SetAttr("width", num(mk.Size)).
			SetAttr("height", num(mk.Size)).
			SetAttr("transform", "translate("+num(mk.Left())+","+num(mk.Top())+")")
	}

	mount.SetData(m)

	_, hi, ok := scale.Domain()
	log.Debug("choropleth: rendered",
		zap.Int("regions", len(regions)),
		zap.Int("unmatched", unmatched),
		zap.Int("markers", len(markers)),
		zap.Float64("domain_max", hi),
		zap.Bool("domain_ok", ok),
	)
	return m, nil
}

// Map is one rendered choropleth and its hover overlay.
type Map struct {
	id      string
	svg     *scene.Element
	regions []RegionDraw
	paths   []*scene.Element
	markers []model.MarkerSpec
	scale   *colorscale.Scale
	byName  map[string]int
	overlay *Overlay
	log     *zap.Logger
}

// ID identifies the render in logs.
func (m *Map) ID() string { return m.id }

// SVG returns the map's root svg element.
func (m *Map) SVG() *scene.Element { return m.svg }

// Regions returns the region draw instructions in boundary order.
func (m *Map) Regions() []RegionDraw { return m.regions }

// Markers returns the placed markers in attribute order.
func (m *Map) Markers() []model.MarkerSpec { return m.markers }

// Scale returns the color scale built for this render.
func (m *Map) Scale() *colorscale.Scale { return m.scale }

// Path returns the path element drawn for region i.
func (m *Map) Path(i int) *scene.Element { return m.paths[i] }

// RegionIndex returns the first region drawn with the given name.
func (m *Map) RegionIndex(name string) (int, bool) {
	i, ok := m.byName[name]
	return i, ok
}

// EnterRegion delivers a pointer-enter on region i.
func (m *Map) EnterRegion(i int) {
	m.overlay.Enter(Target{
		Path:       m.paths[i],
		Name:       m.regions[i].Name,
		Attributes: m.regions[i].Attributes,
	})
}

// LeaveRegion delivers a pointer-leave on region i.
func (m *Map) LeaveRegion(i int) {
	m.overlay.Leave(m.paths[i])
}

// PointerEnter delivers a pointer-enter on the named region. It fails on a
// map that a later render into the same mount has replaced.
func (m *Map) PointerEnter(name string) error {
	if m.overlay.Detached() {
		return eris.Errorf("choropleth: map %s was replaced by a later render", m.id)
	}
	i, ok := m.byName[name]
	if !ok {
		return eris.Errorf("choropleth: unknown region %q", name)
	}
	m.EnterRegion(i)
	return nil
}

// PointerLeave delivers a pointer-leave on the named region.
func (m *Map) PointerLeave(name string) error {
	i, ok := m.byName[name]
	if !ok {
		return eris.Errorf("choropleth: unknown region %q", name)
	}
	m.LeaveRegion(i)
	return nil
}

// Hovered returns the overlay currently shown, if any.
func (m *Map) Hovered() (View, bool) { return m.overlay.Current() }

// Close removes any live overlay.
func (m *Map) Close() { m.overlay.Close() }

// Replaced reports whether a later render into the same mount superseded m.
func (m *Map) Replaced() bool { return m.overlay.Detached() }

func (m *Map) detach() {
	m.overlay.Detach()
	m.log.Debug("choropleth: map replaced")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
