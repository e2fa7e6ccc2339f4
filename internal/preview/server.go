// Package preview serves rendered maps and hover overlays over HTTP for local inspection.
package preview

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/choropleth"
	"github.com/sells-group/choropleth-cli/internal/model"
	"github.com/sells-group/choropleth-cli/internal/scene"
)

// Cached document formats.
const (
	formatSVG  = "svg"
	formatHTML = "html"
)

// Options configures a Server.
type Options struct {
	MountID     string
	Cache       *RenderCache // nil disables caching
	Metrics     *Metrics     // nil disables metrics
	RateLimit   float64      // requests per second; 0 disables limiting
	CORSOrigins []string
}

// Server renders one boundary/attribute dataset pair on demand. Every request
// renders into its own document, so handlers share nothing but the cache and
// the current dataset snapshot.
type Server struct {
	renderer *choropleth.Renderer
	opts     Options

	mu   sync.RWMutex
	data snapshot
}

type snapshot struct {
	boundaries  []model.BoundaryFeature
	attrs       []model.RegionAttributes
	fingerprint string
}

func newSnapshot(boundaries []model.BoundaryFeature, attrs []model.RegionAttributes) snapshot {
	return snapshot{
		boundaries:  boundaries,
		attrs:       attrs,
		fingerprint: Fingerprint(boundaries, attrs),
	}
}

// NewServer creates a preview server over the given datasets.
func NewServer(renderer *choropleth.Renderer, boundaries []model.BoundaryFeature, attrs []model.RegionAttributes, opts Options) *Server {
	if opts.MountID == "" {
		opts.MountID = "map-container"
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	return &Server{
		renderer: renderer,
		opts:     opts,
		data:     newSnapshot(boundaries, attrs),
	}
}

// Fingerprint returns the fingerprint of the dataset currently served.
func (s *Server) Fingerprint() string {
	return s.current().fingerprint
}

// Reload swaps in new datasets. Cached documents of the previous dataset are
// dropped; an identical dataset keeps its cache.
func (s *Server) Reload(boundaries []model.BoundaryFeature, attrs []model.RegionAttributes) {
	next := newSnapshot(boundaries, attrs)

	s.mu.Lock()
	prev := s.data
	s.data = next
	s.mu.Unlock()

	if prev.fingerprint == next.fingerprint {
		zap.L().Info("preview: reload found no dataset change", zap.String("fingerprint", next.fingerprint))
		return
	}

	var dropped int
	if s.opts.Cache != nil {
		dropped = s.opts.Cache.Invalidate(prev.fingerprint + "/")
	}
	zap.L().Info("preview: datasets reloaded",
		zap.String("previous", prev.fingerprint),
		zap.String("fingerprint", next.fingerprint),
		zap.Int("regions", len(boundaries)),
		zap.Int("cache_dropped", dropped),
	)
}

func (s *Server) current() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Router returns the HTTP handler for all preview routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:         300,
	}))
	r.Use(RateLimit(s.opts.RateLimit))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/", s.handleDocument(formatHTML, "text/html; charset=utf-8"))
	r.Get("/map.svg", s.handleDocument(formatSVG, "image/svg+xml"))
	r.Get("/regions", s.handleRegions)
	r.Get("/regions/{name}/overlay", s.handleOverlay)
	r.Get("/cache/stats", s.handleCacheStats)
	if s.opts.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.opts.Metrics.Gatherer(), promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) render(data snapshot) (*scene.Document, *choropleth.Map, error) {
	start := time.Now()
	doc := scene.NewDocument(s.opts.MountID)
	m, err := s.renderer.Render(doc, s.opts.MountID, data.boundaries, data.attrs)
	if err != nil {
		return nil, nil, err
	}
	s.opts.Metrics.ObserveRender(time.Since(start))
	return doc, m, nil
}

func (s *Server) handleDocument(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.current()
		key := documentKey(data.fingerprint, format)

		if s.opts.Cache != nil {
			if cached, ok := s.opts.Cache.Get(key); ok {
				writeDocument(w, cached, "hit")
				return
			}
		}

		doc, m, err := s.render(data)
		if err != nil {
			zap.L().Error("preview: render failed", zap.String("path", r.URL.Path), zap.Error(err))
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}

		var buf bytes.Buffer
		if format == formatHTML {
			err = scene.WriteHTML(&buf, doc)
		} else {
			err = scene.Write(&buf, m.SVG())
		}
		if err != nil {
			zap.L().Error("preview: encode failed", zap.String("render_id", m.ID()), zap.Error(err))
			http.Error(w, "encode failed", http.StatusInternalServerError)
			return
		}

		out := CachedDocument{Body: buf.Bytes(), ContentType: contentType, RenderID: m.ID()}
		if s.opts.Cache != nil {
			s.opts.Cache.Put(key, out)
		}
		writeDocument(w, out, "miss")
	}
}

func writeDocument(w http.ResponseWriter, d CachedDocument, cache string) {
	w.Header().Set("Content-Type", d.ContentType)
	w.Header().Set("X-Cache", cache)
	w.Header().Set("X-Render-ID", d.RenderID)
	_, _ = w.Write(d.Body)
}

// RegionsResponse is the body of GET /regions.
type RegionsResponse struct {
	RenderID    string                  `json:"render_id"`
	Fingerprint string                  `json:"fingerprint"`
	DomainMax   float64                 `json:"domain_max"`
	DomainOK    bool                    `json:"domain_ok"`
	Regions     []choropleth.RegionDraw `json:"regions"`
	Markers     []model.MarkerSpec      `json:"markers"`
}

func (s *Server) handleRegions(w http.ResponseWriter, _ *http.Request) {
	data := s.current()
	_, m, err := s.render(data)
	if err != nil {
		zap.L().Error("preview: render failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "render failed"})
		return
	}
	_, hi, ok := m.Scale().Domain()
	writeJSON(w, http.StatusOK, RegionsResponse{
		RenderID:    m.ID(),
		Fingerprint: data.fingerprint,
		DomainMax:   hi,
		DomainOK:    ok,
		Regions:     m.Regions(),
		Markers:     m.Markers(),
	})
}

func (s *Server) handleOverlay(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid region name"})
		return
	}

	doc, m, err := s.render(s.current())
	if err != nil {
		zap.L().Error("preview: render failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "render failed"})
		return
	}

	idx, ok := m.RegionIndex(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown region"})
		return
	}

	before := doc.Root.Markup()
	m.EnterRegion(idx)
	view, _ := m.Hovered()
	m.LeaveRegion(idx)
	if after := doc.Root.Markup(); after != before {
		zap.L().Error("preview: overlay teardown left the scene changed",
			zap.String("render_id", m.ID()),
			zap.String("region", name),
		)
	}

	s.opts.Metrics.IncOverlay(m.Regions()[idx].Matched())
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	if s.opts.Cache == nil {
		writeJSON(w, http.StatusOK, map[string]string{"cache": "disabled"})
		return
	}
	writeJSON(w, http.StatusOK, s.opts.Cache.Stats())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
