package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/pageloader/internal/app"
	"github.com/GriffinCanCode/pageloader/internal/domain/resource"
	"github.com/GriffinCanCode/pageloader/internal/infrastructure/logging"
)

// ErrNotLoaded is returned before the first load completes
var ErrNotLoaded = errors.New("page not loaded yet")

// LoadFunc runs one page load
type LoadFunc func(ctx context.Context) (*app.Result, error)

// Handlers contains the preview HTTP handlers
type Handlers struct {
	load   LoadFunc
	logger *logging.Logger

	// loading serializes loads; each one owns its document and workers
	loading sync.Mutex

	mu   sync.RWMutex
	last *app.Result
}

// NewHandlers creates a handler set
func NewHandlers(load LoadFunc, logger *logging.Logger) *Handlers {
	return &Handlers{
		load:   load,
		logger: logger.Named("preview"),
	}
}

// Reload runs a new page load and publishes its result
func (h *Handlers) Reload(ctx context.Context) (*app.Result, error) {
	h.loading.Lock()
	defer h.loading.Unlock()

	result, err := h.load(ctx)
	if err != nil {
		h.logger.Error("page load failed", zap.Error(err))
		return nil, err
	}

	h.mu.Lock()
	h.last = result
	h.mu.Unlock()
	return result, nil
}

// Last returns the most recent result
func (h *Handlers) Last() (*app.Result, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.last == nil {
		return nil, ErrNotLoaded
	}
	return h.last, nil
}

// Health reports liveness and whether a page has been loaded
func (h *Handlers) Health(c *gin.Context) {
	_, err := h.Last()
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"loaded": err == nil,
	})
}

// Page serves the rendered document
func (h *Handlers) Page(c *gin.Context) {
	result, err := h.Last()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(result.HTML))
}

// Report serves the load report of the current page
func (h *Handlers) Report(c *gin.Context) {
	result, err := h.Last()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, NewReportView(result))
}

// ReloadPage loads the page again and returns the new report
func (h *Handlers) ReloadPage(c *gin.Context) {
	result, err := h.Reload(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, NewReportView(result))
}

// Query evaluates the xpath query parameter against the current page
func (h *Handlers) Query(c *gin.Context) {
	expr := c.Query("xpath")
	if expr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "xpath parameter required"})
		return
	}
	result, err := h.Last()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	doc, err := htmlquery.Parse(strings.NewReader(result.HTML))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	nodes, err := htmlquery.QueryAll(doc, expr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "xpath query failed: " + err.Error()})
		return
	}

	matches := make([]MatchView, 0, len(nodes))
	for _, n := range nodes {
		matches = append(matches, MatchView{
			Text: strings.TrimSpace(htmlquery.InnerText(n)),
			HTML: htmlquery.OutputHTML(n, true),
		})
	}
	c.JSON(http.StatusOK, gin.H{"count": len(matches), "matches": matches})
}

// MatchView is one XPath match
type MatchView struct {
	Text string `json:"text"`
	HTML string `json:"html"`
}

// OutcomeView is the JSON shape of one resource outcome
type OutcomeView struct {
	Name       string  `json:"name"`
	Path       string  `json:"path"`
	Type       string  `json:"type"`
	Scheme     string  `json:"scheme"`
	Loaded     bool    `json:"loaded"`
	Kind       string  `json:"kind,omitempty"`
	Error      string  `json:"error,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// ConsoleView is the JSON shape of one console entry
type ConsoleView struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Source  string `json:"source"`
}

// ReportView is the JSON shape of a page load
type ReportView struct {
	BatchID    string        `json:"batch_id"`
	Loaded     int           `json:"loaded"`
	Failed     int           `json:"failed"`
	DurationMS float64       `json:"duration_ms"`
	LoadedAt   time.Time     `json:"loaded_at"`
	Resources  []OutcomeView `json:"resources"`
	Console    []ConsoleView `json:"console"`
}

// NewReportView converts a result for the wire
func NewReportView(result *app.Result) ReportView {
	report := result.Report
	view := ReportView{
		BatchID:    string(report.BatchID),
		Loaded:     report.Loaded(),
		Failed:     len(report.Failed()),
		DurationMS: milliseconds(report.Duration),
		LoadedAt:   result.LoadedAt,
		Resources:  make([]OutcomeView, 0, len(report.Outcomes)),
		Console:    make([]ConsoleView, 0, len(result.Console)),
	}

	for _, o := range report.Outcomes {
		ov := OutcomeView{
			Name:       o.Name,
			Path:       o.Path,
			Type:       o.Type.String(),
			Scheme:     o.Scheme.String(),
			Loaded:     o.Loaded(),
			DurationMS: milliseconds(o.Duration),
		}
		if o.Err != nil {
			ov.Kind = resource.Kind(o.Err)
			ov.Error = o.Err.Error()
		}
		view.Resources = append(view.Resources, ov)
	}
	for _, e := range result.Console {
		view.Console = append(view.Console, ConsoleView{Level: e.Level, Message: e.Message, Source: e.Source})
	}
	return view
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
