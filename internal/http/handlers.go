package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/godilite/satisfaction-radar/internal/repository"
	"github.com/godilite/satisfaction-radar/internal/service"
)

type Handler struct {
	reports ReportService
	tmpl    *template.Template
	logger  *zap.Logger
}

type page struct {
	Datasets      []string
	Categories    []string
	Months        []int
	AllCategories string
	Query         service.Query

	Warning     string
	Error       string
	ChartSrc    template.URL
	Filename    string
	DownloadURL string
}

var months = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Index)
	r.Get("/report", h.Report)
	r.Get("/report.png", h.Download)
	r.Get("/api/datasets", h.ListDatasets)
	r.Get("/api/categories", h.ListCategories)
	r.Get("/health", h.HealthCheck)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

// Index shows the selection form for the requested (or first) dataset.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	datasets := h.reports.Datasets()
	q := service.Query{
		Dataset: r.URL.Query().Get("dataset"),
		Month:   int(time.Now().Month()),
	}
	if q.Dataset == "" && len(datasets) > 0 {
		q.Dataset = datasets[0]
	}

	p := h.newPage(r, q)
	h.render(w, http.StatusOK, p)
}

// Report aggregates and renders the selected filters, embedding the PNG
// inline. An empty filter result shows a warning and no chart.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		p := h.newPage(r, q)
		p.Error = err.Error()
		h.render(w, http.StatusBadRequest, p)
		return
	}

	p := h.newPage(r, q)
	report, err := h.reports.Generate(r.Context(), q)
	if err != nil {
		status := statusFor(err)
		if errors.Is(err, service.ErrNoDataForFilter) {
			p.Warning = noDataWarning(q)
			h.logger.Info("no data for filter", zap.Error(err))
			h.render(w, http.StatusOK, p)
			return
		}
		h.logger.Error("report failed", zap.Error(err))
		p.Error = publicMessage(status, err)
		h.render(w, status, p)
		return
	}

	p.ChartSrc = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(report.Chart.PNG))
	p.Filename = report.Filename
	p.DownloadURL = "/report.png?" + queryValues(q).Encode()
	h.render(w, http.StatusOK, p)
}

// Download serves the chart as a PNG attachment named by the export filename.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.reports.Generate(r.Context(), q)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("download failed", zap.Error(err))
		}
		http.Error(w, publicMessage(status, err), status)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": report.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Chart.PNG)))
	if _, err := report.Chart.WriteTo(w); err != nil {
		h.logger.Warn("write png failed", zap.Error(err))
	}
}

func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"datasets": h.reports.Datasets()})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	dataset := strings.TrimSpace(r.URL.Query().Get("dataset"))
	if dataset == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "dataset is required"})
		return
	}

	categories, err := h.reports.Categories(r.Context(), dataset)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("list categories failed", zap.Error(err))
		}
		writeJSON(w, status, map[string]string{"error": publicMessage(status, err)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dataset": dataset, "categories": categories})
}

func (h *Handler) newPage(r *http.Request, q service.Query) page {
	p := page{
		Datasets:      h.reports.Datasets(),
		Months:        months,
		AllCategories: service.AllCategories,
		Query:         q,
	}
	if q.Dataset == "" {
		return p
	}
	categories, err := h.reports.Categories(r.Context(), q.Dataset)
	if err != nil {
		h.logger.Warn("category list unavailable", zap.String("dataset", q.Dataset), zap.Error(err))
		return p
	}
	p.Categories = categories
	return p
}

func (h *Handler) render(w http.ResponseWriter, status int, p page) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "layout", p); err != nil {
		h.logger.Error("template execution failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// parseQuery reads dataset, category and month. The UI always sends a
// month, so it is required here.
func parseQuery(v url.Values) (service.Query, error) {
	q := service.Query{
		Dataset:  v.Get("dataset"),
		Category: v.Get("category"),
	}
	q = q.Normalize()
	if q.Dataset == "" {
		return q, errors.New("dataset is required")
	}

	raw := strings.TrimSpace(v.Get("month"))
	if raw == "" {
		return q, errors.New("month is required")
	}
	m, err := strconv.Atoi(raw)
	if err != nil || m < 1 || m > 12 {
		return q, fmt.Errorf("month must be between 1 and 12, got %q", raw)
	}
	q.Month = m
	return q, nil
}

func queryValues(q service.Query) url.Values {
	v := url.Values{}
	v.Set("dataset", q.Dataset)
	category := q.Category
	if category == "" {
		category = service.AllCategories
	}
	v.Set("category", category)
	v.Set("month", strconv.Itoa(q.Month))
	return v
}

func noDataWarning(q service.Query) string {
	category := q.Category
	if category == "" {
		category = service.AllCategories
	}
	return fmt.Sprintf("No hay datos para %s, capital %s, mes %d.", q.Dataset, category, q.Month)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNoDataForFilter):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidFilter), errors.Is(err, service.ErrUnknownDataset):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDataSourceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, repository.ErrSchemaMismatch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal detail on server-side failures.
func publicMessage(status int, err error) string {
	switch status {
	case http.StatusServiceUnavailable:
		return "data source unavailable"
	case http.StatusInternalServerError:
		return "internal error"
	default:
		return err.Error()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
