package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vmoraru/fiscaldoc/internal/config"
	"github.com/vmoraru/fiscaldoc/internal/core/domain"
	"github.com/vmoraru/fiscaldoc/internal/core/ports"
	"github.com/vmoraru/fiscaldoc/internal/infrastructure/textextract"
	"github.com/vmoraru/fiscaldoc/internal/observability/metrics"
)

const serviceName = "fiscaldoc-api"

type Router struct {
	ingest  ports.DocumentIngestor
	docs    ports.DocumentReader
	editor  ports.DocumentEditor
	reports ports.ReportService
	metrics *metrics.HTTPServerMetrics

	maxUploadBytes   int64
	rateLimitRPS     float64
	rateLimitBurst   int
	maxConcurrent    int
	backpressureWait time.Duration
}

func NewRouter(
	cfg config.Config,
	ingest ports.DocumentIngestor,
	docs ports.DocumentReader,
	editor ports.DocumentEditor,
	reports ports.ReportService,
	serverMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		ingest:           ingest,
		docs:             docs,
		editor:           editor,
		reports:          reports,
		metrics:          serverMetrics,
		maxUploadBytes:   cfg.MaxUploadBytes,
		rateLimitRPS:     cfg.APIRateLimitRPS,
		rateLimitBurst:   cfg.APIRateLimitBurst,
		maxConcurrent:    cfg.APIMaxConcurrent,
		backpressureWait: 200 * time.Millisecond,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.documentsCollection)
	mux.HandleFunc("/v1/documents/", rt.documentsItem)
	mux.HandleFunc("/v1/reports/summary", rt.reportSummary)
	mux.HandleFunc("/v1/reports/fiscal", rt.reportFiscal)
	mux.HandleFunc("/v1/reports/detailed", rt.reportDetailed)
	mux.HandleFunc("/v1/reports/export", rt.reportExport)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.maxConcurrent, rt.backpressureWait)
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) documentsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadDocument(w, r)
	case http.MethodGet:
		rt.listDocuments(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if rt.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes)
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	if !textextract.SupportedExtension(fileHeader.Filename) {
		if rt.metrics != nil {
			rt.metrics.RecordUpload(serviceName, domain.ErrUnsupportedFile)
		}
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{
			"error": "unsupported file format: " + fileHeader.Filename,
		})
		return
	}

	doc, err := rt.ingest.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		r.FormValue("language"),
		file,
	)
	if rt.metrics != nil {
		rt.metrics.RecordUpload(serviceName, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	docs, err := rt.docs.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"documents": docs,
		"count":     len(docs),
	})
}

func (rt *Router) documentsItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if rest == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 1:
		rt.getDocument(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "reprocess":
		rt.reprocessDocument(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "fields":
		rt.updateDocumentField(w, r, parts[0], parts[2])
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) reprocessDocument(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if err := rt.editor.Reprocess(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":     id,
		"status": string(domain.StatusUploaded),
	})
}

func (rt *Router) updateDocumentField(w http.ResponseWriter, r *http.Request, id, fieldName string) {
	if r.Method != http.MethodPatch {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	doc, err := rt.editor.UpdateFieldValue(r.Context(), id, fieldName, req.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func parseListFilter(r *http.Request) (ports.ListFilter, error) {
	query := r.URL.Query()
	filter := ports.ListFilter{
		DocType:     strings.TrimSpace(query.Get("doc_type")),
		OnlyInvalid: query.Get("invalid") == "true",
	}

	if raw := query.Get("from"); raw != "" {
		from, err := parseTimeParam(raw)
		if err != nil {
			return ports.ListFilter{}, domain.WrapError(domain.ErrInvalidInput, "parse from", err)
		}
		filter.From = &from
	}
	if raw := query.Get("to"); raw != "" {
		to, err := parseTimeParam(raw)
		if err != nil {
			return ports.ListFilter{}, domain.WrapError(domain.ErrInvalidInput, "parse to", err)
		}
		filter.To = &to
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return ports.ListFilter{}, domain.WrapError(domain.ErrInvalidInput, "parse limit", err)
		}
		filter.Limit = limit
	}
	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return ports.ListFilter{}, domain.WrapError(domain.ErrInvalidInput, "parse offset", err)
		}
		filter.Offset = offset
	}

	return filter, nil
}

func parseTimeParam(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
