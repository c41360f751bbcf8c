package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/citebase/internal/domain"
	"github.com/heartmarshall/citebase/internal/service/citation"
)

// citationService defines the minimal interface needed by CitationHandler.
type citationService interface {
	Create(ctx context.Context, input citation.CreateInput) (*domain.Citation, error)
	Update(ctx context.Context, input citation.UpdateInput) (*domain.Citation, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Citation, error)
	GetByKey(ctx context.Context, key string) (*domain.Citation, error)
	List(ctx context.Context, page, perPage *int) ([]domain.Citation, error)
	Search(ctx context.Context, filter domain.SearchFilter) ([]domain.Citation, error)
	Export(ctx context.Context, input citation.ExportInput) (string, error)
	LookupDOI(ctx context.Context, doi string) (domain.Fields, error)
	EntryTypes(ctx context.Context) ([]domain.EntryType, error)
	DefaultFields(ctx context.Context, entryTypeID int64) ([]string, error)
	Tags(ctx context.Context) ([]domain.Classification, error)
	Categories(ctx context.Context) ([]domain.Classification, error)
}

// CitationHandler serves the citation REST endpoints.
type CitationHandler struct {
	svc citationService
	log *slog.Logger
}

// NewCitationHandler creates a CitationHandler.
func NewCitationHandler(svc citationService, logger *slog.Logger) *CitationHandler {
	return &CitationHandler{svc: svc, log: logger.With("handler", "citation")}
}

type createRequest struct {
	EntryTypeID int64             `json:"entryTypeId"`
	CitationKey string            `json:"citationKey"`
	Fields      map[string]string `json:"fields"`
	Tags        []string          `json:"tags"`
	Categories  []string          `json:"categories"`
}

type updateRequest struct {
	EntryTypeID *int64            `json:"entryTypeId"`
	CitationKey *string           `json:"citationKey"`
	Fields      map[string]string `json:"fields"`
	Tags        *[]string         `json:"tags"`
	Categories  *[]string         `json:"categories"`
}

type exportRequest struct {
	IDs  []int64  `json:"ids"`
	Keys []string `json:"keys"`
}

type citationResponse struct {
	ID            int64             `json:"id"`
	EntryType     entryTypeResponse `json:"entryType"`
	CitationKey   string            `json:"citationKey"`
	Fields        map[string]string `json:"fields"`
	Tags          []string          `json:"tags"`
	Categories    []string          `json:"categories"`
	HumanReadable string            `json:"humanReadable"`
}

type entryTypeResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type classificationResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Create handles POST /citations.
func (h *CitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.svc.Create(r.Context(), citation.CreateInput{
		EntryTypeID: req.EntryTypeID,
		CitationKey: req.CitationKey,
		Fields:      req.Fields,
		Tags:        req.Tags,
		Categories:  req.Categories,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCitationResponse(created))
}

// Update handles PATCH /citations/{id}.
func (h *CitationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.svc.Update(r.Context(), citation.UpdateInput{
		ID:          id,
		EntryTypeID: req.EntryTypeID,
		CitationKey: req.CitationKey,
		Fields:      req.Fields,
		Tags:        req.Tags,
		Categories:  req.Categories,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCitationResponse(updated))
}

// Delete handles DELETE /citations/{id}.
func (h *CitationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get handles GET /citations/{id}.
func (h *CitationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	c, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCitationResponse(c))
}

// GetByKey handles GET /citations/key/{key}.
func (h *CitationHandler) GetByKey(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	c, err := h.svc.GetByKey(r.Context(), key)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCitationResponse(c))
}

// List handles GET /citations. With any search parameter present the
// request runs through the search path; otherwise it is a plain listing
// with optional paging.
func (h *CitationHandler) List(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	filter := domain.ParseSearchFilter(params)
	if !filter.IsEmpty() || filter.SortBy != "" {
		citations, err := h.svc.Search(r.Context(), filter)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toCitationResponses(citations))
		return
	}

	citations, err := h.svc.List(r.Context(), queryInt(params.Get("page")), queryInt(params.Get("per_page")))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCitationResponses(citations))
}

// Export handles POST /citations/export. Responds with a BibTeX document.
func (h *CitationHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	doc, err := h.svc.Export(r.Context(), citation.ExportInput{IDs: req.IDs, Keys: req.Keys})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-bibtex; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="citations.bib"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc)) //nolint:errcheck
}

// LookupDOI handles GET /doi?doi=...
func (h *CitationHandler) LookupDOI(w http.ResponseWriter, r *http.Request) {
	fields, err := h.svc.LookupDOI(r.Context(), r.URL.Query().Get("doi"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	out := make(map[string]string, len(fields))
	for key := range fields {
		out[key] = fields.Get(key)
	}

	writeJSON(w, http.StatusOK, map[string]any{"fields": out})
}

// EntryTypes handles GET /entry-types.
func (h *CitationHandler) EntryTypes(w http.ResponseWriter, r *http.Request) {
	entryTypes, err := h.svc.EntryTypes(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	out := make([]entryTypeResponse, len(entryTypes))
	for i, et := range entryTypes {
		out[i] = entryTypeResponse{ID: et.ID, Name: et.Name}
	}

	writeJSON(w, http.StatusOK, out)
}

// DefaultFields handles GET /entry-types/{id}/fields.
func (h *CitationHandler) DefaultFields(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	fields, err := h.svc.DefaultFields(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"fields": fields})
}

// Tags handles GET /tags.
func (h *CitationHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Tags(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toClassificationResponses(tags))
}

// Categories handles GET /categories.
func (h *CitationHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Categories(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toClassificationResponses(categories))
}

func (h *CitationHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already exists")
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// pathID parses the {id} path parameter, responding 400 on garbage.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// queryInt parses an optional positive integer query parameter.
func queryInt(raw string) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

func toCitationResponse(c *domain.Citation) citationResponse {
	fields := make(map[string]string, len(c.Fields))
	for key := range c.Fields {
		fields[key] = c.Fields.Get(key)
	}

	return citationResponse{
		ID:            c.ID,
		EntryType:     entryTypeResponse{ID: c.EntryType.ID, Name: c.EntryType.Name},
		CitationKey:   c.CitationKey,
		Fields:        fields,
		Tags:          domain.ClassificationNames(c.Tags),
		Categories:    domain.ClassificationNames(c.Categories),
		HumanReadable: c.HumanReadable(),
	}
}

func toCitationResponses(citations []domain.Citation) []citationResponse {
	out := make([]citationResponse, len(citations))
	for i := range citations {
		out[i] = toCitationResponse(&citations[i])
	}
	return out
}

func toClassificationResponses(list []domain.Classification) []classificationResponse {
	out := make([]classificationResponse, len(list))
	for i, c := range list {
		out[i] = classificationResponse{ID: c.ID, Name: c.Name}
	}
	return out
}
