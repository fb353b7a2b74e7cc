package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/prompt-market/internal/apperror"
	"github.com/sakif/prompt-market/internal/catalog"
	"github.com/sakif/prompt-market/internal/service"
)

// CatalogHandler serves the public, read-only side of the marketplace.
// Routes are mounted behind OptionalAuth: anonymous callers get plain
// prompts, signed-in callers also get isFavorited / inCart.
type CatalogHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// HandleListPrompts handles GET /api/prompts.
//
// Query: categoryId, search, featured, trending, isNew, limit, offset.
// Every parameter is optional; a malformed one is a 400, never silently
// ignored.
func (h *CatalogHandler) HandleListPrompts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	prompts, err := h.catalog.Query(r.Context(), filter, viewer(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, prompts)
}

// HandleGetPrompt handles GET /api/prompts/{id}.
func (h *CatalogHandler) HandleGetPrompt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	prompt, err := h.catalog.Get(r.Context(), id, viewer(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, prompt)
}

// HandleListCategories handles GET /api/categories.
func (h *CatalogHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// HandleGetCategory handles GET /api/categories/{slug}.
func (h *CatalogHandler) HandleGetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.catalog.CategoryBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// parseFilter builds a catalog.Filter from the query string. An empty value
// ("?featured=") counts as absent.
func parseFilter(q url.Values) (catalog.Filter, error) {
	var f catalog.Filter

	if raw := q.Get("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return f, apperror.ValidationFailed("categoryId", "categoryId must be a positive integer")
		}
		f.CategoryID = &id
	}

	f.Search = q.Get("search")

	for _, flag := range []struct {
		name string
		dst  **bool
	}{
		{"featured", &f.Featured},
		{"trending", &f.Trending},
		{"isNew", &f.IsNew},
	} {
		v, err := parseBool(q, flag.name)
		if err != nil {
			return f, err
		}
		*flag.dst = v
	}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, apperror.ValidationFailed("limit", "limit must be a non-negative integer")
		}
		f.Limit = &n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, apperror.ValidationFailed("offset", "offset must be a non-negative integer")
		}
		f.Offset = n
	}

	return f, nil
}

// parseBool accepts exactly "true" and "false". strconv.ParseBool would also
// take "1", "T" and friends, which the frontend never sends.
func parseBool(q url.Values, name string) (*bool, error) {
	switch q.Get(name) {
	case "":
		return nil, nil
	case "true":
		return catalog.Ptr(true), nil
	case "false":
		return catalog.Ptr(false), nil
	}
	return nil, apperror.ValidationFailed(name, name+" must be true or false")
}
