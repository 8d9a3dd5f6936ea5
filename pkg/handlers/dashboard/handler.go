package dashboard

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"regexp"
	"slices"
	"strings"

	"github.com/de-tools/resp-atlas/pkg/adapters"
	"github.com/de-tools/resp-atlas/pkg/models/api"
	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/de-tools/resp-atlas/pkg/pages"
	"github.com/de-tools/resp-atlas/pkg/services/content"
	"github.com/de-tools/resp-atlas/pkg/services/dashboard"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

var (
	validViews = []string{domain.ViewVisits, domain.ViewHospitalizations}
	virusName  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 .+-]{0,63}$`)
)

type Router struct {
	svc dashboard.Service
}

func NewRouter(svc dashboard.Service) *Router {
	return &Router{
		svc: svc,
	}
}

func (h *Router) ListPages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	list, err := h.svc.ListPages(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list pages")
		http.Error(w, "failed to list pages", http.StatusInternalServerError)
		return
	}

	response := make([]api.PageSummary, 0, len(list))
	for _, p := range list {
		response = append(response, adapters.MapDomainPageSummaryToAPI(p))
	}
	writeJSON(w, r, response)
}

func (h *Router) ListSources(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	names, err := h.svc.ListSources(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list sources")
		http.Error(w, "failed to list sources", http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, r, names)
}

func (h *Router) GetPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	pageID := chi.URLParam(r, "page")
	query := r.URL.Query()

	req := dashboard.Request{
		Source: strings.TrimSpace(query.Get("source")),
		Vars:   map[string]string{},
	}

	if view := strings.TrimSpace(query.Get("view")); view != "" {
		if !slices.Contains(validViews, view) {
			http.Error(w, "invalid 'view'. Expected one of: "+strings.Join(validViews, ", "), http.StatusBadRequest)
			return
		}
		req.Vars["view"] = view
	}
	if virus := strings.TrimSpace(query.Get("virus")); virus != "" {
		if !virusName.MatchString(virus) {
			http.Error(w, "invalid 'virus' name", http.StatusBadRequest)
			return
		}
		req.Vars["virus"] = virus
	}
	if req.Source != "" {
		sources, err := h.svc.ListSources(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("failed to list sources")
			http.Error(w, "failed to list sources", http.StatusInternalServerError)
			return
		}
		if !slices.Contains(sources, req.Source) {
			http.Error(w, "unknown source: "+req.Source, http.StatusBadRequest)
			return
		}
	}

	page, err := h.svc.RenderPage(ctx, pageID, req)
	if errors.Is(err, pages.ErrPageNotFound) {
		http.Error(w, "page not found: "+pageID, http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("page", pageID).Msg("failed to render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, adapters.MapDomainRenderedPageToAPI(page))
}

func (h *Router) GetContentSection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	file := chi.URLParam(r, "file")
	title := chi.URLParam(r, "section")

	section, err := h.svc.ContentSection(ctx, file, title)
	switch {
	case errors.Is(err, fs.ErrInvalid):
		http.Error(w, "invalid content file", http.StatusBadRequest)
		return
	case errors.Is(err, content.ErrSectionNotFound), errors.Is(err, fs.ErrNotExist):
		http.Error(w, "content not found", http.StatusNotFound)
		return
	case err != nil:
		logger.Error().Err(err).Str("file", file).Msg("failed to load content")
		http.Error(w, "failed to load content", http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, api.ContentSection{File: file, Title: section.Title, HTML: section.HTML})
}

func (h *Router) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Str("path", r.URL.Path).
			Msg("failed to encode response")
	}
}
