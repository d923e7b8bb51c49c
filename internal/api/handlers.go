package api

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yuhungliao/mission-control/internal/apperr"
	"github.com/yuhungliao/mission-control/internal/memoryservice"
	"github.com/yuhungliao/mission-control/internal/models"
)

// Handler holds memory route handlers.
type Handler struct {
	svc *memoryservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *memoryservice.Service) *Handler {
	return &Handler{svc: svc}
}

// memorySlug extracts the slug from the URL (everything after /api/memories/
// or /api/memory/).
// Supports encoded slashes (e.g. memory%2F2026-02-21).
func memorySlug(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ExportSync handles GET /api/sync.
//
//	@Summary		Export the redacted workspace documents
//	@Tags			sync
//	@Produce		json
//	@Success		200	{object}	SyncExportResponse
//	@Failure		401	{object}	errResponse
//	@Failure		500	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sync [get]
func (h *Handler) ExportSync(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.Export(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SyncExportResponse{Files: docs, Count: len(docs)})
}

// SyncMemories handles POST /api/memories/sync.
//
//	@Summary		Sync the workspace into the memory store
//	@Tags			memories
//	@Produce		json
//	@Success		200	{object}	SyncReportResponse
//	@Failure		500	{object}	errResponse
//	@Router			/memories/sync [post]
func (h *Handler) SyncMemories(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Sync(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SyncReportResponse(rep))
}

// ListMemories handles GET /api/memories.
//
//	@Summary		List memories, optionally by category
//	@Tags			memories
//	@Produce		json
//	@Param			category	query		string	false	"Category"	Enums(core, daily, reference)
//	@Success		200			{object}	MemoryListResponse
//	@Failure		400			{object}	errResponse
//	@Router			/memories [get]
func (h *Handler) ListMemories(w http.ResponseWriter, r *http.Request) {
	category, err := memoryservice.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}
	items, err := h.svc.List(r.Context(), category)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MemoryListResponse{Memories: items, Count: len(items)})
}

// SearchMemories handles GET /api/memories/search.
//
//	@Summary		Search memory titles and content
//	@Tags			memories
//	@Produce		json
//	@Param			q			query		string	false	"Search query; empty lists all"
//	@Param			category	query		string	false	"Category"	Enums(core, daily, reference)
//	@Param			limit		query		int		false	"Max results"
//	@Success		200			{object}	SearchResponse
//	@Failure		400			{object}	errResponse
//	@Router			/memories/search [get]
func (h *Handler) SearchMemories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category, err := memoryservice.ParseCategory(q.Get("category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))

	hits, err := h.svc.Search(r.Context(), q.Get("q"), category, limit)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: hits, Count: len(hits)})
}

// GetMemory handles GET /api/memories/* and GET /api/memory/*.
//
//	@Summary		Get a single memory by slug
//	@Tags			memories
//	@Produce		json,html
//	@Param			slug	path		string	true	"Memory slug"
//	@Param			format	query		string	false	"Response format"	Enums(json, html)
//	@Success		200		{object}	Memory
//	@Failure		404		{object}	errResponse
//	@Router			/memories/{slug} [get]
func (h *Handler) GetMemory(w http.ResponseWriter, r *http.Request) {
	slug := memorySlug(r)
	if slug == "" {
		writeError(w, http.StatusBadRequest, "slug is required")
		return
	}
	if r.URL.Query().Get("format") == "html" {
		h.renderMemory(w, r, slug)
		return
	}
	m, err := h.svc.Get(r.Context(), slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			writeInternal(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) renderMemory(w http.ResponseWriter, r *http.Request, slug string) {
	m, body, err := h.svc.RenderHTML(r.Context(), slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			writeInternal(w, r, err)
		}
		return
	}
	writeHTML(w, memoryTmpl, map[string]any{
		"Title": m.Title,
		"Body":  template.HTML(body), //nolint:gosec // goldmark drops raw HTML
	})
}

// DeleteMemory handles DELETE /api/memories/* and DELETE /api/memory/*.
//
//	@Summary		Remove a memory from the store
//	@Tags			memories
//	@Param			slug	path	string	true	"Memory slug"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Router			/memories/{slug} [delete]
func (h *Handler) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	slug := memorySlug(r)
	if slug == "" {
		writeError(w, http.StatusBadRequest, "slug is required")
		return
	}
	if err := h.svc.Delete(r.Context(), slug); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			writeInternal(w, r, err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type categoryGroup struct {
	Category models.Category
	Memories []models.Memory
}

// Index handles GET /: a plain HTML list of memories grouped by category.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), "")
	if err != nil {
		slog.Error("index page failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	var groups []categoryGroup
	for _, m := range items {
		if n := len(groups); n == 0 || groups[n-1].Category != m.Category {
			groups = append(groups, categoryGroup{Category: m.Category})
		}
		groups[len(groups)-1].Memories = append(groups[len(groups)-1].Memories, m)
	}
	writeHTML(w, indexTmpl, groups)
}

func writeHTML(w http.ResponseWriter, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		slog.Error("template render failed", slog.String("template", tmpl.Name()), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
