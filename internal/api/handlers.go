package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/tagvault/internal/tagservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc tagservice.Vault
}

// NewHandler creates a new Handler.
func NewHandler(svc tagservice.Vault) *Handler {
	return &Handler{svc: svc}
}

// notePath extracts the note path from the URL (everything after /api/notes/).
// Supports encoded slashes from OpenAPI clients (e.g. daily%2F2024-01-15.md).
func notePath(r *http.Request) string {
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

// tagParam returns the {tag} URL parameter. The leading '#' is optional in
// the URL since it has to be sent as %23.
func tagParam(r *http.Request) string {
	raw := chi.URLParam(r, "tag")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	if !strings.HasPrefix(raw, "#") {
		raw = "#" + raw
	}
	return raw
}

// ListTags handles GET /api/tags.
//
//	@Summary		List every tag with section and file counts
//	@Tags			tags
//	@Produce		json
//	@Success		200	{object}	TagListResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.Summaries(r.Context())
	if err != nil {
		writeServiceError(w, "list tags", err)
		return
	}
	writeJSON(w, http.StatusOK, TagListResponse{Tags: summaries})
}

// RefreshTags handles POST /api/tags/refresh.
//
//	@Summary		Rebuild the tag index from the vault
//	@Tags			tags
//	@Produce		json
//	@Success		200	{object}	TagListResponse
//	@Failure		500	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tags/refresh [post]
func (h *Handler) RefreshTags(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Refresh(r.Context()); err != nil {
		writeServiceError(w, "refresh tags", err)
		return
	}
	h.ListTags(w, r)
}

// GetTagContent handles GET /api/tags/{tag}.
//
//	@Summary		Get every section tagged with a tag, across the vault
//	@Tags			tags
//	@Produce		json
//	@Param			tag	path		string	true	"Tag, with or without the leading #"
//	@Success		200	{object}	TagContentResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tags/{tag} [get]
func (h *Handler) GetTagContent(w http.ResponseWriter, r *http.Request) {
	tag := tagParam(r)
	entries, err := h.svc.GetContent(r.Context(), tag)
	if err != nil {
		writeServiceError(w, "get tag content", err, slog.String("tag", tag))
		return
	}
	writeJSON(w, http.StatusOK, TagContentResponse{Tag: tag, Entries: entries})
}

// DeleteTagContent handles DELETE /api/tags/{tag}.
//
//	@Summary		Delete every section tagged with a tag, across the vault
//	@Tags			tags
//	@Produce		json
//	@Param			tag	path		string	true	"Tag, with or without the leading #"
//	@Success		200	{object}	DeleteReport
//	@Failure		400	{object}	errResponse
//	@Failure		500	{object}	DeleteReport
//	@Security		BearerAuth
//	@Router			/tags/{tag} [delete]
func (h *Handler) DeleteTagContent(w http.ResponseWriter, r *http.Request) {
	tag := tagParam(r)
	report, err := h.svc.DeleteContent(r.Context(), tag)
	if err != nil {
		if len(report.FilesModified) == 0 {
			writeServiceError(w, "delete tag content", err, slog.String("tag", tag))
			return
		}
		// Files were rewritten but the index could not be rebuilt.
		slog.Error("delete tag content failed after write-back",
			slog.String("tag", tag),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, report)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GetNote handles GET /api/notes/*.
//
//	@Summary		Get the parsed tag sections of a single note
//	@Tags			notes
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Success		200		{object}	NoteDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{path} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	note, err := h.svc.Note(r.Context(), path)
	if err != nil {
		writeServiceError(w, "get note", err, slog.String("path", path))
		return
	}
	w.Header().Set("ETag", `"`+note.Checksum+`"`)
	writeJSON(w, http.StatusOK, note)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across tagged sections
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Failure		501		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, "search", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
