package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/trusteehq/trustee/internal/checkpoint"
	"github.com/trusteehq/trustee/internal/fingerprint"
	"github.com/trusteehq/trustee/internal/search"
	"github.com/trusteehq/trustee/internal/version"
)

// API response types

// StatusResponse describes the running server.
type StatusResponse struct {
	Version     string `json:"version"`
	StorageRoot string `json:"storage_root"`
	Fingerprint string `json:"fingerprint,omitempty"`
	SearchIndex string `json:"search_index,omitempty"`
}

// ProjectsResponse lists project summaries plus enumeration diagnostics.
type ProjectsResponse struct {
	Projects    []checkpoint.ProjectSummary `json:"projects"`
	Diagnostics checkpoint.ListDiagnostics  `json:"diagnostics"`
}

// ResumableResponse is the resume view: every valid project with its
// sessions, plus what had to be skipped.
type ResumableResponse struct {
	Projects    []checkpoint.ResumableProject `json:"projects"`
	Diagnostics checkpoint.ResumeDiagnostics  `json:"diagnostics"`
}

// SessionsResponse lists session records for one project.
type SessionsResponse struct {
	Sessions []checkpoint.SessionRecord `json:"sessions"`
}

// SearchResponse carries grouped search hits.
type SearchResponse struct {
	Results []search.SessionResult `json:"results"`
	Total   int                    `json:"total"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, err string, msg string) {
	writeJSON(w, status, ErrorResponse{Error: err, Message: msg})
}

// storageStatus maps a storage error onto an HTTP status and error code.
func storageStatus(err error) (int, string) {
	switch {
	case errors.Is(err, checkpoint.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, checkpoint.ErrCorruptEntry):
		return http.StatusConflict, "corrupt_entry"
	case errors.Is(err, checkpoint.ErrStorageRootInaccessible):
		return http.StatusServiceUnavailable, "storage_root_inaccessible"
	default:
		return http.StatusInternalServerError, "storage_error"
	}
}

// handleStatus returns server identity and configuration.
//
//	@Summary  Server status
//	@Tags     status
//	@Produce  json
//	@Success  200 {object} StatusResponse
//	@Router   /status [get]
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Version:     version.Get(),
		StorageRoot: s.manager.Root(),
	}
	if fp, err := fingerprint.GetFingerprint(); err == nil {
		resp.Fingerprint = fp
	}
	if s.index != nil {
		resp.SearchIndex = s.index.Path()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListProjects returns every valid project, newest first. Corrupt
// entries are reported in the diagnostics, never as a failure.
//
//	@Summary  List projects
//	@Tags     projects
//	@Produce  json
//	@Param    q query string false "Filter by name or path substring"
//	@Success  200 {object} ProjectsResponse
//	@Failure  503 {object} ErrorResponse
//	@Router   /projects [get]
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	summaries, diags, err := s.manager.ListProjects(r.Context())
	if err != nil {
		status, code := storageStatus(err)
		writeError(w, status, code, err.Error())
		return
	}

	if q := strings.ToLower(r.URL.Query().Get("q")); q != "" {
		filtered := make([]checkpoint.ProjectSummary, 0, len(summaries))
		for _, p := range summaries {
			if strings.Contains(strings.ToLower(p.Name), q) ||
				strings.Contains(strings.ToLower(p.Path), q) {
				filtered = append(filtered, p)
			}
		}
		summaries = filtered
	}

	writeJSON(w, http.StatusOK, ProjectsResponse{Projects: summaries, Diagnostics: diags})
}

// handleGetProject loads one project by hash. Strictly identifier-based;
// works whether or not the recorded path still exists.
//
//	@Summary  Get a project by hash
//	@Tags     projects
//	@Produce  json
//	@Param    hash path string true "Project hash"
//	@Success  200 {object} checkpoint.ProjectMetadata
//	@Failure  404 {object} ErrorResponse
//	@Failure  409 {object} ErrorResponse
//	@Router   /projects/{hash} [get]
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	hash := checkpoint.ProjectHash(chi.URLParam(r, "hash"))
	storage, err := s.manager.GetProjectStorageByHash(hash)
	if err != nil {
		status, code := storageStatus(err)
		writeError(w, status, code, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, storage.Metadata)
}

// handleTouch bumps last_accessed for a project.
//
//	@Summary  Touch a project
//	@Tags     projects
//	@Param    hash path string true "Project hash"
//	@Success  204 "No Content"
//	@Router   /projects/{hash}/touch [post]
func (s *Server) handleTouch(w http.ResponseWriter, r *http.Request) {
	hash := checkpoint.ProjectHash(chi.URLParam(r, "hash"))
	s.manager.Touch(hash)
	w.WriteHeader(http.StatusNoContent)
}

// handleListSessions returns the session records of one project.
//
//	@Summary  List sessions for a project
//	@Tags     sessions
//	@Produce  json
//	@Param    hash path string true "Project hash"
//	@Success  200 {object} SessionsResponse
//	@Failure  500 {object} ErrorResponse
//	@Router   /projects/{hash}/sessions [get]
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	hash := checkpoint.ProjectHash(chi.URLParam(r, "hash"))
	records, err := s.sessions.ListSessions(r.Context(), hash)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_sessions_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SessionsResponse{Sessions: records})
}

// SessionResponse contains one transcript.
type SessionResponse struct {
	SessionID string          `json:"session_id"`
	Entries   []sessionEntry  `json:"entries"`
	Skipped   int             `json:"skipped_lines,omitempty"`
}

type sessionEntry struct {
	Role string `json:"role"`
	Text string `json:"text"`
	At   string `json:"at"`
}

// handleGetSession returns a transcript with optional pagination.
//
//	@Summary  Get a session transcript
//	@Tags     sessions
//	@Produce  json
//	@Param    hash path string true "Project hash"
//	@Param    sessionID path string true "Session ID"
//	@Param    limit query int false "Max entries"
//	@Param    offset query int false "Entries to skip"
//	@Success  200 {object} SessionResponse
//	@Failure  404 {object} ErrorResponse
//	@Router   /projects/{hash}/sessions/{sessionID} [get]
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	hash := checkpoint.ProjectHash(chi.URLParam(r, "hash"))
	sessionID := chi.URLParam(r, "sessionID")

	entries, skipped, err := s.sessions.ReadSession(r.Context(), hash, sessionID)
	if err != nil {
		if errors.Is(err, checkpoint.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "read_session_failed", err.Error())
		return
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if offset > 0 {
		if offset >= len(entries) {
			entries = nil
		} else {
			entries = entries[offset:]
		}
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	resp := SessionResponse{SessionID: sessionID, Skipped: skipped}
	resp.Entries = make([]sessionEntry, len(entries))
	for i, e := range entries {
		resp.Entries[i] = sessionEntry{Role: string(e.Role), Text: e.Text, At: e.At.Format("2006-01-02T15:04:05Z07:00")}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleResumable returns the full resume view. The only failure is the
// storage root being inaccessible; everything else is in the diagnostics.
//
//	@Summary  List resumable projects with sessions
//	@Tags     resume
//	@Produce  json
//	@Success  200 {object} ResumableResponse
//	@Failure  503 {object} ErrorResponse
//	@Router   /resumable [get]
func (s *Server) handleResumable(w http.ResponseWriter, r *http.Request) {
	entries, diags, err := s.coordinator.ListResumable(r.Context())
	if err != nil {
		status, code := storageStatus(err)
		writeError(w, status, code, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ResumableResponse{Projects: entries, Diagnostics: diags})
}

// handleSearch queries the transcript index.
//
//	@Summary  Search transcripts
//	@Tags     search
//	@Produce  json
//	@Param    q query string true "Search query"
//	@Param    project query string false "Restrict to a project hash"
//	@Param    limit query int false "Max matches"
//	@Success  200 {object} SearchResponse
//	@Failure  400 {object} ErrorResponse
//	@Failure  503 {object} ErrorResponse
//	@Router   /search [get]
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		writeError(w, http.StatusServiceUnavailable, "search_disabled", "no search index configured")
		return
	}

	opts := search.DefaultOptions()
	opts.Query = r.URL.Query().Get("q")
	if opts.Query == "" {
		writeError(w, http.StatusBadRequest, "missing_query", "q parameter is required")
		return
	}
	opts.ProjectHash = checkpoint.ProjectHash(r.URL.Query().Get("project"))
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		opts.Limit = l
	}

	results, total, err := s.index.Query(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "search_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results, Total: total})
}
