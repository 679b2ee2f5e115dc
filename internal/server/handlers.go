package server

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/jamm-labs/jamm/internal/formatter"
	"github.com/jamm-labs/jamm/internal/models"
	"github.com/jamm-labs/jamm/internal/services"
	"github.com/jamm-labs/jamm/internal/shared"
	"github.com/jamm-labs/jamm/internal/smart"
)

// RunRecorder records generation runs for the history log. Recording is
// best-effort; a failed write never fails the request.
type RunRecorder interface {
	Create(run *models.Run) error
}

// SmartHandler serves the smart playlist JSON API.
//
// Routes:
//   - POST /api/smart/preview: evaluate rules and return preview rows
//   - POST /api/smart/playlist: generate and create the playlist
//   - GET/DELETE /api/playlist?playlistId=: detail / delete
//   - PUT /api/playlist/restore?playlistId=: restore a deleted playlist
type SmartHandler struct {
	catalog  services.Catalog
	enricher *smart.Enricher
	runs     RunRecorder
	logger   *log.Logger
	cfg      shared.SmartConfig
}

// NewSmartHandler creates a SmartHandler. runs may be nil to disable
// history recording.
func NewSmartHandler(catalog services.Catalog, enricher *smart.Enricher, runs RunRecorder, logger *log.Logger, cfg shared.SmartConfig) *SmartHandler {
	return &SmartHandler{
		catalog:  catalog,
		enricher: enricher,
		runs:     runs,
		logger:   logger,
		cfg:      cfg,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *SmartHandler) Routes() []string {
	return []string{
		"/api/smart/preview",
		"/api/smart/playlist",
		"/api/playlist",
		"/api/playlist/restore",
	}
}

func (h *SmartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/smart/preview" && r.Method == http.MethodPost:
		h.handlePreview(w, r)
	case r.URL.Path == "/api/smart/playlist" && r.Method == http.MethodPost:
		h.handleGenerate(w, r)
	case r.URL.Path == "/api/playlist" && r.Method == http.MethodGet:
		h.handlePlaylistDetail(w, r)
	case r.URL.Path == "/api/playlist" && r.Method == http.MethodDelete:
		h.handlePlaylistDelete(w, r)
	case r.URL.Path == "/api/playlist/restore" && r.Method == http.MethodPut:
		h.handlePlaylistRestore(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *SmartHandler) generator() *smart.Generator {
	var writer smart.PlaylistWriter
	if h.catalog != nil {
		writer = h.catalog
	}
	return smart.NewGenerator(smart.GeneratorOpts{
		Source:       &services.SavedTracksSource{Catalog: h.catalog},
		Writer:       writer,
		Enricher:     h.enricher,
		Logger:       h.logger,
		PageSize:     h.cfg.PageSize,
		Workers:      h.cfg.ProbeWorkers,
		PreviewLimit: h.cfg.PreviewLimit,
	})
}

func (h *SmartHandler) artOptions() formatter.Options {
	return formatter.Options{
		MinArtPixels:   h.cfg.MinArtPixels,
		DefaultArtPath: h.cfg.DefaultArtPath,
	}
}

// recordRun persists a history entry, logging failures instead of
// surfacing them.
func (h *SmartHandler) recordRun(run *models.Run) {
	if h.runs == nil {
		return
	}
	if err := h.runs.Create(run); err != nil && h.logger != nil {
		h.logger.Warn("failed to record run", "error", err)
	}
}

// handlePreview evaluates the submitted rules and returns display rows.
// An empty result is a valid 200 response, distinct from a retrieval
// failure.
func (h *SmartHandler) handlePreview(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form body")
		return
	}

	req := smart.ParseRequest(r.PostForm)

	tracks, err := h.generator().Preview(r.Context(), req, nil)
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	totalDuration := 0
	for _, t := range tracks {
		totalDuration += t.DurationMS
	}
	h.recordRun(&models.Run{
		PlaylistName: req.Name,
		RuleSummary:  smart.SummarizeRules(req.Rules),
		TrackCount:   len(tracks),
		DurationMS:   totalDuration,
		PreviewOnly:  true,
	})

	rows := formatter.BuildPreview(tracks, h.artOptions())
	writeJSON(w, http.StatusOK, rows)
}

type generateResponse struct {
	Playlist     *models.Playlist `json:"playlist"`
	TrackCount   int              `json:"track_count"`
	MatchedCount int              `json:"matched_count"`
	DurationMS   int              `json:"duration_ms"`
}

// handleGenerate evaluates the submitted rules, creates the playlist,
// and adds the final track list. Zero matches creates nothing and
// returns a null playlist.
func (h *SmartHandler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form body")
		return
	}

	req := smart.ParseRequest(r.PostForm)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "playlist name is required")
		return
	}

	result, err := h.generator().Generate(r.Context(), req, nil)
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	run := &models.Run{
		PlaylistName: req.Name,
		RuleSummary:  smart.SummarizeRules(req.Rules),
		TrackCount:   len(result.Tracks),
		DurationMS:   result.TotalDurationMS,
	}
	if result.Playlist != nil {
		run.PlaylistID = result.Playlist.ID
	} else {
		run.PreviewOnly = true
	}
	h.recordRun(run)

	writeJSON(w, http.StatusCreated, generateResponse{
		Playlist:     result.Playlist,
		TrackCount:   len(result.Tracks),
		MatchedCount: result.MatchedCount,
		DurationMS:   result.TotalDurationMS,
	})
}

func (h *SmartHandler) handlePlaylistDetail(w http.ResponseWriter, r *http.Request) {
	playlistID := r.URL.Query().Get("playlistId")
	if playlistID == "" {
		writeError(w, http.StatusBadRequest, "playlistId is required")
		return
	}

	detail, err := h.catalog.Playlist(r.Context(), playlistID)
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	if h.enricher != nil {
		h.enricher.EnrichImages(r.Context(), detail.Images)
	}

	writeJSON(w, http.StatusOK, detail)
}

func (h *SmartHandler) handlePlaylistDelete(w http.ResponseWriter, r *http.Request) {
	playlistID := r.URL.Query().Get("playlistId")
	if playlistID == "" {
		writeError(w, http.StatusBadRequest, "playlistId is required")
		return
	}

	if err := h.catalog.DeletePlaylist(r.Context(), playlistID); err != nil {
		writeCatalogError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "playlistId": playlistID})
}

func (h *SmartHandler) handlePlaylistRestore(w http.ResponseWriter, r *http.Request) {
	playlistID := r.URL.Query().Get("playlistId")
	if playlistID == "" {
		writeError(w, http.StatusBadRequest, "playlistId is required")
		return
	}

	if err := h.catalog.RestorePlaylist(r.Context(), playlistID); err != nil {
		writeCatalogError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "restored", "playlistId": playlistID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeGenerationError maps engine failures to status codes. A failed
// retrieval is an upstream fault, not a client or server bug.
func writeGenerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrRetrievalFailed):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, shared.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, shared.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrPlaylistNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, shared.ErrAPIRequest):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
