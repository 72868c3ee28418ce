package drive

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
)

type Handler struct {
	source        Source
	ingestService *IngestService
	watcher       *Watcher
	defaultUserID int64
	defaultFolder string
}

func NewHandler(source Source, ingestService *IngestService, watcher *Watcher, defaultUserID int64, defaultFolder string) *Handler {
	return &Handler{
		source:        source,
		ingestService: ingestService,
		watcher:       watcher,
		defaultUserID: defaultUserID,
		defaultFolder: defaultFolder,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/drive").Subrouter()
	api.HandleFunc("/files", h.ListFiles).Methods(http.MethodGet)
	api.HandleFunc("/ingest", h.IngestFile).Methods(http.MethodPost)
	api.HandleFunc("/sync", h.Sync).Methods(http.MethodPost)
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	folderID := query.Get("folder_id")

	if path := query.Get("path"); path != "" {
		id, err := h.source.FindFolderByPath(r.Context(), path)
		if err != nil {
			writeError(w, err)
			return
		}
		folderID = id
	}

	files, err := h.source.ListFiles(r.Context(), folderID)
	if err != nil {
		writeError(w, err)
		return
	}
	if files == nil {
		files = make([]*File, 0)
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files, "count": len(files)})
}

func (h *Handler) IngestFile(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	query := r.URL.Query()
	fileID := query.Get("file_id")
	if fileID == "" {
		writeError(w, domain.InvalidInput("file_id", "is required"))
		return
	}
	name := query.Get("name")
	if name == "" {
		name = fileID + ".csv"
	}

	result, err := h.ingestService.IngestFile(r.Context(), userID, &File{ID: fileID, Name: name})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		path = h.defaultFolder
	}

	results, err := h.watcher.Sync(r.Context(), userID, path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results, "count": len(results)})
}

func (h *Handler) userID(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		return h.defaultUserID, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.InvalidInput("user_id", "must be a positive integer, got %q", raw)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("drive: encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, ErrUnsupportedFile):
		status = http.StatusBadRequest
	case errors.Is(err, ErrFolderNotFound), errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	default:
		log.Error().Err(err).Msg("drive: request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
