package api

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"

	"mosaic_wall/internal/domain/errors"
	"mosaic_wall/internal/domain/model"
	"mosaic_wall/internal/domain/transform"
	"mosaic_wall/internal/usecase"

	"github.com/google/uuid"
)

type RoomHandler struct {
	sessions usecase.SessionUsecase
}

func NewRoomHandler(sessions usecase.SessionUsecase) *RoomHandler {
	return &RoomHandler{sessions: sessions}
}

// Snapshot — GET /api/room, director view of the room
func (rh *RoomHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rh.sessions.Snapshot())
}

// Sessions — GET /api/room/sessions, tile session history from the ledger
func (rh *RoomHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := rh.sessions.Sessions(r.Context())
	if err != nil {
		slog.Error("load tile sessions", "error", err)
		http.Error(w, "load tile sessions", http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []usecase.TileSession{}
	}

	writeJSON(w, http.StatusOK, sessions)
}

type transformResponse struct {
	transform.Transform
	CSS string `json:"css"`
}

// Transform — GET /api/tiles/{id}/transform?mediaWidth=&mediaHeight=
func (rh *RoomHandler) Transform(w http.ResponseWriter, r *http.Request) {
	tileID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid tile id", http.StatusBadRequest)
		return
	}

	media, err := parseMediaSize(r)
	if err != nil {
		http.Error(w, "mediaWidth and mediaHeight must be numbers", http.StatusBadRequest)
		return
	}

	t, err := rh.sessions.PreviewTransform(tileID, media)
	switch {
	case stderrors.Is(err, errors.ErrUnknownTile):
		http.Error(w, "tile not found", http.StatusNotFound)
		return
	case stderrors.Is(err, errors.ErrUndefinedTransform):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"code":    "undefined_transform",
			"message": err.Error(),
		})
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, transformResponse{Transform: t, CSS: t.CSS()})
}

// Health — GET /healthz
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseMediaSize(r *http.Request) (model.Size, error) {
	q := r.URL.Query()

	// an absent size means the tile has not loaded the media yet
	var size model.Size
	if v := q.Get("mediaWidth"); v != "" {
		width, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return model.Size{}, err
		}
		size.Width = width
	}
	if v := q.Get("mediaHeight"); v != "" {
		height, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return model.Size{}, err
		}
		size.Height = height
	}

	return size, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
