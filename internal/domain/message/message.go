package message

import (
	"encoding/json"

	"mosaic_wall/internal/domain/model"

	"github.com/google/uuid"
)

// Envelope — wire frame for every message in both directions
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Outbound — server event before encoding
type Outbound struct {
	Type    string
	Payload any
}

// Encode — marshal o into an envelope
func (o Outbound) Encode() ([]byte, error) {
	payload, err := json.Marshal(o.Payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Envelope{Type: o.Type, Payload: payload})
}

// RoomState — fields shared by both snapshot views
type RoomState struct {
	Media        *model.Media   `json:"media"`
	Playback     model.Playback `json:"playback"`
	IdentifyMode bool           `json:"identifyMode"`
	CanvasSize   model.Size     `json:"canvasSize"`
}

// TileSnapshot — room-snapshot sent to a tile that just joined
type TileSnapshot struct {
	RoomState
	Self model.Tile `json:"self"`
}

// DirectorSnapshot — room-snapshot sent to a director
type DirectorSnapshot struct {
	RoomState
	Tiles []model.Tile `json:"tiles"`
}

type TilesChanged struct {
	Tiles []model.Tile `json:"tiles"`
}

type TileJoined struct {
	Tile model.Tile `json:"tile"`
}

// PlaybackChanged — echoes what the director sent; no position means "do not seek"
type PlaybackChanged struct {
	IsPlaying       bool     `json:"isPlaying"`
	PositionSeconds *float64 `json:"positionSeconds,omitempty"`
}

type IdentifyModeChanged struct {
	IdentifyMode bool `json:"identifyMode"`
}

type TileRotationChanged struct {
	TileID  uuid.UUID `json:"tileId"`
	Degrees float64   `json:"degrees"`
}

type TileRemoved struct {
	TileID uuid.UUID `json:"tileId"`
}

// ErrorPayload — negative acknowledgement of a single inbound message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorMessage(code, message string) Outbound {
	return Outbound{Type: MsgTypeError, Payload: ErrorPayload{Code: code, Message: message}}
}

// NewRoomState — project a room snapshot into the shared snapshot fields
func NewRoomState(snap model.RoomSnapshot) RoomState {
	return RoomState{
		Media:        snap.Media,
		Playback:     snap.Playback,
		IdentifyMode: snap.IdentifyMode,
		CanvasSize:   snap.CanvasSize,
	}
}
