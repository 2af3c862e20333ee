package message

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"mosaic_wall/internal/domain/errors"
	"mosaic_wall/internal/domain/model"

	"github.com/google/uuid"
)

// Inbound — closed set of events a connection may send
type Inbound interface {
	Type() string
	inbound()
}

type JoinAsTile struct {
	Viewport model.Size
}

type JoinAsDirector struct{}

type SetRegion struct {
	TileID uuid.UUID
	Region model.Region
}

type SetMedia struct {
	Locator string
	Kind    model.MediaKind
}

type SetPlayback struct {
	IsPlaying       bool
	PositionSeconds *float64
}

type SetIdentifyMode struct {
	IdentifyMode bool
}

type SetCanvasSize struct {
	Size model.Size
}

type ReportSelfRotation struct {
	Degrees float64
}

func (JoinAsTile) Type() string         { return MsgTypeJoinAsTile }
func (JoinAsDirector) Type() string     { return MsgTypeJoinAsDirector }
func (SetRegion) Type() string          { return MsgTypeSetRegion }
func (SetMedia) Type() string           { return MsgTypeSetMedia }
func (SetPlayback) Type() string        { return MsgTypeSetPlayback }
func (SetIdentifyMode) Type() string    { return MsgTypeSetIdentifyMode }
func (SetCanvasSize) Type() string      { return MsgTypeSetCanvasSize }
func (ReportSelfRotation) Type() string { return MsgTypeReportSelfRotation }

func (JoinAsTile) inbound()         {}
func (JoinAsDirector) inbound()     {}
func (SetRegion) inbound()          {}
func (SetMedia) inbound()           {}
func (SetPlayback) inbound()        {}
func (SetIdentifyMode) inbound()    {}
func (SetCanvasSize) inbound()      {}
func (ReportSelfRotation) inbound() {}

// wire shapes; pointers tell a missing field from a zero one
type (
	sizeWire struct {
		Width  *float64 `json:"width"`
		Height *float64 `json:"height"`
	}
	joinAsTileWire struct {
		Viewport *sizeWire `json:"viewport"`
	}
	setRegionWire struct {
		TileID          string   `json:"tileId"`
		X               *float64 `json:"x"`
		Y               *float64 `json:"y"`
		Width           *float64 `json:"width"`
		Height          *float64 `json:"height"`
		RotationDegrees *float64 `json:"rotationDegrees"`
	}
	setMediaWire struct {
		Locator string `json:"locator"`
		Kind    string `json:"kind"`
	}
	setPlaybackWire struct {
		IsPlaying       *bool    `json:"isPlaying"`
		PositionSeconds *float64 `json:"positionSeconds"`
	}
	setIdentifyModeWire struct {
		IdentifyMode *bool `json:"identifyMode"`
	}
	reportSelfRotationWire struct {
		Degrees *float64 `json:"degrees"`
	}
)

// Decode parses one inbound frame. Unknown types wrap errors.ErrUnknownType,
// anything that does not match its schema wraps errors.ErrMalformedPayload.
func Decode(data []byte) (Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %v: %w", err, errors.ErrMalformedPayload)
	}

	switch env.Type {
	case MsgTypeJoinAsTile:
		var w joinAsTileWire
		if err := unmarshalPayload(env, &w); err != nil {
			return nil, err
		}
		if w.Viewport == nil || w.Viewport.Width == nil || w.Viewport.Height == nil {
			return nil, malformed(env.Type, "viewport width and height are required")
		}
		if *w.Viewport.Width <= 0 || *w.Viewport.Height <= 0 {
			return nil, malformed(env.Type, "viewport must have positive width and height")
		}
		return JoinAsTile{Viewport: model.Size{Width: *w.Viewport.Width, Height: *w.Viewport.Height}}, nil

	case MsgTypeJoinAsDirector:
		return JoinAsDirector{}, nil

	case MsgTypeSetRegion:
		var w setRegionWire
		if err := unmarshalPayload(env, &w); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(w.TileID)
		if err != nil {
			return nil, malformed(env.Type, "tileId is not a valid id")
		}
		if w.X == nil || w.Y == nil || w.Width == nil || w.Height == nil || w.RotationDegrees == nil {
			return nil, malformed(env.Type, "x, y, width, height and rotationDegrees are required")
		}
		return SetRegion{
			TileID: id,
			Region: model.Region{
				X:               *w.X,
				Y:               *w.Y,
				Width:           *w.Width,
				Height:          *w.Height,
				RotationDegrees: *w.RotationDegrees,
			},
		}, nil

	case MsgTypeSetMedia:
		var w setMediaWire
		if err := unmarshalPayload(env, &w); err != nil {
			return nil, err
		}
		if strings.TrimSpace(w.Locator) == "" {
			return nil, malformed(env.Type, "locator is required")
		}
		kind := model.MediaKind(w.Kind)
		if !kind.Valid() {
			return nil, malformed(env.Type, fmt.Sprintf("kind %q is not image or video", w.Kind))
		}
		return SetMedia{Locator: w.Locator, Kind: kind}, nil

	case MsgTypeSetPlayback:
		var w setPlaybackWire
		if err := unmarshalPayload(env, &w); err != nil {
			return nil, err
		}
		if w.IsPlaying == nil {
			return nil, malformed(env.Type, "isPlaying is required")
		}
		if w.PositionSeconds != nil && *w.PositionSeconds < 0 {
			return nil, malformed(env.Type, "positionSeconds must not be negative")
		}
		return SetPlayback{IsPlaying: *w.IsPlaying, PositionSeconds: w.PositionSeconds}, nil

	case MsgTypeSetIdentifyMode:
		var w setIdentifyModeWire
		if err := unmarshalPayload(env, &w); err != nil {
			return nil, err
		}
		if w.IdentifyMode == nil {
			return nil, malformed(env.Type, "identifyMode is required")
		}
		return SetIdentifyMode{IdentifyMode: *w.IdentifyMode}, nil

	case MsgTypeSetCanvasSize:
		var w sizeWire
		if err := unmarshalPayload(env, &w); err != nil {
			return nil, err
		}
		if w.Width == nil || w.Height == nil {
			return nil, malformed(env.Type, "width and height are required")
		}
		return SetCanvasSize{Size: model.Size{Width: *w.Width, Height: *w.Height}}, nil

	case MsgTypeReportSelfRotation:
		var w reportSelfRotationWire
		if err := unmarshalPayload(env, &w); err != nil {
			return nil, err
		}
		if w.Degrees == nil {
			return nil, malformed(env.Type, "degrees is required")
		}
		return ReportSelfRotation{Degrees: *w.Degrees}, nil
	}

	return nil, fmt.Errorf("message type %q: %w", env.Type, errors.ErrUnknownType)
}

func unmarshalPayload(env Envelope, v any) error {
	payload := bytes.TrimSpace(env.Payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return malformed(env.Type, "payload is required")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return malformed(env.Type, err.Error())
	}

	return nil
}

func malformed(msgType, reason string) error {
	return fmt.Errorf("%s: %s: %w", msgType, reason, errors.ErrMalformedPayload)
}
