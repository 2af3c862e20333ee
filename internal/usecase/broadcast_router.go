package usecase

import (
	"fmt"
	"log/slog"

	"mosaic_wall/internal/domain/errors"
	"mosaic_wall/internal/domain/message"
	"mosaic_wall/internal/domain/model"
	"mosaic_wall/internal/infrastructure/repository"

	"github.com/google/uuid"
)

// Fanout — who receives an outbound event
type Fanout int

const (
	FanoutUnicast Fanout = iota
	FanoutDirectors
	FanoutRoom
)

func (f Fanout) String() string {
	switch f {
	case FanoutUnicast:
		return "unicast"
	case FanoutDirectors:
		return "directors"
	case FanoutRoom:
		return "room"
	default:
		return "unknown"
	}
}

var fanouts = map[string]Fanout{
	message.MsgTypeRoomSnapshot:        FanoutUnicast,
	message.MsgTypeRegionChanged:       FanoutUnicast,
	message.MsgTypeError:               FanoutUnicast,
	message.MsgTypeTilesChanged:        FanoutDirectors,
	message.MsgTypeTileJoined:          FanoutDirectors,
	message.MsgTypeTileRotationChanged: FanoutDirectors,
	message.MsgTypeTileRemoved:         FanoutDirectors,
	message.MsgTypeMediaChanged:        FanoutRoom,
	message.MsgTypePlaybackChanged:     FanoutRoom,
	message.MsgTypeIdentifyModeChanged: FanoutRoom,
	message.MsgTypeCanvasSizeChanged:   FanoutRoom,
}

// FanoutOf — the fixed fan-out rule of an outbound event type
func FanoutOf(msgType string) (Fanout, bool) {
	f, ok := fanouts[msgType]
	return f, ok
}

// BroadcastRouter delivers already-derived payloads. It never consults room
// state; recipients come from the connection registry only.
type BroadcastRouter struct {
	conns repository.WsConnectionsRepository
}

func NewBroadcastRouter(conns repository.WsConnectionsRepository) *BroadcastRouter {
	return &BroadcastRouter{conns: conns}
}

// Dispatch — encode out once and hand it to every recipient its type
// fans out to. target is used for unicast events only.
func (b *BroadcastRouter) Dispatch(roomID string, target uuid.UUID, out message.Outbound) error {
	fanout, ok := FanoutOf(out.Type)
	if !ok {
		return fmt.Errorf("dispatch %q: %w", out.Type, errors.ErrUnknownType)
	}

	data, err := out.Encode()
	if err != nil {
		return fmt.Errorf("encode %q: %w", out.Type, err)
	}

	var recipients []*model.Connection
	switch fanout {
	case FanoutUnicast:
		conn, err := b.conns.Conn(target)
		if err != nil {
			return fmt.Errorf("unicast %q to %s: %w", out.Type, target, err)
		}
		recipients = []*model.Connection{conn}
	case FanoutDirectors:
		recipients = b.conns.ByRole(roomID, model.RoleDirector)
	case FanoutRoom:
		recipients = b.conns.InRoom(roomID)
	}

	for _, conn := range recipients {
		if !conn.Send(data) {
			slog.Debug("message not delivered", "type", out.Type, "connID", conn.ID)
		}
	}

	return nil
}

// Unicast — Dispatch restricted to unicast event types
func (b *BroadcastRouter) Unicast(target uuid.UUID, out message.Outbound) error {
	if f, _ := FanoutOf(out.Type); f != FanoutUnicast {
		return fmt.Errorf("unicast %q: %w", out.Type, errors.ErrWrongFanout)
	}

	return b.Dispatch("", target, out)
}
