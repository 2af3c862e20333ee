package dbo

import (
	"database/sql"
	"time"

	"mosaic_wall/internal/domain/model"

	"github.com/google/uuid"
)

type TileSession struct {
	RoomID         string       `db:"room_id"`
	ConnID         uuid.UUID    `db:"conn_id"`
	Ordinal        int          `db:"ordinal"`
	ColorHex       string       `db:"color_hex"`
	ViewportWidth  float64      `db:"viewport_width"`
	ViewportHeight float64      `db:"viewport_height"`
	JoinedAt       time.Time    `db:"joined_at"`
	LeftAt         sql.NullTime `db:"left_at"`
}

func NewTileSessionFromDomain(roomID string, tile model.Tile, joinedAt time.Time) *TileSession {
	return &TileSession{
		RoomID:         roomID,
		ConnID:         tile.ID,
		Ordinal:        tile.Identity.Ordinal,
		ColorHex:       tile.Identity.ColorHex,
		ViewportWidth:  tile.Viewport.Width,
		ViewportHeight: tile.Viewport.Height,
		JoinedAt:       joinedAt,
	}
}
