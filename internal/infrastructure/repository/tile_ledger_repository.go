package repository

import (
	"context"
	"time"

	"mosaic_wall/internal/domain/model"
	"mosaic_wall/internal/infrastructure/repository/dbo"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// TileLedgerRepository — append-only journal of tile sessions. Write-only
// from the room's point of view: nothing here is loaded back into a room.
type TileLedgerRepository interface {
	RecordJoin(ctx context.Context, roomID string, tile model.Tile, at time.Time) error
	RecordLeave(ctx context.Context, roomID string, connID uuid.UUID, at time.Time) error
	SessionsByRoom(ctx context.Context, roomID string) ([]dbo.TileSession, error)
}

const tileLedgerSchema = `
CREATE TABLE IF NOT EXISTS tile_sessions (
	room_id         VARCHAR(255) NOT NULL,
	conn_id         UUID PRIMARY KEY,
	ordinal         INT NOT NULL,
	color_hex       VARCHAR(16) NOT NULL,
	viewport_width  DOUBLE PRECISION NOT NULL,
	viewport_height DOUBLE PRECISION NOT NULL,
	joined_at       TIMESTAMPTZ NOT NULL,
	left_at         TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS tile_sessions_room_idx ON tile_sessions (room_id, ordinal);
`

type TileLedgerPostgresRepo struct {
	db *sqlx.DB
}

func NewTileLedgerPostgresRepo(db *sqlx.DB) *TileLedgerPostgresRepo {
	return &TileLedgerPostgresRepo{db: db}
}

// EnsureSchema — create the ledger table if it does not exist
func (r *TileLedgerPostgresRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, tileLedgerSchema)
	return err
}

func (r *TileLedgerPostgresRepo) RecordJoin(ctx context.Context, roomID string, tile model.Tile, at time.Time) error {
	row := dbo.NewTileSessionFromDomain(roomID, tile, at)

	_, err := r.db.NamedExecContext(
		ctx, `INSERT INTO tile_sessions
			(room_id, conn_id, ordinal, color_hex, viewport_width, viewport_height, joined_at)
			VALUES (:room_id, :conn_id, :ordinal, :color_hex, :viewport_width, :viewport_height, :joined_at)
			ON CONFLICT (conn_id) DO NOTHING`, row,
	)
	return err
}

func (r *TileLedgerPostgresRepo) RecordLeave(ctx context.Context, roomID string, connID uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(
		ctx, `UPDATE tile_sessions SET left_at = $1 WHERE room_id = $2 AND conn_id = $3 AND left_at IS NULL`,
		at, roomID, connID,
	)
	return err
}

func (r *TileLedgerPostgresRepo) SessionsByRoom(ctx context.Context, roomID string) ([]dbo.TileSession, error) {
	var sessions []dbo.TileSession
	err := r.db.SelectContext(
		ctx, &sessions, `SELECT room_id, conn_id, ordinal, color_hex, viewport_width, viewport_height, joined_at, left_at
			FROM tile_sessions WHERE room_id = $1 ORDER BY ordinal`, roomID,
	)
	return sessions, err
}

// NoopTileLedgerRepo is used when no ledger database is configured.
type NoopTileLedgerRepo struct{}

func (NoopTileLedgerRepo) RecordJoin(context.Context, string, model.Tile, time.Time) error {
	return nil
}

func (NoopTileLedgerRepo) RecordLeave(context.Context, string, uuid.UUID, time.Time) error {
	return nil
}

func (NoopTileLedgerRepo) SessionsByRoom(context.Context, string) ([]dbo.TileSession, error) {
	return nil, nil
}
