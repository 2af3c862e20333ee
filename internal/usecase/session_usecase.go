package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mosaic_wall/internal/domain/errors"
	"mosaic_wall/internal/domain/message"
	"mosaic_wall/internal/domain/model"
	"mosaic_wall/internal/domain/transform"
	"mosaic_wall/internal/infrastructure/repository"

	"github.com/google/uuid"
)

type SessionUsecase interface {
	Connect(conn *model.Connection)
	HandleMessage(ctx context.Context, conn *model.Connection, data []byte) error
	Disconnect(ctx context.Context, conn *model.Connection)
	Snapshot() model.RoomSnapshot
	PreviewTransform(tileID uuid.UUID, media model.Size) (transform.Transform, error)
	Sessions(ctx context.Context) ([]TileSession, error)
}

// SessionUC drives the per-connection protocol against one shared room.
// Every mutation and the enqueueing of its messages happen under the room's
// lock, so all connections observe events in commit order.
type SessionUC struct {
	roomID        string
	rooms         repository.RoomRepository
	conns         repository.WsConnectionsRepository
	router        *BroadcastRouter
	ledger        repository.TileLedgerRepository
	ledgerTimeout time.Duration

	locks   map[string]*sync.Mutex
	locksMu sync.Mutex
}

type SessionOptions struct {
	RoomID        string
	LedgerTimeout time.Duration
}

func NewSessionUC(
	rooms repository.RoomRepository,
	conns repository.WsConnectionsRepository,
	router *BroadcastRouter,
	ledger repository.TileLedgerRepository,
	opts SessionOptions,
) *SessionUC {
	if ledger == nil {
		ledger = repository.NoopTileLedgerRepo{}
	}
	if opts.RoomID == "" {
		opts.RoomID = "default"
	}
	if opts.LedgerTimeout <= 0 {
		opts.LedgerTimeout = 3 * time.Second
	}

	return &SessionUC{
		roomID:        opts.RoomID,
		rooms:         rooms,
		conns:         conns,
		router:        router,
		ledger:        ledger,
		ledgerTimeout: opts.LedgerTimeout,
		locks:         make(map[string]*sync.Mutex),
	}
}

// Connect — register a fresh, unjoined connection
func (s *SessionUC) Connect(conn *model.Connection) {
	s.conns.Add(conn)
	slog.Info("connection opened", "connID", conn.ID)
}

// HandleMessage — decode and apply one inbound frame. Rejected frames are
// acknowledged to the sender with an error message; the returned error is
// for logging only and never means the connection must close.
func (s *SessionUC) HandleMessage(ctx context.Context, conn *model.Connection, data []byte) error {
	msg, err := message.Decode(data)
	if err != nil {
		s.reject(conn, err)
		return err
	}

	if err := s.process(ctx, conn, msg); err != nil {
		s.reject(conn, err)
		return err
	}

	return nil
}

func (s *SessionUC) process(ctx context.Context, conn *model.Connection, msg message.Inbound) error {
	role := conn.Role()

	switch m := msg.(type) {
	case message.JoinAsTile:
		return s.joinTile(ctx, conn, m)
	case message.JoinAsDirector:
		return s.joinDirector(conn)
	}

	if role == model.RoleUnjoined {
		return fmt.Errorf("%s: %w", msg.Type(), errors.ErrNotJoined)
	}

	switch m := msg.(type) {
	case message.ReportSelfRotation:
		if role != model.RoleTile {
			return fmt.Errorf("%s from %s: %w", msg.Type(), role, errors.ErrForbidden)
		}
		s.reportSelfRotation(conn, m)
		return nil
	}

	if role != model.RoleDirector {
		return fmt.Errorf("%s from %s: %w", msg.Type(), role, errors.ErrForbidden)
	}

	switch m := msg.(type) {
	case message.SetRegion:
		s.setRegion(conn, m)
	case message.SetMedia:
		s.setMedia(conn, m)
	case message.SetPlayback:
		s.setPlayback(conn, m)
	case message.SetIdentifyMode:
		s.setIdentifyMode(conn, m)
	case message.SetCanvasSize:
		s.setCanvasSize(conn, m)
	default:
		return fmt.Errorf("%s: %w", msg.Type(), errors.ErrUnknownType)
	}

	return nil
}

func (s *SessionUC) joinTile(ctx context.Context, conn *model.Connection, m message.JoinAsTile) error {
	room := s.rooms.GetOrCreate(s.roomID)
	mu := s.lock(room.ID)

	mu.Lock()
	if err := conn.Join(model.RoleTile, room.ID); err != nil {
		mu.Unlock()
		return err
	}
	tile := room.Join(conn.ID, m.Viewport)
	snap := room.Snapshot()

	s.dispatch(room.ID, conn.ID, message.Outbound{
		Type:    message.MsgTypeRoomSnapshot,
		Payload: message.TileSnapshot{RoomState: message.NewRoomState(snap), Self: tile},
	})
	s.dispatch(room.ID, conn.ID, message.Outbound{Type: message.MsgTypeRegionChanged, Payload: tile.Region})
	s.dispatch(room.ID, uuid.Nil, message.Outbound{Type: message.MsgTypeTileJoined, Payload: message.TileJoined{Tile: tile}})
	s.dispatch(room.ID, uuid.Nil, message.Outbound{Type: message.MsgTypeTilesChanged, Payload: message.TilesChanged{Tiles: snap.Tiles}})
	mu.Unlock()

	slog.Info("tile joined", "connID", conn.ID, "ordinal", tile.Identity.Ordinal, "color", tile.Identity.ColorHex)

	ctx, cancel := context.WithTimeout(ctx, s.ledgerTimeout)
	defer cancel()
	if err := s.ledger.RecordJoin(ctx, room.ID, tile, time.Now()); err != nil {
		slog.Error("record tile join", "connID", conn.ID, "error", err)
	}

	return nil
}

func (s *SessionUC) joinDirector(conn *model.Connection) error {
	room := s.rooms.GetOrCreate(s.roomID)
	mu := s.lock(room.ID)

	mu.Lock()
	defer mu.Unlock()

	if err := conn.Join(model.RoleDirector, room.ID); err != nil {
		return err
	}
	snap := room.Snapshot()

	s.dispatch(room.ID, conn.ID, message.Outbound{
		Type:    message.MsgTypeRoomSnapshot,
		Payload: message.DirectorSnapshot{RoomState: message.NewRoomState(snap), Tiles: snap.Tiles},
	})
	slog.Info("director joined", "connID", conn.ID, "tiles", len(snap.Tiles))

	return nil
}

func (s *SessionUC) setRegion(conn *model.Connection, m message.SetRegion) {
	room := s.room(conn)
	mu := s.lock(room.ID)

	mu.Lock()
	defer mu.Unlock()

	tile, err := room.ApplyRegion(m.TileID, m.Region)
	if err != nil {
		// edit raced a disconnect
		slog.Debug("region edit dropped", "connID", conn.ID, "tileID", m.TileID, "error", err)
		return
	}

	s.dispatch(room.ID, tile.ID, message.Outbound{Type: message.MsgTypeRegionChanged, Payload: tile.Region})
	s.dispatch(room.ID, uuid.Nil, message.Outbound{Type: message.MsgTypeTilesChanged, Payload: message.TilesChanged{Tiles: room.Tiles()}})
}

func (s *SessionUC) setMedia(conn *model.Connection, m message.SetMedia) {
	room := s.room(conn)
	mu := s.lock(room.ID)

	mu.Lock()
	defer mu.Unlock()

	media := room.SetMedia(m.Locator, m.Kind)
	s.dispatch(room.ID, uuid.Nil, message.Outbound{Type: message.MsgTypeMediaChanged, Payload: media})
	slog.Info("media changed", "connID", conn.ID, "kind", media.Kind)
}

func (s *SessionUC) setPlayback(conn *model.Connection, m message.SetPlayback) {
	room := s.room(conn)
	mu := s.lock(room.ID)

	mu.Lock()
	defer mu.Unlock()

	room.SetPlayback(m.IsPlaying, m.PositionSeconds)

	payload := message.PlaybackChanged{IsPlaying: m.IsPlaying}
	if m.PositionSeconds != nil {
		pos := *m.PositionSeconds
		payload.PositionSeconds = &pos
	}
	s.dispatch(room.ID, uuid.Nil, message.Outbound{Type: message.MsgTypePlaybackChanged, Payload: payload})
}

func (s *SessionUC) setIdentifyMode(conn *model.Connection, m message.SetIdentifyMode) {
	room := s.room(conn)
	mu := s.lock(room.ID)

	mu.Lock()
	defer mu.Unlock()

	room.SetIdentifyMode(m.IdentifyMode)
	s.dispatch(room.ID, uuid.Nil, message.Outbound{
		Type:    message.MsgTypeIdentifyModeChanged,
		Payload: message.IdentifyModeChanged{IdentifyMode: m.IdentifyMode},
	})
}

func (s *SessionUC) setCanvasSize(conn *model.Connection, m message.SetCanvasSize) {
	room := s.room(conn)
	mu := s.lock(room.ID)

	mu.Lock()
	defer mu.Unlock()

	size := room.SetCanvasSize(m.Size.Width, m.Size.Height)
	s.dispatch(room.ID, uuid.Nil, message.Outbound{Type: message.MsgTypeCanvasSizeChanged, Payload: size})
}

func (s *SessionUC) reportSelfRotation(conn *model.Connection, m message.ReportSelfRotation) {
	room := s.room(conn)
	mu := s.lock(room.ID)

	mu.Lock()
	defer mu.Unlock()

	tile, err := room.ApplySelfRotation(conn.ID, m.Degrees)
	if err != nil {
		slog.Debug("self rotation dropped", "connID", conn.ID, "error", err)
		return
	}

	s.dispatch(room.ID, uuid.Nil, message.Outbound{
		Type:    message.MsgTypeTileRotationChanged,
		Payload: message.TileRotationChanged{TileID: tile.ID, Degrees: tile.SelfRotationDegrees},
	})
	s.dispatch(room.ID, uuid.Nil, message.Outbound{Type: message.MsgTypeTilesChanged, Payload: message.TilesChanged{Tiles: room.Tiles()}})
}

// Disconnect — tear down a closed connection; a tile leaves its room
func (s *SessionUC) Disconnect(ctx context.Context, conn *model.Connection) {
	conn.Close()
	s.conns.Remove(conn.ID)

	role := conn.Role()
	slog.Info("connection closed", "connID", conn.ID, "role", role)
	if role != model.RoleTile {
		return
	}

	room := s.room(conn)
	mu := s.lock(room.ID)

	mu.Lock()
	_, ok := room.Leave(conn.ID)
	if ok {
		s.dispatch(room.ID, uuid.Nil, message.Outbound{Type: message.MsgTypeTileRemoved, Payload: message.TileRemoved{TileID: conn.ID}})
		s.dispatch(room.ID, uuid.Nil, message.Outbound{Type: message.MsgTypeTilesChanged, Payload: message.TilesChanged{Tiles: room.Tiles()}})
	}
	mu.Unlock()

	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.ledgerTimeout)
	defer cancel()
	if err := s.ledger.RecordLeave(ctx, room.ID, conn.ID, time.Now()); err != nil {
		slog.Error("record tile leave", "connID", conn.ID, "error", err)
	}
}

// Snapshot — current state of the shared room
func (s *SessionUC) Snapshot() model.RoomSnapshot {
	return s.rooms.GetOrCreate(s.roomID).Snapshot()
}

// PreviewTransform — the transform tileID would apply to media of the given
// native size, against the room's current canvas
func (s *SessionUC) PreviewTransform(tileID uuid.UUID, media model.Size) (transform.Transform, error) {
	room := s.rooms.GetOrCreate(s.roomID)

	snap := room.Snapshot()
	tile, ok := room.Tile(tileID)
	if !ok {
		return transform.Transform{}, fmt.Errorf("preview %s: %w", tileID, errors.ErrUnknownTile)
	}

	return transform.Compute(snap.CanvasSize, tile.Region, media, tile.Viewport)
}

// Sessions — tile session history of the shared room from the ledger
func (s *SessionUC) Sessions(ctx context.Context) ([]TileSession, error) {
	rows, err := s.ledger.SessionsByRoom(ctx, s.roomID)
	if err != nil {
		return nil, err
	}

	sessions := make([]TileSession, 0, len(rows))
	for _, row := range rows {
		ts := TileSession{
			TileID:   row.ConnID,
			Ordinal:  row.Ordinal,
			ColorHex: row.ColorHex,
			JoinedAt: row.JoinedAt,
		}
		if row.LeftAt.Valid {
			left := row.LeftAt.Time
			ts.LeftAt = &left
		}
		sessions = append(sessions, ts)
	}

	return sessions, nil
}

// TileSession — one ledger entry as exposed over HTTP
type TileSession struct {
	TileID   uuid.UUID  `json:"tileId"`
	Ordinal  int        `json:"ordinal"`
	ColorHex string     `json:"colorHex"`
	JoinedAt time.Time  `json:"joinedAt"`
	LeftAt   *time.Time `json:"leftAt,omitempty"`
}

func (s *SessionUC) room(conn *model.Connection) *model.Room {
	roomID := conn.RoomID()
	if roomID == "" {
		roomID = s.roomID
	}

	return s.rooms.GetOrCreate(roomID)
}

func (s *SessionUC) lock(roomID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	mu, ok := s.locks[roomID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[roomID] = mu
	}

	return mu
}

func (s *SessionUC) dispatch(roomID string, target uuid.UUID, out message.Outbound) {
	if err := s.router.Dispatch(roomID, target, out); err != nil {
		slog.Warn("dispatch", "type", out.Type, "roomID", roomID, "error", err)
	}
}

func (s *SessionUC) reject(conn *model.Connection, err error) {
	code := errorCode(err)
	if uerr := s.router.Unicast(conn.ID, message.NewErrorMessage(code, err.Error())); uerr != nil {
		slog.Debug("error ack not delivered", "connID", conn.ID, "error", uerr)
	}
}

func errorCode(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrMalformedPayload):
		return message.ErrCodeMalformedPayload
	case stderrors.Is(err, errors.ErrNotJoined):
		return message.ErrCodeNotJoined
	case stderrors.Is(err, errors.ErrAlreadyJoined):
		return message.ErrCodeAlreadyJoined
	case stderrors.Is(err, errors.ErrForbidden):
		return message.ErrCodeForbidden
	default:
		return message.ErrCodeUnknownType
	}
}
