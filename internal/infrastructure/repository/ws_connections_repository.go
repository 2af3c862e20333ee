package repository

import (
	"sync"

	"mosaic_wall/internal/domain/errors"
	"mosaic_wall/internal/domain/model"

	"github.com/google/uuid"
)

type WsConnectionsRepository interface {
	Conn(connID uuid.UUID) (*model.Connection, error)
	Add(conn *model.Connection)
	Remove(connID uuid.UUID)
	// ByRole — joined connections of a room with the given role
	ByRole(roomID string, role model.Role) []*model.Connection
	// InRoom — every joined connection of a room
	InRoom(roomID string) []*model.Connection
}

type WsConnRepo struct {
	store map[uuid.UUID]*model.Connection
	mu    sync.RWMutex
}

func NewWsConnRepo() *WsConnRepo {
	return &WsConnRepo{store: make(map[uuid.UUID]*model.Connection)}
}

func (w *WsConnRepo) Conn(connID uuid.UUID) (*model.Connection, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	conn, ok := w.store[connID]
	if !ok {
		return nil, errors.ErrConnNotFound
	}

	return conn, nil
}

func (w *WsConnRepo) Add(conn *model.Connection) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.store[conn.ID] = conn
}

func (w *WsConnRepo) Remove(connID uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.store, connID)
}

func (w *WsConnRepo) ByRole(roomID string, role model.Role) []*model.Connection {
	w.mu.RLock()
	defer w.mu.RUnlock()

	conns := make([]*model.Connection, 0, len(w.store))
	for _, conn := range w.store {
		if conn.RoomID() == roomID && conn.Role() == role {
			conns = append(conns, conn)
		}
	}

	return conns
}

func (w *WsConnRepo) InRoom(roomID string) []*model.Connection {
	w.mu.RLock()
	defer w.mu.RUnlock()

	conns := make([]*model.Connection, 0, len(w.store))
	for _, conn := range w.store {
		if conn.Role() != model.RoleUnjoined && conn.RoomID() == roomID {
			conns = append(conns, conn)
		}
	}

	return conns
}
