package model

import (
	"fmt"
	"log/slog"
	"sync"

	"mosaic_wall/internal/domain/errors"

	"github.com/google/uuid"
)

// Role — what a connection is to its room, fixed by the first join event
type Role int

const (
	RoleUnjoined Role = iota
	RoleTile
	RoleDirector
)

func (r Role) String() string {
	switch r {
	case RoleTile:
		return "tile"
	case RoleDirector:
		return "director"
	default:
		return "unjoined"
	}
}

// Connection — one transport connection and its bounded outbound queue.
// Send never blocks: a connection that cannot keep up is closed.
type Connection struct {
	ID uuid.UUID

	roomID string
	role   Role
	outbox chan []byte
	done   chan struct{}

	closeOnce sync.Once
	mu        sync.RWMutex
}

// NewConnection — create a connection with an outbox of outboxSize messages
func NewConnection(outboxSize int) *Connection {
	if outboxSize <= 0 {
		outboxSize = 1
	}

	return &Connection{
		ID:     uuid.New(),
		outbox: make(chan []byte, outboxSize),
		done:   make(chan struct{}),
	}
}

// Join — move out of the unjoined state; a role is assigned only once
func (c *Connection) Join(role Role, roomID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.role != RoleUnjoined {
		return fmt.Errorf("join %s as %s: %w", c.ID, role, errors.ErrAlreadyJoined)
	}
	c.role = role
	c.roomID = roomID

	return nil
}

// Role — current role
func (c *Connection) Role() Role {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.role
}

// RoomID — room the connection joined, empty while unjoined
func (c *Connection) RoomID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.roomID
}

// Send — queue an encoded message without blocking
func (c *Connection) Send(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.outbox <- data:
		return true
	default:
		slog.Warn("outbox full, closing connection", "connID", c.ID, "role", c.Role())
		c.Close()
		return false
	}
}

// Outbox — queued messages for the writer
func (c *Connection) Outbox() <-chan []byte {
	return c.outbox
}

// Done — closed once the connection is closed
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Close — stop accepting messages; safe to call more than once
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
