package repository

import (
	"log/slog"
	"sort"
	"sync"

	"mosaic_wall/internal/domain/model"
)

// RoomRepository — registry of live rooms. Rooms are created on first use
// and live for the whole process.
type RoomRepository interface {
	GetOrCreate(roomID string) *model.Room
	Room(roomID string) (*model.Room, bool)
	IDs() []string
}

type InMemoryRoomRepo struct {
	rooms      map[string]*model.Room
	identities *model.IdentityAllocator
	opts       model.RoomOptions
	mu         sync.RWMutex
}

// NewInMemoryRoomRepo — every room created here shares one identity allocator
func NewInMemoryRoomRepo(identities *model.IdentityAllocator, opts model.RoomOptions) *InMemoryRoomRepo {
	if identities == nil {
		identities = model.NewIdentityAllocator(nil)
	}

	return &InMemoryRoomRepo{
		rooms:      make(map[string]*model.Room),
		identities: identities,
		opts:       opts,
	}
}

func (r *InMemoryRoomRepo) GetOrCreate(roomID string) *model.Room {
	r.mu.RLock()
	room, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if ok {
		return room
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if room, ok := r.rooms[roomID]; ok {
		return room
	}
	room = model.NewRoom(roomID, r.identities, r.opts)
	r.rooms[roomID] = room
	slog.Info("room created", "roomID", roomID)

	return room
}

func (r *InMemoryRoomRepo) Room(roomID string) (*model.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	return room, ok
}

func (r *InMemoryRoomRepo) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}
