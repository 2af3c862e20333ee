package model

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"mosaic_wall/internal/domain/errors"

	"github.com/google/uuid"
)

// MediaKind — kind of content shown across the mosaic
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Valid reports whether k is one of the known kinds.
func (k MediaKind) Valid() bool {
	return k == MediaImage || k == MediaVideo
}

// Media — reference to the content currently on the wall
type Media struct {
	Locator string    `json:"locator"`
	Kind    MediaKind `json:"kind"`
}

// Playback — video transport state, meaningless for images
type Playback struct {
	IsPlaying       bool    `json:"isPlaying"`
	PositionSeconds float64 `json:"positionSeconds"`
}

// RoomSnapshot — immutable copy of the room taken after a mutation commits
type RoomSnapshot struct {
	ID           string   `json:"id"`
	Media        *Media   `json:"media"`
	Playback     Playback `json:"playback"`
	IdentifyMode bool     `json:"identifyMode"`
	CanvasSize   Size     `json:"canvasSize"`
	Tiles        []Tile   `json:"tiles"`
}

// Room — authoritative state of one mosaic
type Room struct {
	ID string

	media        *Media
	playback     Playback
	identifyMode bool
	canvasSize   Size

	// Подключенные тайлы
	tiles      map[uuid.UUID]*Tile
	identities *IdentityAllocator
	mu         sync.RWMutex
}

// RoomOptions — initial values for a new room
type RoomOptions struct {
	CanvasSize   Size
	IdentifyMode bool
}

// NewRoom — create a new room drawing tile identities from identities
func NewRoom(id string, identities *IdentityAllocator, opts RoomOptions) *Room {
	if identities == nil {
		identities = NewIdentityAllocator(nil)
	}

	return &Room{
		ID:           id,
		identifyMode: opts.IdentifyMode,
		canvasSize:   opts.CanvasSize,
		tiles:        make(map[uuid.UUID]*Tile),
		identities:   identities,
	}
}

// Join — register a tile for connID with a fresh identity and the default region
func (r *Room) Join(connID uuid.UUID, viewport Size) Tile {
	r.mu.Lock()
	defer r.mu.Unlock()

	tile := &Tile{
		ID:       connID,
		Viewport: viewport,
		Region:   DefaultRegion,
		Identity: r.identities.Allocate(),
	}
	r.tiles[connID] = tile
	slog.Info("tile joined room", "tileID", connID, "roomID", r.ID, "ordinal", tile.Identity.Ordinal)

	return *tile
}

// ApplyRegion — replace the region of a tile
func (r *Room) ApplyRegion(connID uuid.UUID, region Region) (Tile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tile, ok := r.tiles[connID]
	if !ok {
		return Tile{}, fmt.Errorf("apply region to %s: %w", connID, errors.ErrUnknownTile)
	}
	tile.Region = region

	return *tile, nil
}

// ApplySelfRotation — record the physical orientation a tile reports
func (r *Room) ApplySelfRotation(connID uuid.UUID, degrees float64) (Tile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tile, ok := r.tiles[connID]
	if !ok {
		return Tile{}, fmt.Errorf("apply self rotation to %s: %w", connID, errors.ErrUnknownTile)
	}
	tile.SelfRotationDegrees = degrees

	return *tile, nil
}

// SetMedia — replace the media and rewind playback
func (r *Room) SetMedia(locator string, kind MediaKind) Media {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.media = &Media{Locator: locator, Kind: kind}
	r.playback = Playback{}

	return *r.media
}

// SetPlayback — update play state; position is kept when positionSeconds is nil
func (r *Room) SetPlayback(isPlaying bool, positionSeconds *float64) Playback {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.playback.IsPlaying = isPlaying
	if positionSeconds != nil {
		r.playback.PositionSeconds = *positionSeconds
	}

	return r.playback
}

// SetIdentifyMode — toggle identify mode
func (r *Room) SetIdentifyMode(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.identifyMode = on
}

// SetCanvasSize — replace the canvas coordinate space
func (r *Room) SetCanvasSize(width, height float64) Size {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.canvasSize = Size{Width: width, Height: height}

	return r.canvasSize
}

// Leave — remove the tile of connID, if any
func (r *Room) Leave(connID uuid.UUID) (Tile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tile, ok := r.tiles[connID]
	if !ok {
		return Tile{}, false
	}
	delete(r.tiles, connID)
	slog.Info("tile left room", "tileID", connID, "roomID", r.ID)

	return *tile, true
}

// Tile — get a copy of one tile
func (r *Room) Tile(connID uuid.UUID) (Tile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tile, ok := r.tiles[connID]
	if !ok {
		return Tile{}, false
	}

	return *tile, true
}

// Tiles — get copies of all tiles ordered by ordinal
func (r *Room) Tiles() []Tile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.tilesLocked()
}

// Snapshot — get a copy of the whole room
func (r *Room) Snapshot() RoomSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := RoomSnapshot{
		ID:           r.ID,
		Playback:     r.playback,
		IdentifyMode: r.identifyMode,
		CanvasSize:   r.canvasSize,
		Tiles:        r.tilesLocked(),
	}
	if r.media != nil {
		m := *r.media
		snap.Media = &m
	}

	return snap
}

func (r *Room) tilesLocked() []Tile {
	tiles := make([]Tile, 0, len(r.tiles))
	for _, tile := range r.tiles {
		tiles = append(tiles, *tile)
	}
	sort.Slice(tiles, func(i, j int) bool {
		return tiles[i].Identity.Ordinal < tiles[j].Identity.Ordinal
	})

	return tiles
}
