package model

import "github.com/google/uuid"

// Tile — a connected screen contributing one piece of the mosaic
type Tile struct {
	ID                  uuid.UUID `json:"id"`
	Viewport            Size      `json:"viewport"`
	Region              Region    `json:"region"`
	Identity            Identity  `json:"identity"`
	SelfRotationDegrees float64   `json:"selfRotationDegrees"`
}
