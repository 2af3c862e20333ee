package model

import "sync"

// Palette — high-contrast colors shown by tiles in identify mode
var Palette = []string{
	"#00FF00",
	"#FF1493",
	"#00FFFF",
	"#FFD700",
	"#FF4500",
	"#8A2BE2",
	"#FF00FF",
	"#00CED1",
	"#FF6347",
	"#32CD32",
	"#FF69B4",
	"#1E90FF",
}

// Identity — badge a tile shows in identify mode
type Identity struct {
	ColorHex string `json:"colorHex"`
	Ordinal  int    `json:"ordinal"`
}

// IdentityAllocator hands out strictly increasing ordinals with a cycled
// palette color. Ordinals are never reclaimed.
type IdentityAllocator struct {
	palette []string
	next    int
	mu      sync.Mutex
}

// NewIdentityAllocator — create an allocator over palette, falling back to Palette when empty
func NewIdentityAllocator(palette []string) *IdentityAllocator {
	if len(palette) == 0 {
		palette = Palette
	}
	p := make([]string, len(palette))
	copy(p, palette)

	return &IdentityAllocator{palette: p, next: 1}
}

// Allocate — take the next identity
func (a *IdentityAllocator) Allocate() Identity {
	a.mu.Lock()
	defer a.mu.Unlock()

	ordinal := a.next
	a.next++

	return Identity{
		ColorHex: a.palette[(ordinal-1)%len(a.palette)],
		Ordinal:  ordinal,
	}
}
