package model

// Size — width/height pair, used for the canvas, tile viewports and media
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Region — canvas-space rectangle assigned to a tile
type Region struct {
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	RotationDegrees float64 `json:"rotationDegrees"`
}

// DefaultRegion is applied to every tile at join time.
var DefaultRegion = Region{X: 0, Y: 0, Width: 200, Height: 200, RotationDegrees: 0}

// DefaultCanvasSize is the canvas of a freshly created room.
var DefaultCanvasSize = Size{Width: 1920, Height: 1080}
