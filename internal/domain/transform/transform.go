// Package transform maps a tile's canvas-space region onto the media element
// the tile renders, using cover (crop-to-fill) scaling.
package transform

import (
	"fmt"
	"math"
	"strconv"

	"mosaic_wall/internal/domain/errors"
	"mosaic_wall/internal/domain/model"
)

// Transform — what a tile applies to its full-size media element
type Transform struct {
	Scale           float64      `json:"scale"`
	TranslateX      float64      `json:"translateX"`
	TranslateY      float64      `json:"translateY"`
	RotationDegrees float64      `json:"rotationDegrees"`
	MediaRegion     model.Region `json:"mediaRegion"`
}

// Compute maps region (in canvas coordinates) into native media pixels and
// returns the uniform scale and translation that make it cover viewport,
// centered. The tile counter-rotates by the region's rotation.
//
// Unknown media size, a non-positive canvas, region or viewport, or any
// non-finite intermediate yields ErrUndefinedTransform.
func Compute(canvas model.Size, region model.Region, media model.Size, viewport model.Size) (Transform, error) {
	if !positive(media) {
		return Transform{}, fmt.Errorf("media size %vx%v unknown: %w", media.Width, media.Height, errors.ErrUndefinedTransform)
	}
	if !positive(canvas) {
		return Transform{}, fmt.Errorf("canvas size %vx%v: %w", canvas.Width, canvas.Height, errors.ErrUndefinedTransform)
	}
	if !positive(viewport) {
		return Transform{}, fmt.Errorf("viewport %vx%v: %w", viewport.Width, viewport.Height, errors.ErrUndefinedTransform)
	}
	if !(region.Width > 0) || !(region.Height > 0) {
		return Transform{}, fmt.Errorf("region %vx%v has no area: %w", region.Width, region.Height, errors.ErrUndefinedTransform)
	}

	sx := media.Width / canvas.Width
	sy := media.Height / canvas.Height

	mr := model.Region{
		X:               region.X * sx,
		Y:               region.Y * sy,
		Width:           region.Width * sx,
		Height:          region.Height * sy,
		RotationDegrees: region.RotationDegrees,
	}

	scale := math.Max(viewport.Width/mr.Width, viewport.Height/mr.Height)

	cx := mr.X + mr.Width/2
	cy := mr.Y + mr.Height/2

	t := Transform{
		Scale:           scale,
		TranslateX:      viewport.Width/2 - cx*scale,
		TranslateY:      viewport.Height/2 - cy*scale,
		RotationDegrees: -region.RotationDegrees,
		MediaRegion:     mr,
	}
	// -0 would otherwise leak into the CSS string
	if t.RotationDegrees == 0 {
		t.RotationDegrees = 0
	}

	for _, v := range []float64{t.Scale, t.TranslateX, t.TranslateY, t.RotationDegrees, mr.X, mr.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Transform{}, fmt.Errorf("non-finite result: %w", errors.ErrUndefinedTransform)
		}
	}

	return t, nil
}

// CSS renders t as a CSS transform value, to be used with
// transform-origin "center center".
func (t Transform) CSS() string {
	return "translate(" + num(t.TranslateX) + "px, " + num(t.TranslateY) + "px) " +
		"scale(" + num(t.Scale) + ") " +
		"rotate(" + num(t.RotationDegrees) + "deg)"
}

func positive(s model.Size) bool {
	return s.Width > 0 && s.Height > 0 && !math.IsInf(s.Width, 0) && !math.IsInf(s.Height, 0)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
