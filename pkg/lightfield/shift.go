package lightfield

import(
	"image"

	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/emath"
)

// ShiftWeight is how far (in pixels, per unit of angular distance from
// the central view) a view has to move to focus at alpha.
func ShiftWeight(alpha float64) float64 {
	return 1.0 - 1.0/alpha
}

// ViewCenter returns the angular coords of the (possibly virtual) central view
func ViewCenter(lf LightField) (float64, float64) {
	a := lf.AngularResolution()
	return float64(a.X-1) / 2.0, float64(a.Y-1) / 2.0
}

// ViewShift returns the translation that brings view (u,v) into focus at alpha.
func ViewShift(lf LightField, u, v int, alpha float64) (float64, float64) {
	cu, cv := ViewCenter(lf)
	w := ShiftWeight(alpha)
	return -(float64(u) - cu) * w, -(float64(v) - cv) * w
}

// AlignView translates one channel of a view by (dx,dy), and crops or
// pads it (centred) to the working resolution.
func AlignView(view *emath.FloatGrid, dx, dy float64, size image.Point) emath.FloatGrid {
	offX := float64(view.Dx()-size.X) / 2.0
	offY := float64(view.Dy()-size.Y) / 2.0
	m := emath.Identity().Translate(dx - offX, dy - offY)
	return view.Warp(m, size.X, size.Y)
}
