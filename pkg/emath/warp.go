package emath

import(
	"log"
	"math"
)

// Warp maps the grid through `m`, which takes source coords to
// destination coords (like draw.Transformer), and returns a w x h
// grid. Samples are bilinearly interpolated; coords that land outside
// the source replicate its edge pixels.
func (fg *FloatGrid)Warp(m Aff3, w, h int) FloatGrid {
	inv, err := m.Invert()
	if err != nil {
		log.Panicf("FloatGrid.Warp: %v", err)
	}

	out := NewFloatGrid(w, h)
	for y:=0; y<h; y++ {
		for x:=0; x<w; x++ {
			sx, sy := inv.Apply(float64(x), float64(y))
			out.values[y*w + x] = fg.Bilinear(sx, sy)
		}
	}
	return out
}

// Translate is Warp for a pure translation by (tx,ty). The inverse of a
// translation is exact, so sample positions are exactly (x-tx, y-ty).
func (fg *FloatGrid)Translate(tx, ty float64, w, h int) FloatGrid {
	return fg.Warp(Identity().Translate(tx, ty), w, h)
}

// Bilinear samples the grid at a fractional position. Interpolating
// between equal neighbours returns that value exactly.
func (fg *FloatGrid)Bilinear(sx, sy float64) float64 {
	width, height := fg.Dx(), fg.Dy()

	x0f, y0f := math.Floor(sx), math.Floor(sy)
	fx, fy := sx - x0f, sy - y0f
	x0 := clampIndex(int(x0f), width)
	x1 := clampIndex(int(x0f)+1, width)
	y0 := clampIndex(int(y0f), height)
	y1 := clampIndex(int(y0f)+1, height)

	a := fg.values[y0*width + x0]
	b := fg.values[y0*width + x1]
	c := fg.values[y1*width + x0]
	d := fg.values[y1*width + x1]

	top := a + fx*(b-a)
	bot := c + fx*(d-c)
	return top + fy*(bot-top)
}
