package lightfield

import(
	"image"
	"math"
	"math/rand"

	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/emath"
)

// Synthetic light fields, for tests and for exercising the pipeline
// without a camera.

// NewConstant returns a light field where every view is a single colour.
func NewConstant(meta Metadata, size image.Point, col emath.Vec3) *Picture {
	p := NewPicture(meta, size)
	for v:=0; v<meta.AngularHeight; v++ {
		for u:=0; u<meta.AngularWidth; u++ {
			p.mustSetView(u, v, emath.NewFilledColorGrid(size.X, size.Y, col))
		}
	}
	return p
}

// NewTexturedPlane returns a light field of a fronto-parallel plane
// covered in random texture, placed so that every view lines up exactly
// (and the refocused image is sharpest) at focus parameter alpha0.
func NewTexturedPlane(meta Metadata, size image.Point, alpha0 float64, seed int64) *Picture {
	rnd := rand.New(rand.NewSource(seed))
	w0 := ShiftWeight(alpha0)

	// The texture is bigger than a view, so shifted views see real texture at their edges
	cu, cv := float64(meta.AngularWidth-1)/2.0, float64(meta.AngularHeight-1)/2.0
	margin := int(math.Ceil(math.Abs(w0)*math.Max(cu, cv))) + 1
	tex := emath.NewColorGrid(size.X + 2*margin, size.Y + 2*margin)
	for y:=0; y<tex.Dy(); y++ {
		for x:=0; x<tex.Dx(); x++ {
			tex.Set(x, y, emath.Vec3{rnd.Float64(), rnd.Float64(), rnd.Float64()})
		}
	}

	p := NewPicture(meta, size)
	for v:=0; v<meta.AngularHeight; v++ {
		for u:=0; u<meta.AngularWidth; u++ {
			dx := (float64(u) - cu) * w0 - float64(margin)
			dy := (float64(v) - cv) * w0 - float64(margin)
			p.mustSetView(u, v, tex.Translate(dx, dy, size.X, size.Y))
		}
	}
	return p
}
