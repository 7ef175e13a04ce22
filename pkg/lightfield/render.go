package lightfield

import(
	"fmt"

	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/emath"
)

// A Renderer synthesises a refocused colour image from a light field.
// Callers set the light field once, then set alpha before each Render.
type Renderer interface {
	SetLightField(lf LightField) error
	SetAlpha(alpha float64)
	Render() (emath.ColorGrid, error)
}

// ShiftSumRenderer refocuses by shifting every view with ViewShift and
// averaging them, at the light field's spatial resolution.
type ShiftSumRenderer struct {
	lf    LightField
	alpha float64
}

func NewShiftSumRenderer() *ShiftSumRenderer {
	return &ShiftSumRenderer{alpha: 1.0}
}

func (r *ShiftSumRenderer)SetLightField(lf LightField) error {
	if lf == nil {
		return fmt.Errorf("ShiftSumRenderer: nil light field")
	}
	r.lf = lf
	return nil
}

func (r *ShiftSumRenderer)SetAlpha(alpha float64) { r.alpha = alpha }
func (r *ShiftSumRenderer)Alpha() float64         { return r.alpha }

func (r *ShiftSumRenderer)Render() (emath.ColorGrid, error) {
	if r.lf == nil {
		return emath.ColorGrid{}, fmt.Errorf("ShiftSumRenderer: no light field set")
	} else if r.alpha <= 0 {
		return emath.ColorGrid{}, fmt.Errorf("ShiftSumRenderer: alpha must be positive, got %f", r.alpha)
	}

	ang := r.lf.AngularResolution()
	size := r.lf.SpatialResolution()
	for v:=0; v<ang.Y; v++ {
		for u:=0; u<ang.X; u++ {
			if r.lf.SubapertureImage(u, v) == nil {
				return emath.ColorGrid{}, fmt.Errorf("ShiftSumRenderer: missing view (%d,%d)", u, v)
			}
		}
	}

	out := emath.NewColorGrid(size.X, size.Y)
	emath.EachChannel(func(c int) {
		acc := &out.Channels[c]
		for v:=0; v<ang.Y; v++ {
			for u:=0; u<ang.X; u++ {
				dx, dy := ViewShift(r.lf, u, v, r.alpha)
				acc.Add(AlignView(&r.lf.SubapertureImage(u, v).Channels[c], dx, dy, size))
			}
		}
		acc.DivConst(float64(ang.X * ang.Y))
	})

	return out, nil
}
