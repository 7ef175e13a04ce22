package depth

import(
	"math"

	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/emath"
)

// SelectByLabel takes each pixel from the defocus grid or the
// correspondence grid, as the labels say.
func SelectByLabel(labels LabelGrid, defocus, correspondence emath.FloatGrid) emath.FloatGrid {
	out := defocus.Copy()
	out.CopyWhere(correspondence, labels.Mask(LabelCorrespondence))
	return out
}

// SelectColorByLabel is SelectByLabel for colour grids
func SelectColorByLabel(labels LabelGrid, defocus, correspondence emath.ColorGrid) emath.ColorGrid {
	out := defocus.Copy()
	out.CopyWhere(correspondence, labels.Mask(LabelCorrespondence))
	return out
}

// AlphaToDepth turns focus parameters into object distances (mm), via
// the thin lens equation 1/f = 1/d_obj + 1/d_img with f = rawFocalLength*alpha:
//
//	d_obj = f * d_img / (d_img - f)
//
// Pixels where f is within eps of d_img, or the depth isn't a finite
// positive number, make it return an *InvalidDepthGeometryError.
func AlphaToDepth(alpha emath.FloatGrid, rawFocalLength, imageToLens, eps float64) (emath.FloatGrid, error) {
	out := alpha.NewFromThis()
	var geomErr *InvalidDepthGeometryError

	for y:=0; y<alpha.Dy(); y++ {
		for x:=0; x<alpha.Dx(); x++ {
			a := alpha.Get(x, y)
			f := rawFocalLength * a
			denom := imageToLens - f
			d := f * imageToLens / denom

			if math.Abs(denom) <= eps || math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
				if geomErr == nil {
					geomErr = &InvalidDepthGeometryError{X: x, Y: y, Alpha: a, FocalLength: f, ImageToLensDistance: imageToLens}
				}
				geomErr.Pixels++
				continue
			}
			out.Set(x, y, d)
		}
	}

	if geomErr != nil {
		return out, geomErr
	}
	return out, nil
}
