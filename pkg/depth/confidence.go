package depth

import(
	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/emath"
)

// Confidences returns the (unnormalized) defocus and correspondence
// confidences from a finished sweep.
func Confidences(t *FocusSweepTracker, eps float64) (emath.FloatGrid, emath.FloatGrid) {
	return t.Defocus.Confidence(eps), t.Correspondence.Confidence(eps)
}

// NormalizeConfidence scales both grids, in place, by the single largest
// value found in either, so the most confident pixel of either cue ends
// up at 1 and the two become comparable.
//
// If that largest value is no bigger than eps there is nothing to scale
// by. Under policy "zero" both grids are zeroed; otherwise a
// *DegenerateInputError is returned and the grids are left alone.
func NormalizeConfidence(c1, c2 *emath.FloatGrid, eps float64, policy string) error {
	joint := emath.MaxOf(*c1, *c2)
	maxVal := joint.Max()

	if !(maxVal > eps) {
		if policy == "zero" {
			c1.Fill(0)
			c2.Fill(0)
			return nil
		}
		return &DegenerateInputError{MaxConfidence: maxVal}
	}

	c1.DivConst(maxVal)
	c2.DivConst(maxVal)
	return nil
}
