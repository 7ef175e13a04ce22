package depth

import(
	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/emath"
	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/mrf"
)

// Which cue a pixel's depth comes from
const(
	LabelDefocus        mrf.Label = 0
	LabelCorrespondence mrf.Label = 1
	numLabels                     = 2
)

// A LabelGrid holds one label per pixel, row-major.
type LabelGrid struct {
	Width, Height int
	Labels        []mrf.Label
}

func NewLabelGrid(w, h int) LabelGrid {
	return LabelGrid{Width: w, Height: h, Labels: make([]mrf.Label, w*h)}
}

func (lg LabelGrid)At(x, y int) mrf.Label { return lg.Labels[y*lg.Width + x] }

// Mask is true wherever the label is `l`
func (lg LabelGrid)Mask(l mrf.Label) emath.Mask {
	m := make(emath.Mask, len(lg.Labels))
	for i, v := range lg.Labels {
		m[i] = (v == l)
	}
	return m
}

func (lg LabelGrid)Count(l mrf.Label) int { return lg.Mask(l).Count() }

// asFloats is the labelling as a float slice, for RMS comparisons
func (lg LabelGrid)asFloats() []float64 {
	out := make([]float64, len(lg.Labels))
	for i, v := range lg.Labels {
		out[i] = float64(v)
	}
	return out
}
