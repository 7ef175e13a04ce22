package depth

import(
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/emath"
)

func TestAlphaSchedule(t *testing.T) {
	assert.Equal(t, []float64{0.25, 0.5, 0.75, 1.0, 1.25, 1.5, 1.75}, AlphaSchedule(0.25, 1.75, 6))
	assert.Equal(t, []float64{0.2, 1.8}, AlphaSchedule(0.2, 1.8, 1))

	// The far end is always included exactly, whatever the rounding on the way
	alphas := AlphaSchedule(0.2, 1.3, 25)
	assert.Len(t, alphas, 26)
	assert.Equal(t, 1.3, alphas[25])
}

func row(vals ...float64) emath.FloatGrid { return emath.FloatGridFromValues(len(vals), vals) }

func TestFocusSweepTracker(t *testing.T) {
	responses := []emath.FloatGrid{
		row(1, 5, 3),
		row(2, 5, 1),
		row(1.5, 4, 2),
	}
	alphas := []float64{0.25, 0.5, 0.75}

	tr := NewFocusSweepTracker()
	for k, r := range responses {
		refocused := emath.NewFilledColorGrid(3, 1, emath.Vec3{alphas[k], alphas[k], alphas[k]})
		tr.Observe(alphas[k], refocused, r, r)
	}
	assert.Equal(t, 3, tr.Steps())

	// Higher is better. Pixel 1 ties at step 1, so keeps the first alpha.
	assert.Equal(t, []float64{2, 5, 3}, tr.Defocus.Best.Values())
	assert.Equal(t, []float64{1.5, 5, 3}, tr.Defocus.Second.Values())
	assert.Equal(t, []float64{0.5, 0.25, 0.25}, tr.Defocus.Alpha.Values())
	assert.Equal(t, []float64{0.5, 0.25, 0.25}, tr.Defocus.EDOF.Channels[1].Values())

	// Lower is better
	assert.Equal(t, []float64{1, 4, 1}, tr.Correspondence.Best.Values())
	assert.Equal(t, []float64{1, 5, 2}, tr.Correspondence.Second.Values())
	assert.Equal(t, []float64{0.25, 0.75, 0.5}, tr.Correspondence.Alpha.Values())
	assert.Equal(t, []float64{0.25, 0.75, 0.5}, tr.Correspondence.EDOF.Channels[2].Values())

	def := tr.Defocus.Confidence(1e-6)
	assert.Equal(t, []float64{2/1.5, 1, 1}, def.Values())
	corr := tr.Correspondence.Confidence(1e-6)
	assert.Equal(t, []float64{1, 5.0/4.0, 2}, corr.Values())
}

func TestConfidenceGuardsZeroDenominators(t *testing.T) {
	tr := NewFocusSweepTracker()
	tr.Observe(0.25, emath.NewColorGrid(2, 1), row(0, 3), row(0, 0))

	d, c := Confidences(tr, 1e-6)
	assert.Equal(t, []float64{0, 1}, d.Values(), "0/0 comes out as zero")
	assert.Equal(t, []float64{0, 0}, c.Values())
	assert.True(t, d.AllFinite())
}
