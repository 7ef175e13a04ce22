package depth

import(
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/emath"
	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/mrf"
)

func TestSelectByLabel(t *testing.T) {
	labels := LabelGrid{Width: 3, Height: 1, Labels: []mrf.Label{0, 1, 0}}
	out := SelectByLabel(labels, row(1, 2, 3), row(10, 20, 30))
	assert.Equal(t, []float64{1, 20, 3}, out.Values())

	d := emath.NewFilledColorGrid(3, 1, emath.Vec3{0.1, 0.1, 0.1})
	c := emath.NewFilledColorGrid(3, 1, emath.Vec3{0.9, 0.9, 0.9})
	col := SelectColorByLabel(labels, d, c)
	assert.Equal(t, emath.Vec3{0.9, 0.9, 0.9}, col.At(1, 0))
	assert.Equal(t, emath.Vec3{0.1, 0.1, 0.1}, col.At(2, 0))
}

func TestAlphaToDepth(t *testing.T) {
	depth, err := AlphaToDepth(row(0.5, 1.0), 10, 40, 1e-6)
	require.NoError(t, err)
	assert.InDelta(t, 5.0*40/35, depth.Get(0, 0), 1e-12)
	assert.InDelta(t, 10.0*40/30, depth.Get(1, 0), 1e-12)
}

func TestAlphaToDepthGeometryErrors(t *testing.T) {
	// alpha=4 puts the focal length exactly at the sensor; alpha=5 beyond it
	_, err := AlphaToDepth(row(0.5, 4.0, 5.0), 10, 40, 1e-6)
	var geom *InvalidDepthGeometryError
	require.True(t, errors.As(err, &geom))
	assert.Equal(t, 2, geom.Pixels)
	assert.Equal(t, 1, geom.X)
	assert.Equal(t, 4.0, geom.Alpha)
	assert.Equal(t, 40.0, geom.FocalLength)

	_, err = AlphaToDepth(row(-1), 10, 40, 1e-6)
	assert.True(t, errors.As(err, &geom), "negative depth")
}
