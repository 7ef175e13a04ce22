package mrf

import(
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableCost(costs [][]CostVal) DataCostFunc {
	return func(pix int, l Label) CostVal { return costs[l][pix] }
}

func TestUnaryOnlyIsPerPixelArgmin(t *testing.T) {
	costs := [][]CostVal{
		{0, 5, 1, 1, 3, 0},
		{1, 2, 1, 0, 4, 7},
	}
	bp, err := NewMaxProdBP(3, 2, 2, EnergyFunction{Data: tableCost(costs)})
	require.NoError(t, err)

	bp.Initialize()
	bp.ClearAnswer()
	bp.Optimize(1)

	// pixel 2 is a tie, and goes to label 0
	assert.Equal(t, []Label{0, 1, 0, 1, 0, 0}, bp.Answer())
	assert.Equal(t, 0.0, bp.SmoothnessEnergy())
	assert.Equal(t, 0.0+2+1+0+3+0, bp.DataEnergy())
	assert.Equal(t, bp.DataEnergy(), bp.TotalEnergy())

	// More passes change nothing without a pairwise term
	bp.Optimize(3)
	assert.Equal(t, []Label{0, 1, 0, 1, 0, 0}, bp.Answer())
	assert.Equal(t, 4, bp.Iterations())
}

func TestPottsRemovesIsolatedPixel(t *testing.T) {
	w, h := 5, 5
	costs := [][]CostVal{make([]CostVal, w*h), make([]CostVal, w*h)}
	for p:=0; p<w*h; p++ {
		costs[1][p] = 1
	}
	center := 2*w + 2
	costs[0][center], costs[1][center] = 1, 0

	unary, err := NewMaxProdBP(w, h, 2, EnergyFunction{Data: tableCost(costs)})
	require.NoError(t, err)
	unary.Optimize(5)
	assert.Equal(t, 1, unary.Answer()[center])

	smooth, err := NewMaxProdBP(w, h, 2, EnergyFunction{Data: tableCost(costs), Smooth: Potts(2)})
	require.NoError(t, err)
	smooth.Optimize(5)
	for p, l := range smooth.Answer() {
		assert.Equal(t, 0, l, "pixel %d", p)
	}

	smooth.SetLabel(center, 1)
	assert.Equal(t, 4*2.0, smooth.SmoothnessEnergy())
	assert.Equal(t, 4*2.0, smooth.TotalEnergy(), "the center prefers label 1, so only the pairwise term costs")
}

func TestMultiLabel(t *testing.T) {
	data := func(pix int, l Label) CostVal {
		want := pix % 3
		if l == want {
			return 0
		}
		return 1
	}
	bp, err := NewMaxProdBP(6, 1, 3, EnergyFunction{Data: data})
	require.NoError(t, err)
	bp.Optimize(2)
	assert.Equal(t, []Label{0, 1, 2, 0, 1, 2}, bp.Answer())
	assert.Equal(t, 3, bp.NumLabels())
}

func TestNewMaxProdBPErrors(t *testing.T) {
	data := func(pix int, l Label) CostVal { return 0 }

	_, err := NewMaxProdBP(0, 3, 2, EnergyFunction{Data: data})
	assert.Error(t, err)
	_, err = NewMaxProdBP(3, 3, 1, EnergyFunction{Data: data})
	assert.Error(t, err)
	_, err = NewMaxProdBP(3, 3, 2, EnergyFunction{})
	assert.Error(t, err)
}
