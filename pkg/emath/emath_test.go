package emath

import(
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivKernel(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 1}, DerivKernel(0, 3))
	assert.Equal(t, []float64{-1, 0, 1}, DerivKernel(1, 3))
	assert.Equal(t, []float64{1, -2, 1}, DerivKernel(2, 3))

	k := DerivKernel(2, 9)
	require.Len(t, k, 9)
	sum := 0.0
	for _, v := range k {
		sum += v
	}
	assert.Equal(t, 0.0, sum, "second derivative kernel must sum to zero")
	assert.Equal(t, k[0], k[8], "second derivative kernel is symmetric")

	assert.Panics(t, func() { DerivKernel(1, 4) })
	assert.Panics(t, func() { DerivKernel(3, 3) })
}

func TestSobelOnRamp(t *testing.T) {
	// f(x,y) = 2x + 3y; interior first derivatives are exact
	g := NewFloatGrid(8, 6)
	for y:=0; y<6; y++ {
		for x:=0; x<8; x++ {
			g.Set(x, y, 2*float64(x) + 3*float64(y))
		}
	}

	gx := g.Sobel(1, 0, 3)
	gy := g.Sobel(0, 1, 3)
	lap := g.Laplacian(3)

	// [-1 0 1] over x gives 2*2=4, times the [1 2 1] smoothing sum of 4
	assert.InDelta(t, 16.0, gx.Get(3, 3), 1e-12)
	assert.InDelta(t, 24.0, gy.Get(3, 3), 1e-12)
	assert.InDelta(t, 0.0, lap.Get(3, 3), 1e-12)
}

func TestLaplacianOfConstantIsZero(t *testing.T) {
	g := NewFilledFloatGrid(12, 10, 0.5)
	lap := g.Laplacian(9)
	assert.Equal(t, 0.0, lap.Max())
	assert.Equal(t, 0.0, lap.Min())
}

func TestBoxFilters(t *testing.T) {
	g := NewFilledFloatGrid(5, 5, 2.0)
	mean := g.BoxMean(3, 3)
	sum := g.BoxSum(3, 3)
	assert.InDelta(t, 2.0, mean.Get(0, 0), 1e-12)
	assert.InDelta(t, 2.0, mean.Get(2, 2), 1e-12)
	assert.InDelta(t, 18.0, sum.Get(4, 4), 1e-12)

	spike := NewFloatGrid(5, 5)
	spike.Set(2, 2, 9.0)
	m := spike.BoxMean(3, 3)
	assert.InDelta(t, 1.0, m.Get(1, 1), 1e-12)
	assert.InDelta(t, 0.0, m.Get(4, 4), 1e-12)
	assert.InDelta(t, 9.0, m.Sum(), 1e-12)
}

func TestTranslate(t *testing.T) {
	g := NewFloatGrid(4, 1)
	for x:=0; x<4; x++ {
		g.Set(x, 0, float64(x))
	}

	shifted := g.Translate(1, 0, 4, 1)
	assert.Equal(t, []float64{0, 0, 1, 2}, shifted.Values(), "edge pixels replicate")

	half := g.Translate(0.5, 0, 4, 1)
	assert.InDelta(t, 1.5, half.Get(2, 0), 1e-12)

	// Same result through the general affine path
	warped := g.Warp(Identity().Translate(1, 0), 4, 1)
	assert.Equal(t, shifted.Values(), warped.Values())

	// Translating through the matrix samples at exactly (x-tx, y-ty)
	grid := NewFloatGrid(5, 4)
	for i := range grid.Values() {
		grid.Values()[i] = float64(i*i % 7) / 3.0
	}
	tx, ty := 0.37, -1.25
	moved2 := grid.Translate(tx, ty, 5, 4)
	for y:=0; y<4; y++ {
		for x:=0; x<5; x++ {
			assert.Equal(t, grid.Bilinear(float64(x)-tx, float64(y)-ty), moved2.Get(x, y), "(%d,%d)", x, y)
		}
	}

	flat := NewFilledFloatGrid(6, 6, 0.3)
	moved := flat.Translate(-1.37, 2.71, 6, 6)
	assert.Equal(t, 0.3, moved.Min())
	assert.Equal(t, 0.3, moved.Max())
}

func TestAff3Invert(t *testing.T) {
	m := Identity().Translate(3, -2).Mult(Aff3{2, 0, 0,   0, 4, 0})
	inv, err := m.Invert()
	require.NoError(t, err)

	x, y := m.Apply(1.5, 2.5)
	bx, by := inv.Apply(x, y)
	assert.InDelta(t, 1.5, bx, 1e-12)
	assert.InDelta(t, 2.5, by, 1e-12)

	_, err = Aff3{}.Invert()
	assert.Error(t, err)
}

func TestArithmeticAndMasks(t *testing.T) {
	a := FloatGridFromValues(2, []float64{1, 4, 9, 0})
	b := FloatGridFromValues(2, []float64{2, 2, 9, 0})

	assert.Equal(t, Mask{false, true, false, false}, a.Greater(b))
	assert.Equal(t, Mask{true, false, false, false}, a.Less(b))
	assert.Equal(t, 1, a.Greater(b).And(Mask{true, true, true, true}).Count())

	d := a.Copy()
	d.SafeDiv(b, 1e-9)
	assert.Equal(t, []float64{0.5, 2, 1, 0}, d.Values())

	mx := MaxOf(a, b)
	assert.Equal(t, []float64{2, 4, 9, 0}, mx.Values())

	ad := AbsDiff(a, b)
	assert.Equal(t, []float64{1, 2, 0, 0}, ad.Values())

	s := a.Copy()
	s.Sqrt()
	assert.Equal(t, []float64{1, 2, 3, 0}, s.Values())

	c := a.Copy()
	c.CopyWhere(b, Mask{true, false, false, true})
	c.SetWhere(-1, Mask{false, false, true, false})
	assert.Equal(t, []float64{2, 4, -1, 0}, c.Values())

	assert.True(t, a.AllFinite())
	a.Set(1, 1, math.Inf(1))
	assert.False(t, a.AllFinite())
}

func TestColorGrid(t *testing.T) {
	cg := NewFilledColorGrid(3, 2, Vec3{0.25, 0.5, 2.0})
	img := cg.ToRGBA64()
	r, g, b, a := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0x3FFF), r)
	assert.Equal(t, uint32(0x7FFF), g)
	assert.Equal(t, uint32(0xFFFF), b, "channels clamp at 1.0")
	assert.Equal(t, uint32(0xFFFF), a)

	back := ColorGridFromImage(img)
	assert.InDelta(t, 0.25, back.At(2, 1)[0], 1e-4)

	seen := [NumChannels]bool{}
	EachChannel(func(c int) { seen[c] = true })
	assert.Equal(t, [NumChannels]bool{true, true, true}, seen)
}

func TestToImg(t *testing.T) {
	g := NewFloatGrid(16, 16)
	g.Set(3, 3, 1.0)
	fn := filepath.Join(t.TempDir(), "grid.png")
	require.NoError(t, g.ToImg("test", fn))
	assert.FileExists(t, fn)
}
