package emath

import(
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg" // Move to https://pkg.go.dev/golang.org/x/image/font#Drawer sometime
	"gonum.org/v1/gonum/floats"
)

// A FloatGrid is a dense, row-major grid of floats, with some
// operations. All the binary operations assume both grids have the same
// dimensions; mismatches are programming errors and panic.
type FloatGrid struct {
	stride int
	values []float64
}

func NewFloatGrid(w, h int) FloatGrid {
	return FloatGrid{
		stride: w,
		values: make([]float64, w*h),
	}
}

// NewFilledFloatGrid returns a grid with every value set to `v`
func NewFilledFloatGrid(w, h int, v float64) FloatGrid {
	g := NewFloatGrid(w, h)
	g.Fill(v)
	return g
}

// FloatGridFromValues wraps (does not copy) a row-major slice.
func FloatGridFromValues(w int, values []float64) FloatGrid {
	if w <= 0 || len(values)%w != 0 {
		panic(fmt.Sprintf("FloatGridFromValues: %d values do not fit width %d", len(values), w))
	}
	return FloatGrid{stride: w, values: values}
}

func (g1 *FloatGrid)NewFromThis() FloatGrid  { return NewFloatGrid(g1.Dx(), g1.Dy()) }
func (fg *FloatGrid)Set(x, y int, v float64) { fg.values[fg.stride*y + x] = v }
func (fg FloatGrid)Get(x, y int) float64    { return fg.values[fg.stride*y + x] }
func (fg FloatGrid)Dx() int                 { return fg.stride }
func (fg FloatGrid)Values() []float64       { return fg.values }
func (fg FloatGrid)Len() int                { return len(fg.values) }
func (fg FloatGrid)Bounds() image.Rectangle { return image.Rect(0, 0, fg.Dx(), fg.Dy()) }

func (fg FloatGrid)Dy() int {
	if fg.stride == 0 {
		return 0
	}
	return len(fg.values) / fg.stride
}

func (g1 *FloatGrid)Copy() FloatGrid {
	g2 := FloatGrid{stride: g1.stride, values:make([]float64, len(g1.values))}
	copy(g2.values, g1.values)
	return g2
}

func (g1 *FloatGrid)SameSize(g2 FloatGrid) bool {
	return g1.stride == g2.stride && len(g1.values) == len(g2.values)
}

func (g1 *FloatGrid)mustMatch(g2 FloatGrid, op string) {
	if !g1.SameSize(g2) {
		panic(fmt.Sprintf("FloatGrid.%s: size mismatch %dx%d vs %dx%d", op, g1.Dx(), g1.Dy(), g2.Dx(), g2.Dy()))
	}
}

func (fg *FloatGrid)Fill(v float64) {
	for i := range fg.values {
		fg.values[i] = v
	}
}

// {{{ Elementwise arithmetic, in place

func (g1 *FloatGrid)Add(g2 FloatGrid) { g1.mustMatch(g2, "Add"); floats.Add(g1.values, g2.values) }
func (g1 *FloatGrid)Sub(g2 FloatGrid) { g1.mustMatch(g2, "Sub"); floats.Sub(g1.values, g2.values) }
func (g1 *FloatGrid)Mul(g2 FloatGrid) { g1.mustMatch(g2, "Mul"); floats.Mul(g1.values, g2.values) }
func (fg *FloatGrid)Scale(c float64)  { floats.Scale(c, fg.values) }
func (fg *FloatGrid)AddConst(c float64) { floats.AddConst(c, fg.values) }

// DivConst divides every value by c. Unlike Scale(1/c) it is exact
// whenever the true quotient is representable.
func (fg *FloatGrid)DivConst(c float64) {
	for i := range fg.values {
		fg.values[i] /= c
	}
}

// SafeDiv divides g1 by g2 elementwise. Denominators smaller than eps
// are replaced by eps, so the result is always finite for finite inputs.
func (g1 *FloatGrid)SafeDiv(g2 FloatGrid, eps float64) {
	g1.mustMatch(g2, "SafeDiv")
	for i, d := range g2.values {
		if d < eps {
			d = eps
		}
		g1.values[i] /= d
	}
}

func (fg *FloatGrid)Abs() {
	for i, v := range fg.values {
		fg.values[i] = math.Abs(v)
	}
}

func (fg *FloatGrid)Square() {
	floats.Mul(fg.values, fg.values)
}

func (fg *FloatGrid)Sqrt() {
	for i, v := range fg.values {
		fg.values[i] = math.Sqrt(v)
	}
}

// AbsDiff returns |g1 - g2|
func AbsDiff(g1, g2 FloatGrid) FloatGrid {
	g1.mustMatch(g2, "AbsDiff")
	out := g1.NewFromThis()
	floats.SubTo(out.values, g1.values, g2.values)
	out.Abs()
	return out
}

// MaxOf returns the pixelwise maximum of two grids
func MaxOf(g1, g2 FloatGrid) FloatGrid {
	g1.mustMatch(g2, "MaxOf")
	out := g1.NewFromThis()
	for i := range out.values {
		out.values[i] = math.Max(g1.values[i], g2.values[i])
	}
	return out
}

// }}}
// {{{ Reductions

func (fg FloatGrid)Max() float64 { return floats.Max(fg.values) }
func (fg FloatGrid)Min() float64 { return floats.Min(fg.values) }
func (fg FloatGrid)Sum() float64 { return floats.Sum(fg.values) }

func (fg FloatGrid)MinMax() (float64, float64) {
	return fg.Min(), fg.Max()
}

// AllFinite reports whether the grid contains no NaN or Inf values
func (fg FloatGrid)AllFinite() bool {
	for _, v := range fg.values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// }}}
// {{{ Comparison masks & masked copies

func (g1 *FloatGrid)Greater(g2 FloatGrid) Mask {
	g1.mustMatch(g2, "Greater")
	m := make(Mask, len(g1.values))
	for i := range m {
		m[i] = g1.values[i] > g2.values[i]
	}
	return m
}

func (g1 *FloatGrid)Less(g2 FloatGrid) Mask {
	g1.mustMatch(g2, "Less")
	m := make(Mask, len(g1.values))
	for i := range m {
		m[i] = g1.values[i] < g2.values[i]
	}
	return m
}

// CopyWhere copies values from `src` wherever the mask holds
func (g1 *FloatGrid)CopyWhere(src FloatGrid, m Mask) {
	g1.mustMatch(src, "CopyWhere")
	for i, set := range m {
		if set {
			g1.values[i] = src.values[i]
		}
	}
}

// SetWhere sets `v` wherever the mask holds
func (fg *FloatGrid)SetWhere(v float64, m Mask) {
	for i, set := range m {
		if set {
			fg.values[i] = v
		}
	}
}

// }}}

func (fg FloatGrid)Stats() string {
	if len(fg.values) == 0 {
		return "fg[0x0]"
	}
	min, max := fg.MinMax()
	return fmt.Sprintf("fg[%dx%d, vals{%f,%f}]", fg.Dx(), fg.Dy(), min, max)
}

// ToImg saves a simple grayscale, based on the range of values in the grid, and gamma scaling the
// gray to look normal for human vision. The title is drawn in the top left corner.
func (fg *FloatGrid)ToImg(title, filename string) error {
	min, max := fg.MinMax()
	span := max - min
	if span == 0 {
		span = 1
	}

	img := image.NewRGBA64(image.Rectangle{Max:image.Point{fg.Dx(), fg.Dy()}})
	for x:=0; x<fg.Dx(); x++ {
		for y:=0; y<fg.Dy(); y++ {
			gray := GammaExpand_F64 ((fg.Get(x,y) - min) / span)
			col := color.RGBA64{uint16(gray * 65535.0), uint16(gray * 65535.0), uint16(gray * 65535.0), 0xFFFF}
			img.Set(x, y, col)
		}
	}

	dc := gg.NewContextForImage(img)
	if title != "" {
		dc.SetRGB(1,0,0)
		dc.DrawString(title, 4, 14)
	}
	if err := dc.SavePNG(filename); err != nil {
		return fmt.Errorf("FloatGrid.ToImg '%s': %w", filename, err)
	}
	return nil
}
