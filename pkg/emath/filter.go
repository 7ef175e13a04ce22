package emath

import "fmt"

// Separable linear filters. Every filter here is a correlation with
// the kernel centred on the pixel, and replicates the edge pixels for
// taps that fall outside the grid.

// DerivKernel returns the 1D Sobel kernel for a derivative of the given
// order and aperture: binomial smoothing, followed by `order` central
// differences. DerivKernel(1,3) is [-1 0 1]; DerivKernel(0,3) is [1 2 1].
func DerivKernel(order, ksize int) []float64 {
	if ksize < 3 || ksize%2 == 0 || order < 0 || order >= ksize {
		panic(fmt.Sprintf("DerivKernel: bad order=%d ksize=%d", order, ksize))
	}

	k := []float64{1}
	for i:=0; i<ksize-order-1; i++ {
		k = convolve1D(k, []float64{1, 1})
	}
	for i:=0; i<order; i++ {
		k = convolve1D(k, []float64{-1, 1})
	}
	return k
}

func convolve1D(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i := range a {
		for j := range b {
			out[i+j] += a[i] * b[j]
		}
	}
	return out
}

// Sobel returns the (dx,dy)-order derivative of the grid, using Sobel
// kernels of aperture ksize in both directions.
func (fg *FloatGrid)Sobel(dx, dy, ksize int) FloatGrid {
	return fg.SepFilter(DerivKernel(dx, ksize), DerivKernel(dy, ksize))
}

// Laplacian is Sobel(2,0) + Sobel(0,2).
func (fg *FloatGrid)Laplacian(ksize int) FloatGrid {
	lap := fg.Sobel(2, 0, ksize)
	lap.Add(fg.Sobel(0, 2, ksize))
	return lap
}

// BoxMean averages over a w x h window.
func (fg *FloatGrid)BoxMean(w, h int) FloatGrid {
	return fg.SepFilter(uniformKernel(w, 1.0/float64(w)), uniformKernel(h, 1.0/float64(h)))
}

// BoxSum sums over a w x h window (an unnormalised box filter).
func (fg *FloatGrid)BoxSum(w, h int) FloatGrid {
	return fg.SepFilter(uniformKernel(w, 1.0), uniformKernel(h, 1.0))
}

func uniformKernel(n int, v float64) []float64 {
	if n < 1 {
		panic(fmt.Sprintf("uniformKernel: bad size %d", n))
	}
	k := make([]float64, n)
	for i := range k {
		k[i] = v
	}
	return k
}

// SepFilter correlates the rows with kx, then the columns with ky.
func (fg *FloatGrid)SepFilter(kx, ky []float64) FloatGrid {
	width := fg.Dx()
	height := fg.Dy()
	ax := len(kx)/2
	ay := len(ky)/2

	T := fg.NewFromThis()
	for y:=0; y<height; y++ {
		row := fg.values[y*width : (y+1)*width]
		for x:=0; x<width; x++ {
			t := 0.0
			for i, k := range kx {
				t += k * row[clampIndex(x+i-ax, width)]
			}
			T.values[y*width + x] = t
		}
	}

	out := fg.NewFromThis()
	for y:=0; y<height; y++ {
		for x:=0; x<width; x++ {
			t := 0.0
			for j, k := range ky {
				t += k * T.values[clampIndex(y+j-ay, height)*width + x]
			}
			out.values[y*width + x] = t
		}
	}

	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	} else if i >= n {
		return n-1
	}
	return i
}
