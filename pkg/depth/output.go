package depth

import(
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mdouchement/hdr/hdrcolor"
	"github.com/mdouchement/hdr/tmo"
	"github.com/skypies/util/histogram"

	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/emath"
	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/lightfield"
)

// depthImage presents a depth map as a gray HDR image, with the depth
// in mm as the value of every channel.
type depthImage struct {
	grid emath.FloatGrid
}

// Implement image.Image
func (di depthImage)ColorModel() color.Model { return hdrcolor.RGBModel }
func (di depthImage)Bounds() image.Rectangle { return di.grid.Bounds() }
func (di depthImage)At(x, y int) color.Color { return di.HDRAt(x, y) }

// Implement hdr.Image
func (di depthImage)HDRAt(x, y int) hdrcolor.Color {
	v := di.grid.Get(x, y)
	return hdrcolor.RGB{R: v, G: v, B: v}
}
func (di depthImage)Size() int { return di.grid.Len() }

func (r *Result)DepthImage() hdr.Image { return depthImage{r.DepthMap} }
func (r *Result)EDOFImage() *image.RGBA64 { return r.EDOF.ToRGBA64() }

// WriteHDR outputs an HDR (Radiance RGBE) image.
func WriteHDR(img hdr.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("WriteHDR, open+w '%s': %w", filename, err)
	} else {
		defer writer.Close()
		if err := rgbe.Encode(writer, img); err != nil {
			return fmt.Errorf("WriteHDR, encoding '%s': %w", filename, err)
		}
		return nil
	}
}

// WriteDepthPNG tonemaps the depth map linearly into a viewable PNG;
// near is dark, far is bright.
func (r *Result)WriteDepthPNG(filename string) error {
	ldr := tmo.NewLinear(r.DepthImage()).Perform()
	return lightfield.WritePNG(ldr, filename)
}

// WriteFiles writes every output for a result into dir, with filenames
// starting `name`, and returns the filenames written.
func (r *Result)WriteFiles(dir, name string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("WriteFiles, mkdir '%s': %w", dir, err)
	}
	fn := func(suffix string) string { return filepath.Join(dir, name + suffix) }
	written := []string{}

	if err := WriteHDR(r.DepthImage(), fn("-depth.hdr")); err != nil {
		return written, err
	}
	written = append(written, fn("-depth.hdr"))

	if err := r.WriteDepthPNG(fn("-depth.png")); err != nil {
		return written, err
	}
	written = append(written, fn("-depth.png"))

	if err := r.ConfidenceMap.ToImg("confidence", fn("-confidence.png")); err != nil {
		return written, err
	}
	written = append(written, fn("-confidence.png"))

	if err := lightfield.WritePNG(r.EDOFImage(), fn("-edof.png")); err != nil {
		return written, err
	}
	written = append(written, fn("-edof.png"))

	return written, nil
}

// DepthHistogram buckets the finite depths into 256 bins spanning the
// range of the depth map, for a quick look at the distribution.
func (r *Result)DepthHistogram() histogram.Histogram {
	h := histogram.Histogram{NumBuckets:256, ValMin:0, ValMax:256}
	min, max := r.DepthMap.MinMax()
	span := max - min
	if span == 0 {
		span = 1
	}
	for _, v := range r.DepthMap.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		h.Add(histogram.ScalarVal(int(255 * (v - min) / span)))
	}
	return h
}
