// Package lightfield holds plenoptic pictures as a grid of sub-aperture
// views, and the operations the depth estimator needs from them:
// per-view access, view shifting for a focus parameter, and synthetic
// refocusing.
package lightfield

import(
	"fmt"
	"image"
	"log"

	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/emath"
)

// A LightField is the source of sub-aperture views plus the camera
// geometry needed to turn a focus parameter into a distance.
type LightField interface {
	AngularResolution() image.Point // number of views, (U,V)
	SpatialResolution() image.Point // pixels per view, the working resolution

	// SubapertureImage returns view (u,v), or nil if there isn't one.
	// Callers must treat the grid as read-only.
	SubapertureImage(u, v int) *emath.ColorGrid

	RawFocalLength() float64      // mm
	ImageToLensDistance() float64 // mm
	LambdaInfinity() float64      // alpha at which the camera focuses at infinity, minus one
}

// Metadata is what we know about the camera that took a light field.
// It is loaded from lightfield.yaml next to the views.
type Metadata struct {
	Name                 string
	AngularWidth         int
	AngularHeight        int
	FocalLength          float64  // Raw focal length in mm; if zero, taken from the views' EXIF
	ImageToLensDistance  float64  // mm
	LambdaInfinity       float64
	ViewPattern          string   // fmt pattern for view filenames, given (u, v)
	Scale                float64  // If in (0,1), views are downscaled by this on load
}

const DefaultViewPattern = "view-%02d-%02d.png"

func (m Metadata)String() string {
	return fmt.Sprintf("LF[%s %dx%d views, f=%.3fmm, d_img=%.3fmm, lambdaInf=%.3f]",
		m.Name, m.AngularWidth, m.AngularHeight, m.FocalLength, m.ImageToLensDistance, m.LambdaInfinity)
}

func (m Metadata)ViewFilename(u, v int) string {
	pattern := m.ViewPattern
	if pattern == "" {
		pattern = DefaultViewPattern
	}
	return fmt.Sprintf(pattern, u, v)
}

// Picture is an in-memory light field. Implements LightField.
type Picture struct {
	Metadata
	spatial image.Point
	views   [][]*emath.ColorGrid // [v][u]
}

// NewPicture returns a picture with no views; fill it with SetView.
func NewPicture(meta Metadata, spatial image.Point) *Picture {
	views := make([][]*emath.ColorGrid, max(meta.AngularHeight, 0))
	for v := range views {
		views[v] = make([]*emath.ColorGrid, max(meta.AngularWidth, 0))
	}
	return &Picture{Metadata: meta, spatial: spatial, views: views}
}

func (p *Picture)SetView(u, v int, view emath.ColorGrid) error {
	if v < 0 || v >= len(p.views) || u < 0 || u >= len(p.views[v]) {
		return fmt.Errorf("SetView: (%d,%d) outside %dx%d views", u, v, p.AngularWidth, p.AngularHeight)
	}
	p.views[v][u] = &view
	return nil
}

// mustSetView is SetView for loops bounded by the picture's own
// angular resolution, where an out-of-range view is a programming error.
func (p *Picture)mustSetView(u, v int, view emath.ColorGrid) {
	if err := p.SetView(u, v, view); err != nil {
		log.Panicf("Picture.%v", err)
	}
}

func (p *Picture)AngularResolution() image.Point { return image.Point{p.AngularWidth, p.AngularHeight} }
func (p *Picture)SpatialResolution() image.Point { return p.spatial }
func (p *Picture)RawFocalLength() float64        { return p.FocalLength }
func (p *Picture)ImageToLensDistance() float64   { return p.Metadata.ImageToLensDistance }
func (p *Picture)LambdaInfinity() float64        { return p.Metadata.LambdaInfinity }

func (p *Picture)SubapertureImage(u, v int) *emath.ColorGrid {
	if v < 0 || v >= len(p.views) || u < 0 || u >= len(p.views[v]) {
		return nil
	}
	return p.views[v][u]
}
