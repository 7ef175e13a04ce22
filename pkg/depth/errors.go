package depth

import(
	"fmt"
)

// DegenerateInputError means no pixel in either cue had any confidence,
// so the confidences can't be normalized. Typically a flat, textureless
// light field.
type DegenerateInputError struct {
	MaxConfidence float64
}

func (e *DegenerateInputError)Error() string {
	return fmt.Sprintf("degenerate input: max confidence is %g, nothing to normalize against", e.MaxConfidence)
}

// InvalidDepthGeometryError means the lens equation had no sensible
// answer for some pixels: the focal length reached the image-to-lens
// distance, or the depth came out non-finite or not positive.
type InvalidDepthGeometryError struct {
	Pixels              int      // how many pixels failed
	X, Y                int      // the first one
	Alpha               float64  // its focus parameter
	FocalLength         float64
	ImageToLensDistance float64
}

func (e *InvalidDepthGeometryError)Error() string {
	return fmt.Sprintf("invalid depth geometry at %d pixels, first (%d,%d): alpha=%f gives f=%fmm against d_img=%fmm",
		e.Pixels, e.X, e.Y, e.Alpha, e.FocalLength, e.ImageToLensDistance)
}

// ConvergenceTimeoutError means the fusion solver ran out of iterations.
// The last labelling is kept, so callers may choose to use it anyway.
type ConvergenceTimeoutError struct {
	Iterations int
	RMSChange  float64
	Labels     LabelGrid
}

func (e *ConvergenceTimeoutError)Error() string {
	return fmt.Sprintf("fusion did not converge after %d iterations (last RMS label change %f)", e.Iterations, e.RMSChange)
}

// InvalidLightFieldError means the light field can't be estimated from at all.
type InvalidLightFieldError struct {
	Reason string
}

func (e *InvalidLightFieldError)Error() string {
	return "invalid light field: " + e.Reason
}
