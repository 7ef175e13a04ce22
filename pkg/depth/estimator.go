// Package depth estimates a depth map from a light field, by sweeping
// the focus of a synthetic refocusing renderer and combining two depth
// cues: defocus (where is each pixel sharpest) and correspondence (where
// do the views agree best). The cues are fused per pixel with a two
// label MRF, and the winning focus parameter is turned into a distance
// with the thin lens equation.
package depth

import(
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/emath"
	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/lightfield"
)

// Result is everything one estimation produces. The final maps are
// DepthMap, ConfidenceMap and EDOF; the rest are the intermediate grids
// they were assembled from.
type Result struct {
	DepthMap      emath.FloatGrid  // mm
	ConfidenceMap emath.FloatGrid
	AlphaMap      emath.FloatGrid
	EDOF          emath.ColorGrid  // extended depth of field image
	Labels        LabelGrid

	DefocusAlpha             emath.FloatGrid
	CorrespondenceAlpha      emath.FloatGrid
	DefocusConfidence        emath.FloatGrid
	CorrespondenceConfidence emath.FloatGrid

	Alphas     []float64  // the focus sweep
	Iterations int        // MRF passes; zero for non-MRF strategies
	Converged  bool
}

// An Estimator runs depth estimations. Each one owns its renderer and
// its last result, so it is not safe for concurrent use; run separate
// estimators for separate light fields.
type Estimator struct {
	Config
	renderer lightfield.Renderer
	log      logrus.FieldLogger
	result   *Result
}

// NewEstimator checks the config. A nil renderer means a
// lightfield.ShiftSumRenderer; a nil logger means the logrus standard logger.
func NewEstimator(c Config, r lightfield.Renderer, log logrus.FieldLogger) (*Estimator, error) {
	if err := c.Finalize(); err != nil {
		return nil, err
	}
	if r == nil {
		r = lightfield.NewShiftSumRenderer()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Estimator{Config: c, renderer: r, log: log}, nil
}

func (e *Estimator)Result() *Result { return e.result }

func (e *Estimator)DepthMap() emath.FloatGrid {
	if e.result == nil { return emath.FloatGrid{} }
	return e.result.DepthMap
}

func (e *Estimator)ConfidenceMap() emath.FloatGrid {
	if e.result == nil { return emath.FloatGrid{} }
	return e.result.ConfidenceMap
}

func (e *Estimator)ExtendedDepthOfFieldImage() emath.ColorGrid {
	if e.result == nil { return emath.ColorGrid{} }
	return e.result.EDOF
}

// AlphaMax is the far end of the focus sweep for a light field
func AlphaMax(lf lightfield.LightField) float64 {
	return lf.LambdaInfinity() + 1.0
}

// validate checks the things about the light field we rely on, once, up front.
func (e *Estimator)validate(lf lightfield.LightField) error {
	if lf == nil {
		return &InvalidLightFieldError{"no light field"}
	}
	ang, size := lf.AngularResolution(), lf.SpatialResolution()
	if ang.X < 1 || ang.Y < 1 {
		return &InvalidLightFieldError{fmt.Sprintf("angular resolution %dx%d", ang.X, ang.Y)}
	} else if size.X < 1 || size.Y < 1 {
		return &InvalidLightFieldError{fmt.Sprintf("spatial resolution %dx%d", size.X, size.Y)}
	}
	for v:=0; v<ang.Y; v++ {
		for u:=0; u<ang.X; u++ {
			view := lf.SubapertureImage(u, v)
			if view == nil || view.Dx() < 1 || view.Dy() < 1 {
				return &InvalidLightFieldError{fmt.Sprintf("no sub-aperture image for view (%d,%d)", u, v)}
			}
		}
	}

	if f := lf.RawFocalLength(); !(f > 0) || math.IsInf(f, 0) {
		return &InvalidLightFieldError{fmt.Sprintf("raw focal length %f", f)}
	} else if d := lf.ImageToLensDistance(); !(d > 0) || math.IsInf(d, 0) {
		return &InvalidLightFieldError{fmt.Sprintf("image to lens distance %f", d)}
	} else if aMax := AlphaMax(lf); !(aMax > e.AlphaMin) || math.IsInf(aMax, 0) {
		return &InvalidLightFieldError{fmt.Sprintf("alpha max %f is not above alpha min %f", aMax, e.AlphaMin)}
	}
	return nil
}

// Estimate runs the whole pipeline on one light field: sweep, confidence,
// fusion, depth. The result is also kept for the accessors.
func (e *Estimator)Estimate(lf lightfield.LightField) (*Result, error) {
	e.result = nil
	if err := e.validate(lf); err != nil {
		return nil, err
	}

	log := e.log.WithFields(logrus.Fields{
		"run": uuid.New().String(),
		"views": lf.AngularResolution(),
		"size": lf.SpatialResolution(),
	})

	if err := e.renderer.SetLightField(lf); err != nil {
		return nil, fmt.Errorf("Estimate, renderer: %w", err)
	}

	// {{{ Sweep

	alphas := AlphaSchedule(e.AlphaMin, AlphaMax(lf), e.DepthResolution)
	log.Infof("Sweeping %d focus steps, alpha %.3f to %.3f", len(alphas), alphas[0], alphas[len(alphas)-1])

	scorer := NewResponseScorer(e.Config)
	tracker := NewFocusSweepTracker()
	size := lf.SpatialResolution()

	for k, alpha := range alphas {
		e.renderer.SetAlpha(alpha)
		refocused, err := e.renderer.Render()
		if err != nil {
			return nil, fmt.Errorf("Estimate, render at alpha=%f: %w", alpha, err)
		} else if refocused.Dx() != size.X || refocused.Dy() != size.Y {
			return nil, fmt.Errorf("Estimate, render at alpha=%f: got %dx%d, wanted %dx%d", alpha,
				refocused.Dx(), refocused.Dy(), size.X, size.Y)
		}

		defocusR := scorer.DefocusResponse(refocused)
		correspondenceR, err := scorer.CorrespondenceResponse(lf, refocused, alpha)
		if err != nil {
			return nil, fmt.Errorf("Estimate, alpha=%f: %w", alpha, err)
		}
		tracker.Observe(alpha, refocused, defocusR, correspondenceR)

		log.WithFields(logrus.Fields{"step": k, "alpha": alpha}).
			Debugf("defocus %s, correspondence %s", defocusR.Stats(), correspondenceR.Stats())
	}

	// }}}
	// {{{ Confidence

	defocusConf, correspondenceConf := Confidences(tracker, e.Epsilon)
	if err := NormalizeConfidence(&defocusConf, &correspondenceConf, e.Epsilon, e.DegeneratePolicy); err != nil {
		return nil, err
	}
	log.Infof("Normalized confidences, defocus %s, correspondence %s", defocusConf.Stats(), correspondenceConf.Stats())

	// }}}
	// {{{ Fusion

	energy := NewFusionEnergy(e.Fusion, tracker.Defocus.Alpha, tracker.Correspondence.Alpha, defocusConf, correspondenceConf)
	solver := FusionSolver{FusionConfig: e.Fusion, Log: log}
	labels, iterations, err := solver.Solve(energy, defocusConf, correspondenceConf)
	converged := true
	if err != nil {
		var timeout *ConvergenceTimeoutError
		if !errors.As(err, &timeout) || !e.Fusion.AcceptUnconverged {
			return nil, err
		}
		log.Warnf("Using unconverged labels: %v", err)
		converged = false
	}
	log.WithFields(logrus.Fields{
		"strategy": e.Fusion.Strategy,
		"passes": iterations,
	}).Infof("Fused cues, %d pixels from defocus, %d from correspondence",
		labels.Count(LabelDefocus), labels.Count(LabelCorrespondence))

	// }}}
	// {{{ Depth

	res := &Result{
		AlphaMap:                 SelectByLabel(labels, tracker.Defocus.Alpha, tracker.Correspondence.Alpha),
		ConfidenceMap:            SelectByLabel(labels, defocusConf, correspondenceConf),
		EDOF:                     SelectColorByLabel(labels, tracker.Defocus.EDOF, tracker.Correspondence.EDOF),
		Labels:                   labels,
		DefocusAlpha:             tracker.Defocus.Alpha,
		CorrespondenceAlpha:      tracker.Correspondence.Alpha,
		DefocusConfidence:        defocusConf,
		CorrespondenceConfidence: correspondenceConf,
		Alphas:                   alphas,
		Iterations:               iterations,
		Converged:                converged,
	}

	res.DepthMap, err = AlphaToDepth(res.AlphaMap, lf.RawFocalLength(), lf.ImageToLensDistance(), e.Epsilon)
	if err != nil {
		return nil, err
	}
	log.Infof("Depth map %s", res.DepthMap.Stats())

	// }}}

	e.result = res
	return res, nil
}
