package depth

import(
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/emath"
	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/mrf"
)

// unsetLabel fills the "previous" labelling before the first pass, so the
// first RMS change is never zero.
const unsetLabel = 2

// FusionEnergy holds the per-pixel unary costs of the two labels, and
// the terms they were built from.
type FusionEnergy struct {
	Data  [numLabels]emath.FloatGrid  // disagreement, weighted by the rival cue's confidence
	FS    [numLabels]emath.FloatGrid  // flatness+smoothness of the label's own alpha grid, 3x3 summed
	Unary [numLabels]emath.FloatGrid  // Data + FS
}

// NewFusionEnergy builds the cost of each label at each pixel. Choosing
// a cue costs the alpha disagreement weighted by the *other* cue's
// confidence, plus how rough that cue's own alpha grid is around the pixel.
func NewFusionEnergy(fc FusionConfig, defocusAlpha, correspondenceAlpha, defocusConf, correspondenceConf emath.FloatGrid) FusionEnergy {
	fe := FusionEnergy{}
	absDiff := emath.AbsDiff(defocusAlpha, correspondenceAlpha)

	alphas := [numLabels]emath.FloatGrid{defocusAlpha, correspondenceAlpha}
	rivals := [numLabels]emath.FloatGrid{correspondenceConf, defocusConf}

	for l:=0; l<numLabels; l++ {
		fe.Data[l] = absDiff.Copy()
		fe.Data[l].Mul(rivals[l])
		fe.Data[l].Scale(fc.LambdaSource[l])

		fe.FS[l] = flatnessSmoothness(alphas[l], fc.EnergyKernelSize, fc.LambdaSmooth)

		fe.Unary[l] = fe.Data[l].Copy()
		fe.Unary[l].Add(fe.FS[l])
	}
	return fe
}

// flatnessSmoothness is |d/dx| + |d/dy| + lambda*|Laplacian| of an alpha
// grid, summed (not averaged) over a 3x3 window.
func flatnessSmoothness(alpha emath.FloatGrid, ksize int, lambdaSmooth float64) emath.FloatGrid {
	flat := alpha.Sobel(1, 0, ksize)
	flat.Abs()
	gy := alpha.Sobel(0, 1, ksize)
	gy.Abs()
	flat.Add(gy)

	smooth := alpha.Laplacian(ksize)
	smooth.Abs()
	smooth.Scale(lambdaSmooth)

	flat.Add(smooth)
	return flat.BoxSum(3, 3)
}

// EnergyFunction wraps the unary tables in closures for the solver.
func (fe FusionEnergy)EnergyFunction(fc FusionConfig) mrf.EnergyFunction {
	unary := [numLabels][]float64{fe.Unary[0].Values(), fe.Unary[1].Values()}

	ef := mrf.EnergyFunction{
		Data: func(pix int, l mrf.Label) mrf.CostVal {
			if l < 0 || l >= numLabels {
				return 0
			}
			return unary[l][pix]
		},
		Smooth: mrf.NoSmoothness,
	}
	if fc.Pairwise == "potts" {
		ef.Smooth = mrf.Potts(fc.LambdaPairwise)
	}
	return ef
}

// FusionSolver picks a cue for every pixel.
type FusionSolver struct {
	FusionConfig
	Log logrus.FieldLogger
}

// Solve returns the labelling and the number of solver passes it took.
// If the MRF doesn't settle within MaxIterations, the last labelling
// comes back along with a *ConvergenceTimeoutError.
func (fs FusionSolver)Solve(fe FusionEnergy, defocusConf, correspondenceConf emath.FloatGrid) (LabelGrid, int, error) {
	switch fs.Strategy {
	case "maxconfidence":
		return PickLabelWithMaxConfidence(defocusConf, correspondenceConf), 0, nil
	default:
		return fs.solveMRF(fe)
	}
}

// PickLabelWithMaxConfidence chooses correspondence wherever it is the
// more confident cue, and defocus everywhere else. No spatial terms.
func PickLabelWithMaxConfidence(defocusConf, correspondenceConf emath.FloatGrid) LabelGrid {
	lg := NewLabelGrid(defocusConf.Dx(), defocusConf.Dy())
	for i, set := range defocusConf.Less(correspondenceConf) {
		if set {
			lg.Labels[i] = LabelCorrespondence
		}
	}
	return lg
}

func (fs FusionSolver)solveMRF(fe FusionEnergy) (LabelGrid, int, error) {
	w, h := fe.Unary[0].Dx(), fe.Unary[0].Dy()
	bp, err := mrf.NewMaxProdBP(w, h, numLabels, fe.EnergyFunction(fs.FusionConfig))
	if err != nil {
		return LabelGrid{}, 0, err
	}
	bp.Initialize()
	bp.ClearAnswer()
	fs.logEnergy(bp, "start", 0, 0)

	prev := make([]float64, w*h)
	for i := range prev {
		prev[i] = unsetLabel
	}
	norm := math.Sqrt(float64(w*h))

	for it:=1; ; it++ {
		bp.Optimize(1)
		labels := LabelGrid{Width: w, Height: h, Labels: bp.Answer()}
		cur := labels.asFloats()
		rms := floats.Distance(prev, cur, 2) / norm
		fs.logEnergy(bp, "pass", it, rms)

		if rms <= fs.ConvergenceThreshold {
			return labels, it, nil
		} else if it >= fs.MaxIterations {
			return labels, it, &ConvergenceTimeoutError{Iterations: it, RMSChange: rms, Labels: labels}
		}
		prev = cur
	}
}

func (fs FusionSolver)logEnergy(bp *mrf.MaxProdBP, stage string, it int, rms float64) {
	if fs.Log == nil {
		return
	}
	es, ed := bp.SmoothnessEnergy(), bp.DataEnergy()
	fs.Log.WithFields(logrus.Fields{
		"stage": stage,
		"pass": it,
		"rms": rms,
	}).Debugf("MRF energy = %g (Es %g + Ed %g)", es+ed, es, ed)
}
