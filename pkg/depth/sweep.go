package depth

import(
	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/emath"
)

// AlphaSchedule returns the focus parameters of a sweep: resolution+1
// evenly spaced values from alphaMin, with the last one exactly alphaMax.
func AlphaSchedule(alphaMin, alphaMax float64, resolution int) []float64 {
	step := (alphaMax - alphaMin) / float64(resolution)
	alphas := make([]float64, resolution+1)
	for k := range alphas {
		alphas[k] = alphaMin + float64(k)*step
	}
	alphas[resolution] = alphaMax
	return alphas
}

// A CueTrack follows one cue through the sweep: per pixel, the best and
// second best responses seen so far, the alpha of the best, and the
// refocused colour at that alpha.
type CueTrack struct {
	Best   emath.FloatGrid
	Second emath.FloatGrid
	Alpha  emath.FloatGrid
	EDOF   emath.ColorGrid

	lowerIsBetter bool
}

func (ct *CueTrack)init(alpha float64, refocused emath.ColorGrid, r emath.FloatGrid) {
	ct.Best = r.Copy()
	ct.Second = r.Copy()
	ct.Alpha = emath.NewFilledFloatGrid(r.Dx(), r.Dy(), alpha)
	ct.EDOF = refocused.Copy()
}

// update applies one step. With strict inequalities, a tie with the
// current best changes nothing, so the first alpha seen wins.
func (ct *CueTrack)update(alpha float64, refocused emath.ColorGrid, r emath.FloatGrid) {
	var first, second emath.Mask
	if ct.lowerIsBetter {
		first = r.Less(ct.Best)
		second = r.Greater(ct.Best).And(r.Less(ct.Second))
	} else {
		first = r.Greater(ct.Best)
		second = r.Less(ct.Best).And(r.Greater(ct.Second))
	}

	ct.Best.CopyWhere(r, first)
	ct.Second.CopyWhere(r, second)
	ct.Alpha.SetWhere(alpha, first)
	ct.EDOF.CopyWhere(refocused, first)
}

// Confidence is the ratio of the best response to the runner up, oriented
// so that bigger is always more reliable. Denominators below eps are
// replaced by eps.
func (ct *CueTrack)Confidence(eps float64) emath.FloatGrid {
	var num, den emath.FloatGrid
	if ct.lowerIsBetter {
		num, den = ct.Second, ct.Best
	} else {
		num, den = ct.Best, ct.Second
	}
	conf := num.Copy()
	conf.SafeDiv(den, eps)
	return conf
}

// FocusSweepTracker keeps the running extrema of both cues over a
// single forward pass of increasing alpha.
type FocusSweepTracker struct {
	Defocus        CueTrack  // higher response is better
	Correspondence CueTrack  // lower response is better

	steps int
}

func NewFocusSweepTracker() *FocusSweepTracker {
	return &FocusSweepTracker{
		Correspondence: CueTrack{lowerIsBetter: true},
	}
}

// Observe folds in the responses for one alpha. The first call sets
// everything; alphas are expected in increasing order.
func (t *FocusSweepTracker)Observe(alpha float64, refocused emath.ColorGrid, defocusR, correspondenceR emath.FloatGrid) {
	if t.steps == 0 {
		t.Defocus.init(alpha, refocused, defocusR)
		t.Correspondence.init(alpha, refocused, correspondenceR)
	} else {
		t.Defocus.update(alpha, refocused, defocusR)
		t.Correspondence.update(alpha, refocused, correspondenceR)
	}
	t.steps++
}

func (t *FocusSweepTracker)Steps() int { return t.steps }
