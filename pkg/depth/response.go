package depth

import(
	"fmt"
	"image"

	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/emath"
	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/lightfield"
)

// ResponseScorer computes the two per-pixel depth cues for one
// refocused image.
type ResponseScorer struct {
	LaplacianKernelSize  int
	DefocusWindow        int
	CorrespondenceWindow int
}

func NewResponseScorer(c Config) ResponseScorer {
	return ResponseScorer{
		LaplacianKernelSize:  c.LaplacianKernelSize,
		DefocusWindow:        c.DefocusWindow,
		CorrespondenceWindow: c.CorrespondenceWindow,
	}
}

// DefocusResponse measures local sharpness: the box-averaged magnitude
// of the Laplacian, RMS-combined over the colour channels. Higher means
// better focused.
func (rs ResponseScorer)DefocusResponse(refocused emath.ColorGrid) emath.FloatGrid {
	var perChannel [emath.NumChannels]emath.FloatGrid
	emath.EachChannel(func(c int) {
		r := refocused.Channels[c].Laplacian(rs.LaplacianKernelSize)
		r.Abs()
		r = r.BoxMean(rs.DefocusWindow, rs.DefocusWindow)
		r.Square()
		perChannel[c] = r
	})
	return combineChannels(perChannel)
}

// CorrespondenceResponse measures how much the views disagree once each
// is shifted to focus at alpha: the per-pixel standard deviation across
// views, box-averaged and RMS-combined over the colour channels. Lower
// means more photo-consistent; this is a cost.
func (rs ResponseScorer)CorrespondenceResponse(lf lightfield.LightField, refocused emath.ColorGrid, alpha float64) (emath.FloatGrid, error) {
	ang := lf.AngularResolution()
	size := image.Point{refocused.Dx(), refocused.Dy()}
	for v:=0; v<ang.Y; v++ {
		for u:=0; u<ang.X; u++ {
			if lf.SubapertureImage(u, v) == nil {
				return emath.FloatGrid{}, fmt.Errorf("CorrespondenceResponse: missing view (%d,%d)", u, v)
			}
		}
	}

	var perChannel [emath.NumChannels]emath.FloatGrid
	emath.EachChannel(func(c int) {
		variance := refocused.Channels[c].NewFromThis()
		for v:=0; v<ang.Y; v++ {
			for u:=0; u<ang.X; u++ {
				dx, dy := lightfield.ViewShift(lf, u, v, alpha)
				diff := lightfield.AlignView(&lf.SubapertureImage(u, v).Channels[c], dx, dy, size)
				diff.Sub(refocused.Channels[c])
				diff.Square()
				variance.Add(diff)
			}
		}
		variance.DivConst(float64(ang.X * ang.Y))
		variance.Sqrt()

		r := variance.BoxMean(rs.CorrespondenceWindow, rs.CorrespondenceWindow)
		r.Square()
		perChannel[c] = r
	})
	return combineChannels(perChannel), nil
}

// combineChannels returns sqrt(mean over channels), given squared per-channel responses
func combineChannels(sq [emath.NumChannels]emath.FloatGrid) emath.FloatGrid {
	total := sq[0].Copy()
	for c:=1; c<emath.NumChannels; c++ {
		total.Add(sq[c])
	}
	total.DivConst(float64(emath.NumChannels))
	total.Sqrt()
	return total
}
