// Package mrf minimises pairwise energies over a 4-connected pixel
// grid, using min-sum loopy belief propagation (max-product BP in the
// log domain).
//
// The energy of a labelling L is
//
//	E(L) = sum_p Data(p, L[p]) + sum_{p~q} Smooth(p, q, L[p], L[q])
//
// Costs are supplied as closures, so any tables they read are owned by
// the caller and no state is shared between solvers.
package mrf

import(
	"fmt"
	"math"
)

type Label = int
type CostVal = float64

// DataCostFunc returns the cost of giving pixel `pix` the label `l`.
// Pixels are numbered row-major, pix = y*width + x.
type DataCostFunc func(pix int, l Label) CostVal

// SmoothCostFunc returns the cost of neighbours pix1, pix2 taking
// labels l1, l2.
type SmoothCostFunc func(pix1, pix2 int, l1, l2 Label) CostVal

// An EnergyFunction bundles the two cost terms. A nil Smooth means
// there is no pairwise term.
type EnergyFunction struct {
	Data   DataCostFunc
	Smooth SmoothCostFunc
}

// NoSmoothness is a pairwise term that is always zero.
func NoSmoothness(pix1, pix2 int, l1, l2 Label) CostVal { return 0 }

// Potts returns a pairwise term costing `lambda` whenever neighbours disagree.
func Potts(lambda CostVal) SmoothCostFunc {
	return func(pix1, pix2 int, l1, l2 Label) CostVal {
		if l1 == l2 {
			return 0
		}
		return lambda
	}
}

// Directions a message can arrive from
const(
	fromLeft = iota
	fromRight
	fromAbove
	fromBelow
	numDirs
)

func opposite(d int) int { return d ^ 1 }

// MaxProdBP is a belief propagation solver for one grid. It is not safe
// for concurrent use.
type MaxProdBP struct {
	width, height, nLabels int
	energy                 EnergyFunction

	data         []CostVal           // [pix*nLabels + l]
	messages     [numDirs][]CostVal  // incoming messages, [pix*nLabels + l]
	answer       []Label
	initialized  bool
	iterations   int
}

func NewMaxProdBP(width, height, nLabels int, energy EnergyFunction) (*MaxProdBP, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("mrf: bad grid size %dx%d", width, height)
	} else if nLabels < 2 {
		return nil, fmt.Errorf("mrf: need at least two labels, got %d", nLabels)
	} else if energy.Data == nil {
		return nil, fmt.Errorf("mrf: energy function has no data term")
	}

	if energy.Smooth == nil {
		energy.Smooth = NoSmoothness
	}

	return &MaxProdBP{
		width:   width,
		height:  height,
		nLabels: nLabels,
		energy:  energy,
		answer:  make([]Label, width*height),
	}, nil
}

func (bp *MaxProdBP)Width() int      { return bp.width }
func (bp *MaxProdBP)Height() int     { return bp.height }
func (bp *MaxProdBP)NumLabels() int  { return bp.nLabels }
func (bp *MaxProdBP)Iterations() int { return bp.iterations }

// Initialize evaluates the data costs once and zeroes all messages.
func (bp *MaxProdBP)Initialize() {
	n := bp.width * bp.height
	bp.data = make([]CostVal, n*bp.nLabels)
	for p:=0; p<n; p++ {
		for l:=0; l<bp.nLabels; l++ {
			bp.data[p*bp.nLabels + l] = bp.energy.Data(p, l)
		}
	}
	for d:=0; d<numDirs; d++ {
		bp.messages[d] = make([]CostVal, n*bp.nLabels)
	}
	bp.iterations = 0
	bp.initialized = true
}

// ClearAnswer resets the labelling to all zeros.
func (bp *MaxProdBP)ClearAnswer() {
	for i := range bp.answer {
		bp.answer[i] = 0
	}
}

// SetLabel overrides the current label of one pixel.
func (bp *MaxProdBP)SetLabel(pix int, l Label) { bp.answer[pix] = l }

// Answer returns a copy of the current labelling, row-major.
func (bp *MaxProdBP)Answer() []Label {
	out := make([]Label, len(bp.answer))
	copy(out, bp.answer)
	return out
}

// neighbour returns the pixel that receives a message arriving at it
// from direction d when sent by q, or -1 off the edge of the grid.
func (bp *MaxProdBP)neighbour(q, d int) int {
	x, y := q % bp.width, q / bp.width
	switch d {
	case fromLeft:  if x+1 < bp.width  { return q+1 }
	case fromRight: if x > 0           { return q-1 }
	case fromAbove: if y+1 < bp.height { return q+bp.width }
	case fromBelow: if y > 0           { return q-bp.width }
	}
	return -1
}

// Optimize runs `iterations` synchronous message passing sweeps, then
// updates the labelling to the per-pixel minimum belief. Ties go to the
// lowest label.
func (bp *MaxProdBP)Optimize(iterations int) {
	if !bp.initialized {
		bp.Initialize()
	}

	n := bp.width * bp.height
	nl := bp.nLabels
	belief := make([]CostVal, nl)
	msg := make([]CostVal, nl)

	for it:=0; it<iterations; it++ {
		var next [numDirs][]CostVal
		for d:=0; d<numDirs; d++ {
			next[d] = make([]CostVal, n*nl)
		}

		for q:=0; q<n; q++ {
			bp.beliefInto(q, belief)

			for d:=0; d<numDirs; d++ {
				p := bp.neighbour(q, d)
				if p < 0 {
					continue
				}
				// Leave out what p told q last time
				excl := bp.messages[opposite(d)][q*nl : (q+1)*nl]

				minMsg := math.Inf(1)
				for lp:=0; lp<nl; lp++ {
					best := math.Inf(1)
					for lq:=0; lq<nl; lq++ {
						v := belief[lq] - excl[lq] + bp.energy.Smooth(q, p, lq, lp)
						if v < best {
							best = v
						}
					}
					msg[lp] = best
					if best < minMsg {
						minMsg = best
					}
				}
				for lp:=0; lp<nl; lp++ {
					next[d][p*nl + lp] = msg[lp] - minMsg
				}
			}
		}

		bp.messages = next
		bp.iterations++
	}

	for p:=0; p<n; p++ {
		bp.beliefInto(p, belief)
		bestL := 0
		for l:=1; l<nl; l++ {
			if belief[l] < belief[bestL] {
				bestL = l
			}
		}
		bp.answer[p] = bestL
	}
}

func (bp *MaxProdBP)beliefInto(p int, belief []CostVal) {
	nl := bp.nLabels
	for l:=0; l<nl; l++ {
		b := bp.data[p*nl + l]
		for d:=0; d<numDirs; d++ {
			b += bp.messages[d][p*nl + l]
		}
		belief[l] = b
	}
}

// DataEnergy is the data term of the current labelling
func (bp *MaxProdBP)DataEnergy() CostVal {
	e := 0.0
	for p, l := range bp.answer {
		e += bp.energy.Data(p, l)
	}
	return e
}

// SmoothnessEnergy is the pairwise term of the current labelling
func (bp *MaxProdBP)SmoothnessEnergy() CostVal {
	e := 0.0
	for y:=0; y<bp.height; y++ {
		for x:=0; x<bp.width; x++ {
			p := y*bp.width + x
			if x+1 < bp.width {
				e += bp.energy.Smooth(p, p+1, bp.answer[p], bp.answer[p+1])
			}
			if y+1 < bp.height {
				e += bp.energy.Smooth(p, p+bp.width, bp.answer[p], bp.answer[p+bp.width])
			}
		}
	}
	return e
}

func (bp *MaxProdBP)TotalEnergy() CostVal {
	return bp.DataEnergy() + bp.SmoothnessEnergy()
}
