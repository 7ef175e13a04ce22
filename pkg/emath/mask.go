package emath

// A Mask is a per-pixel boolean grid, laid out the same way as the
// FloatGrid it was derived from.
type Mask []bool

// And returns the elementwise conjunction of two masks
func (m1 Mask)And(m2 Mask) Mask {
	out := make(Mask, len(m1))
	for i := range m1 {
		out[i] = m1[i] && m2[i]
	}
	return out
}

// Count returns how many pixels are set
func (m Mask)Count() int {
	n := 0
	for _, set := range m {
		if set {
			n++
		}
	}
	return n
}
