package emath

import(
	"image"
	"image/color"
	"sync"
)

const NumChannels = 3

// A ColorGrid is an RGB image held as one FloatGrid per channel, with
// channel values nominally in [0,1].
type ColorGrid struct {
	Channels [NumChannels]FloatGrid
}

func NewColorGrid(w, h int) ColorGrid {
	cg := ColorGrid{}
	for c:=0; c<NumChannels; c++ {
		cg.Channels[c] = NewFloatGrid(w, h)
	}
	return cg
}

// NewFilledColorGrid returns a grid where every pixel is `col`
func NewFilledColorGrid(w, h int, col Vec3) ColorGrid {
	cg := NewColorGrid(w, h)
	cg.Fill(col)
	return cg
}

// ColorGridFromImage converts any image into a ColorGrid, mapping each
// 16-bit channel into [0,1]. Alpha is ignored.
func ColorGridFromImage(img image.Image) ColorGrid {
	b := img.Bounds()
	cg := NewColorGrid(b.Dx(), b.Dy())
	for y:=b.Min.Y; y<b.Max.Y; y++ {
		for x:=b.Min.X; x<b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			cg.Set(x-b.Min.X, y-b.Min.Y, Vec3{float64(r)/0xFFFF, float64(g)/0xFFFF, float64(bl)/0xFFFF})
		}
	}
	return cg
}

func (cg *ColorGrid)Dx() int { return cg.Channels[0].Dx() }
func (cg *ColorGrid)Dy() int { return cg.Channels[0].Dy() }

func (cg *ColorGrid)At(x, y int) Vec3 {
	return Vec3{cg.Channels[0].Get(x,y), cg.Channels[1].Get(x,y), cg.Channels[2].Get(x,y)}
}

func (cg *ColorGrid)Set(x, y int, col Vec3) {
	for c:=0; c<NumChannels; c++ {
		cg.Channels[c].Set(x, y, col[c])
	}
}

func (cg *ColorGrid)Fill(col Vec3) {
	for c:=0; c<NumChannels; c++ {
		cg.Channels[c].Fill(col[c])
	}
}

func (cg *ColorGrid)Copy() ColorGrid {
	out := ColorGrid{}
	for c:=0; c<NumChannels; c++ {
		out.Channels[c] = cg.Channels[c].Copy()
	}
	return out
}

// CopyWhere copies whole pixels from `src` wherever the mask holds
func (cg *ColorGrid)CopyWhere(src ColorGrid, m Mask) {
	for c:=0; c<NumChannels; c++ {
		cg.Channels[c].CopyWhere(src.Channels[c], m)
	}
}

// Translate shifts every channel by (tx,ty) into a w x h grid; see FloatGrid.Translate
func (cg *ColorGrid)Translate(tx, ty float64, w, h int) ColorGrid {
	out := ColorGrid{}
	for c:=0; c<NumChannels; c++ {
		out.Channels[c] = cg.Channels[c].Translate(tx, ty, w, h)
	}
	return out
}

// EachChannel runs f once per channel, concurrently, and waits for all
// of them. f must only touch state belonging to its own channel.
func EachChannel(f func(c int)) {
	var wg sync.WaitGroup
	for c:=0; c<NumChannels; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			f(c)
		}(c)
	}
	wg.Wait()
}

// ToRGBA64 clamps each channel into [0,1] and returns a 16 bit image
func (cg *ColorGrid)ToRGBA64() *image.RGBA64 {
	img := image.NewRGBA64(image.Rect(0, 0, cg.Dx(), cg.Dy()))
	for y:=0; y<cg.Dy(); y++ {
		for x:=0; x<cg.Dx(); x++ {
			v := cg.At(x, y)
			v.FloorAt(0.0)
			v.CeilingAt(1.0)
			img.SetRGBA64(x, y, color.RGBA64{
				uint16(v[0] * float64(0xFFFF)),
				uint16(v[1] * float64(0xFFFF)),
				uint16(v[2] * float64(0xFFFF)),
				0xFFFF,
			})
		}
	}
	return img
}
