package vision

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"
)

// HSV is a color in OpenCV scale: H in [0, 180], S and V in [0, 255].
type HSV struct {
	H, S, V float64
}

// HSVRange is an inclusive box in HSV space.
type HSVRange struct {
	Lower HSV `json:"lower"`
	Upper HSV `json:"upper"`
}

// Contains reports whether c falls inside r.
func (r HSVRange) Contains(c HSV) bool {
	return c.H >= r.Lower.H && c.H <= r.Upper.H &&
		c.S >= r.Lower.S && c.S <= r.Upper.S &&
		c.V >= r.Lower.V && c.V <= r.Upper.V
}

// toHSV converts an image color into OpenCV-scaled HSV.
func toHSV(img image.Image, x, y int) HSV {
	c, ok := colorful.MakeColor(img.At(x, y))
	if !ok {
		// fully transparent pixels carry no color
		return HSV{}
	}
	h, s, v := c.Hsv()
	return HSV{H: h / 2, S: s * 255, V: v * 255}
}

// Mask is a binary image over the bounds of its source.
type Mask struct {
	Rect image.Rectangle
	bits []bool
}

// NewMask returns an empty mask covering r.
func NewMask(r image.Rectangle) *Mask {
	return &Mask{Rect: r, bits: make([]bool, r.Dx()*r.Dy())}
}

func (m *Mask) index(x, y int) int {
	return (y-m.Rect.Min.Y)*m.Rect.Dx() + (x - m.Rect.Min.X)
}

// At reports whether (x, y) is set. Points outside the mask are unset.
func (m *Mask) At(x, y int) bool {
	if !(image.Point{x, y}.In(m.Rect)) {
		return false
	}
	return m.bits[m.index(x, y)]
}

// Set marks (x, y).
func (m *Mask) Set(x, y int, v bool) {
	m.bits[m.index(x, y)] = v
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// Threshold builds one mask per range set; a pixel joins a mask when any range of the set
// contains it.
func Threshold(img image.Image, sets ...[]HSVRange) []*Mask {
	b := img.Bounds()
	masks := make([]*Mask, len(sets))
	for i := range masks {
		masks[i] = NewMask(b)
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := toHSV(img, x, y)
			for i, ranges := range sets {
				for _, r := range ranges {
					if r.Contains(c) {
						masks[i].Set(x, y, true)
						break
					}
				}
			}
		}
	}
	return masks
}

// Close applies a morphological closing (dilate, then erode) with a square kernel of the
// given radius. Pixels outside the mask never contribute.
func Close(m *Mask, radius int) *Mask {
	if radius <= 0 {
		return m
	}
	return morph(morph(m, radius, true), radius, false)
}

// morph dilates when dilate is true and erodes otherwise.
func morph(m *Mask, radius int, dilate bool) *Mask {
	out := NewMask(m.Rect)
	for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
		for x := m.Rect.Min.X; x < m.Rect.Max.X; x++ {
			out.Set(x, y, window(m, x, y, radius, dilate))
		}
	}
	return out
}

func window(m *Mask, cx, cy, radius int, dilate bool) bool {
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			if !(image.Point{x, y}.In(m.Rect)) {
				continue
			}
			if m.At(x, y) == dilate {
				return dilate
			}
		}
	}
	return !dilate
}
