package oriel

import "github.com/go-gl/mathgl/mgl32"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float32
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// Vec4 returns the color as an mgl32.Vec4 for uniform upload.
func (c Color) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{c.R, c.G, c.B, c.A}
}

// Rect is an axis-aligned rectangle in screen pixels. The origin is the
// top-left corner, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Aspect returns Width/Height, or 1 for an empty rectangle.
func (r Rect) Aspect() float32 {
	if r.Height == 0 {
		return 1
	}
	return float32(r.Width / r.Height)
}

// BlendMode is the Blend attribute of a RasterizerState: how a fragment is
// combined with the color already in the target.
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // alpha over the target
	BlendAdd                       // src + dst
	BlendMultiply                  // src * dst, darkens
	BlendScreen                    // 1 - (1-src)(1-dst), lightens
	BlendNone                      // replaces the target, alpha included
)

// CullMode selects which triangle faces are discarded.
type CullMode uint8

const (
	CullBack  CullMode = iota // discard back faces (counter-clockwise winding is front)
	CullFront                 // discard front faces
	CullNone                  // draw both faces
)

func (m CullMode) String() string {
	switch m {
	case CullBack:
		return "back"
	case CullFront:
		return "front"
	case CullNone:
		return "none"
	default:
		return "unknown"
	}
}

// DepthFunc is the comparison used by the depth test.
type DepthFunc uint8

const (
	DepthLess DepthFunc = iota
	DepthLessEqual
	DepthEqual
	DepthGreater
	DepthGreaterEqual
	DepthNotEqual
	DepthAlways
	DepthNever
)

// Eye identifies one view of a stereo pair.
type Eye uint8

const (
	EyeLeft  Eye = iota // left eye
	EyeRight            // right eye
)

// Eyes lists both eyes in submission order.
var Eyes = [2]Eye{EyeLeft, EyeRight}

func (e Eye) String() string {
	if e == EyeLeft {
		return "left"
	}
	return "right"
}
