package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera projects points in a normalized [-1, 1] cube onto a 2D plane.
type Camera struct {
	Distance         float64
	Near             float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 6, Near: 0.1, RotX: -0.5, RotY: 0.6, Zoom: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }

// RotatePoint rotates a point around the camera's axes.
func (c *Camera) RotatePoint(p r3.Vec) r3.Vec {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Project converts a normalized point to screen coordinates.
// Returns x, y, depth, and visibility.
func (c *Camera) Project(p r3.Vec, sw, sh int) (int, int, float64, bool) {
	rot := r3.Scale(c.Zoom, c.RotatePoint(p))
	dist := c.Distance
	if rot.Z >= dist-c.Near {
		return 0, 0, 0, false
	}
	scale := dist / (dist - rot.Z)
	minDim := float64(sh)
	if float64(sw) < minDim {
		minDim = float64(sw)
	}
	pScale := minDim / 3.0
	sx := int(rot.X*scale*pScale) + sw/2
	sy := int(-rot.Y*scale*pScale) + sh/2
	return sx, sy, rot.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

// normalizer maps a box onto the [-1, 1] cube, preserving aspect ratio.
type normalizer struct {
	center r3.Vec
	inv    float64
}

func newNormalizer(lo, hi r3.Vec) normalizer {
	half := r3.Scale(0.5, r3.Sub(hi, lo))
	m := math.Max(half.X, math.Max(half.Y, half.Z))
	inv := 1.0
	if m > 0 {
		inv = 1 / m
	}
	return normalizer{center: r3.Scale(0.5, r3.Add(lo, hi)), inv: inv}
}

func (n normalizer) apply(p r3.Vec) r3.Vec {
	return r3.Scale(n.inv, r3.Sub(p, n.center))
}

var cubeEdges = [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {5, 6}, {6, 7}, {7, 4}, {0, 4}, {1, 5}, {2, 6}, {3, 7}}

// drawBox outlines the normalized box [lo, hi] on the canvas.
func drawBox(cv *Canvas, cam *Camera, lo, hi r3.Vec) {
	v := []r3.Vec{
		{X: lo.X, Y: lo.Y, Z: lo.Z}, {X: hi.X, Y: lo.Y, Z: lo.Z}, {X: hi.X, Y: hi.Y, Z: lo.Z}, {X: lo.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: lo.Y, Z: hi.Z}, {X: hi.X, Y: lo.Y, Z: hi.Z}, {X: hi.X, Y: hi.Y, Z: hi.Z}, {X: lo.X, Y: hi.Y, Z: hi.Z},
	}
	w, h := cv.SubWidth(), cv.SubHeight()
	for _, e := range cubeEdges {
		x1, y1, _, ok1 := cam.Project(v[e[0]], w, h)
		x2, y2, _, ok2 := cam.Project(v[e[1]], w, h)
		if ok1 || ok2 {
			cv.DrawLine(x1, y1, x2, y2)
		}
	}
}
