package viz

import (
	"fmt"
	"io"
	"math"

	"github.com/san-kum/relsim/internal/experiment"
)

// Terminal draws a frame as a braille scatter with a colorbar underneath.
type Terminal struct {
	W             io.Writer
	Width, Height int
	Camera        *Camera
	Colormap      Colormap
	// Box outlines the sampled volume.
	Box bool
}

func NewTerminal(w io.Writer, width, height int) *Terminal {
	return &Terminal{W: w, Width: width, Height: height, Camera: NewCamera(), Colormap: Viridis, Box: true}
}

func (t *Terminal) Render(f experiment.Frame) error {
	if t.Width <= 0 || t.Height <= 0 {
		return fmt.Errorf("viz: terminal size %dx%d", t.Width, t.Height)
	}
	cam := t.Camera
	if cam == nil {
		cam = NewCamera()
	}

	cv := NewCanvas(t.Width, t.Height)
	lo, hi := f.Points.Bounds()
	norm := newNormalizer(lo, hi)
	if t.Box && len(f.Points) > 0 {
		drawBox(cv, cam, norm.apply(lo), norm.apply(hi))
	}

	w, h := cv.SubWidth(), cv.SubHeight()
	for i, p := range f.Points {
		x, y, _, ok := cam.Project(norm.apply(p), w, h)
		if !ok {
			continue
		}
		v := math.NaN()
		if i < len(f.Field) {
			v = f.Field[i]
		}
		cv.Plot(x, y, v)
	}

	vlo, vhi, ok := f.Range()
	if _, err := fmt.Fprintln(t.W, Title.Render(frameTitle(f))); err != nil {
		return err
	}
	if _, err := io.WriteString(t.W, cv.Colorize(t.Colormap, vlo, vhi)); err != nil {
		return err
	}
	legend := ErrorText.Render("no finite values to color")
	if ok {
		legend = Colorbar(t.Colormap, vlo, vhi, f.Observable.Unit(), t.Width/2)
	}
	_, err := fmt.Fprintln(t.W, legend)
	return err
}

var _ Sink = (*Terminal)(nil)
