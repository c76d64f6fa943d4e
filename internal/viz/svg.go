package viz

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/relsim/internal/experiment"
)

// SVG writes an orthographic X/Y scatter with a gradient colorbar.
type SVG struct {
	W             io.Writer
	Width, Height int
	Radius        float64
	Colormap      Colormap
}

func NewSVG(w io.Writer) *SVG {
	return &SVG{W: w, Width: 800, Height: 640, Radius: 1.5, Colormap: Viridis}
}

const colorbarHeight = 60

func (s *SVG) Render(f experiment.Frame) error {
	if s.Width <= 0 || s.Height <= colorbarHeight {
		return fmt.Errorf("viz: svg size %dx%d", s.Width, s.Height)
	}
	_, err := io.WriteString(s.W, s.document(f))
	return err
}

func (s *SVG) document(f experiment.Frame) string {
	plotH := s.Height - colorbarHeight
	lo, hi := f.Points.Bounds()

	// Add padding
	rangeX, rangeY := hi.X-lo.X, hi.Y-lo.Y
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX, minY := lo.X-rangeX*0.05, lo.Y-rangeY*0.05
	rangeX *= 1.1
	rangeY *= 1.1

	vlo, vhi, ok := f.Range()

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<title>%s</title>
<g stroke="none">
`, s.Width, s.Height, s.Width, s.Height, frameTitle(f))

	for i, p := range f.Points {
		v := math.NaN()
		if i < len(f.Field) {
			v = f.Field[i]
		}
		x := (p.X - minX) / rangeX * float64(s.Width)
		y := float64(plotH) - (p.Y-minY)/rangeY*float64(plotH)
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, x, y, s.Radius, s.Colormap.Map(v, vlo, vhi).Hex())
	}
	sb.WriteString("</g>\n")

	if ok {
		s.writeColorbar(&sb, plotH, vlo, vhi, f.Observable.Unit())
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func (s *SVG) writeColorbar(sb *strings.Builder, top int, lo, hi float64, unit string) {
	const stops = 10
	sb.WriteString(`<defs><linearGradient id="cbar" x1="0" x2="1" y1="0" y2="0">` + "\n")
	for i := 0; i <= stops; i++ {
		t := float64(i) / stops
		fmt.Fprintf(sb, `<stop offset="%.2f" stop-color="%s"/>`+"\n", t, s.Colormap.At(t).Hex())
	}
	sb.WriteString("</linearGradient></defs>\n")

	x0, w := float64(s.Width)*0.1, float64(s.Width)*0.8
	y0 := float64(top) + 15
	fmt.Fprintf(sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="14" fill="url(#cbar)"/>
<g fill="#cccccc" font-family="monospace" font-size="12">
<text x="%.1f" y="%.1f">%s</text>
<text x="%.1f" y="%.1f" text-anchor="end">%s</text>
</g>
`, x0, y0, w, x0, y0+30, formatValue(lo, unit), x0+w, y0+30, formatValue(hi, unit))
}

var _ Sink = (*SVG)(nil)
