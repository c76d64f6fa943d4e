package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/relsim/internal/experiment"
)

// Sink consumes a frame produced by the experiment runner.
type Sink interface {
	Render(experiment.Frame) error
}

func frameTitle(f experiment.Frame) string {
	return fmt.Sprintf("%s, body %d, %d points", f.Observable.Label(), f.Body, len(f.Points))
}

func formatValue(v float64, unit string) string {
	s := fmt.Sprintf("%.4g", v)
	if unit != "" {
		s += " " + unit
	}
	return s
}

// Colorbar renders a horizontal legend of width cells.
func Colorbar(cm Colormap, lo, hi float64, unit string, width int) string {
	var b strings.Builder
	b.WriteString(Label.Render(formatValue(lo, unit)) + " ")
	for i := 0; i < width; i++ {
		t := 0.5
		if width > 1 {
			t = float64(i) / float64(width-1)
		}
		b.WriteString(lipgloss.NewStyle().Foreground(hexColor(cm.At(t))).Render("█"))
	}
	b.WriteString(" " + Label.Render(formatValue(hi, unit)))
	return b.String()
}
