package viz

import (
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Colormap interpolates between evenly spaced color stops in Lab space.
type Colormap struct {
	Name  string
	stops []colorful.Color
	nan   colorful.Color
}

func newColormap(name string, hexes ...string) Colormap {
	cm := Colormap{Name: name, nan: mustHex("#808080")}
	for _, h := range hexes {
		cm.stops = append(cm.stops, mustHex(h))
	}
	return cm
}

var (
	Viridis = newColormap("viridis",
		"#440154", "#482878", "#3e4989", "#31688e", "#26828e",
		"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725")
	Inferno = newColormap("inferno",
		"#000004", "#1b0c41", "#4a0c6b", "#781c6d", "#a52c60",
		"#cf4446", "#ed6925", "#fb9b06", "#f7d13d", "#fcffa4")

	Colormaps = []Colormap{Viridis, Inferno}
)

// GetColormap returns a colormap by name, defaulting to viridis.
func GetColormap(name string) Colormap {
	for _, cm := range Colormaps {
		if cm.Name == name {
			return cm
		}
	}
	return Viridis
}

// At returns the color at t in [0, 1]; t is clamped.
func (cm Colormap) At(t float64) colorful.Color {
	if math.IsNaN(t) {
		return cm.nan
	}
	t = math.Max(0, math.Min(1, t))
	seg := t * float64(len(cm.stops)-1)
	i := int(seg)
	if i >= len(cm.stops)-1 {
		return cm.stops[len(cm.stops)-1]
	}
	return cm.stops[i].BlendLab(cm.stops[i+1], seg-float64(i)).Clamped()
}

// Map places v within [lo, hi]. A degenerate range maps to the middle.
func (cm Colormap) Map(v, lo, hi float64) colorful.Color {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return cm.nan
	}
	if hi <= lo {
		return cm.At(0.5)
	}
	return cm.At((v - lo) / (hi - lo))
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func hexColor(c colorful.Color) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}
