package physics

import (
	"sort"
	"strings"
)

// Observable selects one scalar quantity the engine can compute per body.
type Observable string

const (
	PulseDuration       Observable = "pulse_duration"
	FrameDragging       Observable = "frame_dragging"
	TimeDilation        Observable = "time_dilation"
	HorizonDilation     Observable = "horizon_dilation"
	DopplerFactor       Observable = "doppler_factor"
	SchwarzschildRadius Observable = "schwarzschild_radius"
)

var observableInfo = map[Observable]struct {
	label string
	unit  string
}{
	PulseDuration:       {"adjusted pulse duration", "s"},
	FrameDragging:       {"frame-dragging effect", "1/s"},
	TimeDilation:        {"gravitational time dilation", ""},
	HorizonDilation:     {"horizon dilation factor", ""},
	DopplerFactor:       {"doppler factor", ""},
	SchwarzschildRadius: {"schwarzschild radius", "m"},
}

// Observables lists every selectable observable, sorted by name.
func Observables() []Observable {
	out := make([]Observable, 0, len(observableInfo))
	for o := range observableInfo {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseObservable accepts the canonical name; dashes and case are normalized.
func ParseObservable(s string) (Observable, error) {
	o := Observable(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if _, ok := observableInfo[o]; !ok {
		return "", configErr("observable", "unknown observable %q", s)
	}
	return o, nil
}

func (o Observable) Label() string { return observableInfo[o].label }
func (o Observable) Unit() string  { return observableInfo[o].unit }
