package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/relsim/internal/experiment"
	"github.com/san-kum/relsim/internal/physics"
)

const (
	metadataFile = "metadata.json"
	pointsFile   = "points.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// BodyRecord is one body's outcome. Value is nil when the body failed,
// since JSON cannot carry NaN.
type BodyRecord struct {
	Name  string   `json:"name"`
	Mass  float64  `json:"mass"`
	Value *float64 `json:"value"`
	Error string   `json:"error,omitempty"`
}

type RunMetadata struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	Timestamp   time.Time    `json:"timestamp"`
	Observable  string       `json:"observable"`
	Doppler     string       `json:"doppler"`
	LaserRadius float64      `json:"laser_radius"`
	C           float64      `json:"c"`
	G           float64      `json:"g"`
	Seed        int64        `json:"seed"`
	Body        int          `json:"body"`
	NumPoints   int          `json:"num_points"`
	Bodies      []BodyRecord `json:"bodies"`
}

// Values returns per-body values with NaN for failed bodies.
func (m *RunMetadata) Values() []float64 {
	vals := make([]float64, len(m.Bodies))
	for i, b := range m.Bodies {
		vals[i] = math.NaN()
		if b.Value != nil {
			vals[i] = *b.Value
		}
	}
	return vals
}

func (s *Store) Save(label string, eng *physics.Engine, report *experiment.Report) (string, error) {
	if report == nil {
		return "", errors.New("storage: nil report")
	}
	runID := uuid.NewString()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	k := eng.Constants()
	meta := RunMetadata{
		ID:          runID,
		Label:       label,
		Timestamp:   time.Now(),
		Observable:  string(report.Config.Observable),
		Doppler:     string(eng.Doppler()),
		LaserRadius: eng.LaserRadius(),
		C:           k.C,
		G:           k.G,
		Seed:        report.Config.Seed,
		Body:        report.Config.Body,
		NumPoints:   len(report.Frame.Points),
		Bodies:      make([]BodyRecord, len(report.Results)),
	}
	for i, o := range report.Results {
		rec := BodyRecord{}
		if i < report.Config.Scene.Len() {
			b := report.Config.Scene.Bodies[i]
			rec.Name, rec.Mass = b.Name, b.Mass
		}
		if o.Err != nil {
			rec.Error = o.Err.Error()
		} else {
			v := o.Value
			rec.Value = &v
		}
		meta.Bodies[i] = rec
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writePoints(filepath.Join(runDir, pointsFile), report.Frame); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writePoints(path string, frame experiment.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"x", "y", "z", "value"}); err != nil {
		return err
	}
	for i, p := range frame.Points {
		v := math.NaN()
		if i < len(frame.Field) {
			v = frame.Field[i]
		}
		row := []string{
			strconv.FormatFloat(p.X, 'g', -1, 64),
			strconv.FormatFloat(p.Y, 'g', -1, 64),
			strconv.FormatFloat(p.Z, 'g', -1, 64),
			strconv.FormatFloat(v, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadFrame rebuilds the visualization frame saved with a run.
func (s *Store) LoadFrame(runID string) (experiment.Frame, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return experiment.Frame{}, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, pointsFile))
	if err != nil {
		return experiment.Frame{}, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return experiment.Frame{}, fmt.Errorf("run %s: %w", runID, err)
	}

	frame := experiment.Frame{
		Observable: physics.Observable(meta.Observable),
		Body:       meta.Body,
	}
	if len(records) < 2 {
		return frame, nil
	}

	frame.Points = make(physics.PointCloud, 0, len(records)-1)
	frame.Field = make([]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		var vals [4]float64
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return experiment.Frame{}, fmt.Errorf("run %s: row %d: %w", runID, i+1, err)
			}
			vals[j] = v
		}
		frame.Points = append(frame.Points, r3.Vec{X: vals[0], Y: vals[1], Z: vals[2]})
		frame.Field = append(frame.Field, vals[3])
	}

	return frame, nil
}
