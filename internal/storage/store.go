package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/deqscale/internal/dynamo"
	"github.com/san-kum/deqscale/internal/scaler"
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

type RunMetadata struct {
	ID             string             `json:"id"`
	Problem        string             `json:"problem"`
	Timestamp      time.Time          `json:"timestamp"`
	Time           string             `json:"time"`
	States         []string           `json:"states"`
	T0             float64            `json:"t0"`
	Tf             float64            `json:"tf"`
	Method         string             `json:"method"`
	Options        string             `json:"options,omitempty"`
	Status         string             `json:"status"`
	Message        string             `json:"message,omitempty"`
	Steps          int                `json:"steps"`
	Rejected       int                `json:"rejected"`
	Evaluations    int                `json:"evaluations"`
	MaxScaleFactor float64            `json:"max_scale_factor"`
	Maxima         map[string]float64 `json:"maxima,omitempty"`
}

// Save writes the metadata and trajectories of one integration of p. maxima
// may be nil. Run IDs are the problem name followed by a time-ordered UUID.
func (s *Store) Save(p *scaler.Problem, sol *dynamo.Solution, maxima scaler.Maxima) (string, error) {
	name := runName(p.Name())
	now := time.Now()
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	runID := name + "_" + id.String()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	span := p.TimeSpan()
	meta := RunMetadata{
		ID:             runID,
		Problem:        p.Name(),
		Timestamp:      now,
		Time:           p.Time().Name(),
		T0:             span.T0,
		Tf:             span.Tf,
		Method:         sol.Method,
		Status:         sol.Status.String(),
		Message:        sol.Message,
		Steps:          sol.Steps,
		Rejected:       sol.Rejected,
		Evaluations:    sol.Evaluations,
		MaxScaleFactor: p.MaxScaleFactor(),
	}
	for _, st := range p.States() {
		meta.States = append(meta.States, st.Name())
	}
	if opts := p.Options(); len(opts) > 0 {
		meta.Options = opts.String()
	}
	if maxima != nil {
		meta.Maxima = make(map[string]float64, len(maxima))
		for sym, v := range maxima {
			meta.Maxima[sym.Name()] = v
		}
	}

	if err := writeMetadata(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, "states.csv"), meta.Time, meta.States, sol); err != nil {
		return "", err
	}
	return runID, nil
}

func runName(name string) string {
	if name == "" {
		return "run"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ':
			return '_'
		}
		return r
	}, name)
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeStates(path, timeName string, states []string, sol *dynamo.Solution) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := append([]string{timeName}, states...)
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for k := 0; k < sol.Len(); k++ {
		row[0] = strconv.FormatFloat(sol.T[k], 'g', -1, 64)
		for i := 0; i < sol.Dim(); i++ {
			row[i+1] = strconv.FormatFloat(sol.Y[i][k], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns all readable runs, oldest first.
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

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadStates returns the sampled states row by row and their times.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	csvPath := filepath.Join(s.baseDir, runID, "states.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: %w", csvPath, i+1, err)
		}
		times = append(times, t)

		state := make([]float64, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s line %d: %w", csvPath, i+1, err)
			}
			state[j-1] = val
		}
		states = append(states, state)
	}

	return states, times, nil
}

// LoadSolution rebuilds the stored solution together with its metadata.
func (s *Store) LoadSolution(runID string) (*RunMetadata, *dynamo.Solution, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	rows, times, err := s.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}

	states := make([]dynamo.State, len(rows))
	for k, row := range rows {
		if len(row) != len(meta.States) {
			return nil, nil, fmt.Errorf("%w: run %s row %d has %d values for %d states",
				dynamo.ErrDimensionMismatch, runID, k, len(row), len(meta.States))
		}
		states[k] = row
	}

	sol := dynamo.NewSolution(meta.Method, times, states, len(meta.States))
	sol.Steps = meta.Steps
	sol.Rejected = meta.Rejected
	sol.Evaluations = meta.Evaluations
	sol.Message = meta.Message
	if meta.Status != dynamo.StatusSuccess.String() {
		sol.Status = dynamo.StatusFailed
	}
	return meta, sol, nil
}
