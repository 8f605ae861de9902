package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/deqscale/internal/dynamo"
)

type ExportData struct {
	RunMetadata
	Times        []float64   `json:"times"`
	Trajectories [][]float64 `json:"trajectories"`
}

// ExportJSON writes a run and its trajectories, one per state, as indented JSON.
func ExportJSON(w io.Writer, meta *RunMetadata, sol *dynamo.Solution) error {
	data := ExportData{
		RunMetadata:  *meta,
		Times:        sol.T,
		Trajectories: sol.Y,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSONFile(path string, meta *RunMetadata, sol *dynamo.Solution) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return ExportJSON(file, meta, sol)
}
