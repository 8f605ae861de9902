package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/deqscale/internal/dynamo"
	"github.com/san-kum/deqscale/internal/scaler"
	"github.com/san-kum/deqscale/internal/symbolic"
)

// ErrInvalidFile indicates a problem file that parses as YAML but does not
// describe a problem.
var ErrInvalidFile = errors.New("config: invalid problem file")

type ParameterConfig struct {
	Name  string  `yaml:"name"`
	Value float64 `yaml:"value"`
}

// ProblemFile is the YAML form of a scaler.Definition.
type ProblemFile struct {
	Name           string            `yaml:"name,omitempty"`
	Time           string            `yaml:"time,omitempty"`
	States         []string          `yaml:"states,flow"`
	Equations      []string          `yaml:"equations"`
	Parameters     []ParameterConfig `yaml:"parameters,omitempty"`
	TSpan          []float64         `yaml:"t_span,flow"`
	Y0             []float64         `yaml:"y0,flow"`
	MaxScaleFactor float64           `yaml:"max_scale_factor,omitempty"`
	Solver         SolverOptions     `yaml:"solver,omitempty"`
}

// SolverOptions is a YAML mapping whose key order is kept.
type SolverOptions dynamo.Options

func (o *SolverOptions) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d: solver must be a mapping", ErrInvalidFile, node.Line)
	}
	opts := make(SolverOptions, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		var v any
		if err := val.Decode(&v); err != nil {
			return err
		}
		opts = append(opts, dynamo.Option{Name: key.Value, Value: v})
	}
	*o = opts
	return nil
}

func (o SolverOptions) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, opt := range o {
		var val yaml.Node
		if err := val.Encode(opt.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: opt.Name},
			&val,
		)
	}
	return node, nil
}

func Load(path string) (*ProblemFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pf, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pf, nil
}

// Parse decodes a problem file. Unknown keys are rejected.
func Parse(data []byte) (*ProblemFile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	pf := &ProblemFile{}
	if err := dec.Decode(pf); err != nil {
		return nil, err
	}
	return pf, nil
}

func Save(path string, pf *ProblemFile) error {
	data, err := yaml.Marshal(pf)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Definition parses the equations and assembles a scaler.Definition. It does
// not validate sizes; scaler.NewProblem does that.
func (pf *ProblemFile) Definition() (scaler.Definition, error) {
	def := scaler.Definition{
		Name:           pf.Name,
		States:         symbolic.Symbols(pf.States...),
		Y0:             append([]float64(nil), pf.Y0...),
		MaxScaleFactor: pf.MaxScaleFactor,
		Options:        dynamo.Options(pf.Solver).Clone(),
	}
	if pf.Time != "" {
		def.Time = symbolic.S(pf.Time)
	}

	if len(pf.TSpan) != 2 {
		return def, fmt.Errorf("%w: t_span needs two values, got %d", ErrInvalidFile, len(pf.TSpan))
	}
	def.Span = scaler.TimeSpan{T0: pf.TSpan[0], Tf: pf.TSpan[1]}

	def.RHS = make([]symbolic.Expr, len(pf.Equations))
	for i, src := range pf.Equations {
		e, err := symbolic.Parse(src)
		if err != nil {
			return def, fmt.Errorf("equation %d %q: %w", i+1, src, err)
		}
		def.RHS[i] = e
	}

	for _, p := range pf.Parameters {
		def.Parameters = append(def.Parameters, scaler.Parameter{Symbol: symbolic.S(p.Name), Value: p.Value})
	}
	return def, nil
}

// Problem parses the file and builds a validated problem.
func (pf *ProblemFile) Problem() (*scaler.Problem, error) {
	def, err := pf.Definition()
	if err != nil {
		return nil, err
	}
	return scaler.NewProblem(def)
}

// FromDefinition is the inverse of Definition. Equations are written in a
// form Parse reads back.
func FromDefinition(def scaler.Definition) *ProblemFile {
	pf := &ProblemFile{
		Name:           def.Name,
		Time:           def.Time.Name(),
		States:         make([]string, len(def.States)),
		Equations:      make([]string, len(def.RHS)),
		TSpan:          []float64{def.Span.T0, def.Span.Tf},
		Y0:             append([]float64(nil), def.Y0...),
		MaxScaleFactor: def.MaxScaleFactor,
		Solver:         SolverOptions(def.Options.Clone()),
	}
	for i, s := range def.States {
		pf.States[i] = s.Name()
	}
	for i, e := range def.RHS {
		pf.Equations[i] = e.String()
	}
	for _, p := range def.Parameters {
		pf.Parameters = append(pf.Parameters, ParameterConfig{Name: p.Symbol.Name(), Value: p.Value})
	}
	return pf
}

// Clone returns a deep copy.
func (pf *ProblemFile) Clone() *ProblemFile {
	c := *pf
	c.States = append([]string(nil), pf.States...)
	c.Equations = append([]string(nil), pf.Equations...)
	c.Parameters = append([]ParameterConfig(nil), pf.Parameters...)
	c.TSpan = append([]float64(nil), pf.TSpan...)
	c.Y0 = append([]float64(nil), pf.Y0...)
	c.Solver = SolverOptions(dynamo.Options(pf.Solver).Clone())
	return &c
}
