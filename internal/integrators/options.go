package integrators

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/deqscale/internal/dynamo"
)

// Option names understood by IVP.
const (
	OptMethod    = "method"
	OptRelTol    = "rtol"
	OptAbsTol    = "atol"
	OptFirstStep = "first_step"
	OptMaxStep   = "max_step"
	OptMinStep   = "min_step"
	OptMaxSteps  = "max_steps"
	OptStep      = "step"
)

// Config is the decoded form of a dynamo.Options list. Zero step sizes mean
// "choose automatically".
type Config struct {
	Method    string
	RelTol    float64
	AbsTol    float64
	FirstStep float64
	MaxStep   float64
	MinStep   float64
	MaxSteps  int
	Step      float64
}

func DefaultConfig() Config {
	return Config{
		Method:   "RK45",
		RelTol:   1e-3,
		AbsTol:   1e-6,
		MaxStep:  math.Inf(1),
		MaxSteps: 100000,
	}
}

// Decode applies opts on top of DefaultConfig. Names it does not know are
// returned in ignored, in the order given.
func Decode(opts dynamo.Options) (cfg Config, ignored []string, err error) {
	cfg = DefaultConfig()
	for _, opt := range opts {
		switch opt.Name {
		case OptMethod:
			s, ok := opt.Value.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return cfg, ignored, invalidOption(opt, "want a method name")
			}
			cfg.Method = strings.TrimSpace(s)
		case OptRelTol:
			if cfg.RelTol, err = nonNegative(opt); err != nil {
				return cfg, ignored, err
			}
		case OptAbsTol:
			if cfg.AbsTol, err = nonNegative(opt); err != nil {
				return cfg, ignored, err
			}
		case OptFirstStep:
			if cfg.FirstStep, err = positive(opt); err != nil {
				return cfg, ignored, err
			}
		case OptMaxStep:
			if cfg.MaxStep, err = positive(opt); err != nil {
				return cfg, ignored, err
			}
		case OptMinStep:
			if cfg.MinStep, err = nonNegative(opt); err != nil {
				return cfg, ignored, err
			}
		case OptStep:
			if cfg.Step, err = positive(opt); err != nil {
				return cfg, ignored, err
			}
		case OptMaxSteps:
			v, err := positive(opt)
			if err != nil {
				return cfg, ignored, err
			}
			if v != math.Trunc(v) || v > math.MaxInt32 {
				return cfg, ignored, invalidOption(opt, "want a whole number")
			}
			cfg.MaxSteps = int(v)
		default:
			ignored = append(ignored, opt.Name)
		}
	}
	if cfg.RelTol == 0 && cfg.AbsTol == 0 {
		return cfg, ignored, fmt.Errorf("%w: rtol and atol are both zero", dynamo.ErrInvalidOption)
	}
	return cfg, ignored, nil
}

func invalidOption(opt dynamo.Option, reason string) error {
	return fmt.Errorf("%w: %s=%v: %s", dynamo.ErrInvalidOption, opt.Name, opt.Value, reason)
}

func positive(opt dynamo.Option) (float64, error) {
	v, err := toFloat(opt)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, invalidOption(opt, "must be positive")
	}
	return v, nil
}

func nonNegative(opt dynamo.Option) (float64, error) {
	v, err := toFloat(opt)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, invalidOption(opt, "must not be negative")
	}
	return v, nil
}

// toFloat accepts any Go number or a numeric string, which is what YAML and
// command-line flags hand over.
func toFloat(opt dynamo.Option) (float64, error) {
	var v float64
	switch x := opt.Value.(type) {
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int32:
		v = float64(x)
	case int64:
		v = float64(x)
	case uint:
		v = float64(x)
	case uint32:
		v = float64(x)
	case uint64:
		v = float64(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, invalidOption(opt, "want a number")
		}
		v = f
	default:
		return 0, invalidOption(opt, "want a number")
	}
	if math.IsNaN(v) {
		return 0, invalidOption(opt, "want a number")
	}
	return v, nil
}
