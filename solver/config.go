package solver

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultExhaustiveLimit is the number of variables up to which the classical
// solver enumerates all assignments.
const DefaultExhaustiveLimit = 20

// Config holds the options of a solver run. Zero values stand for defaults.
type Config struct {
	// Reads is the number of independent searches: annealing reads, descent
	// restarts, or the number of best assignments kept by exhaustive search.
	Reads int `yaml:"reads" json:"reads" validate:"gte=0"`
	// Sweeps is the number of sweeps of each annealing read, or the number of
	// perturbation rounds of each descent.
	Sweeps int `yaml:"sweeps" json:"sweeps" validate:"gte=0"`
	// MaxIterations caps the number of elementary steps of a run. 0 means no cap.
	MaxIterations int64 `yaml:"max_iterations" json:"max_iterations" validate:"gte=0"`
	// Timeout caps the duration of a run. 0 means no timeout.
	Timeout time.Duration `yaml:"timeout" json:"timeout" validate:"gte=0"`
	// Seed makes runs reproducible. When nil, a seed is drawn and reported in
	// the effective configuration.
	Seed      *int64 `yaml:"seed,omitempty" json:"seed,omitempty"`
	EarlyStop bool   `yaml:"early_stop" json:"early_stop"`
	// Workers is the number of concurrent goroutines. 0 means GOMAXPROCS.
	Workers         int      `yaml:"workers" json:"workers" validate:"gte=0"`
	ExhaustiveLimit int      `yaml:"exhaustive_limit" json:"exhaustive_limit" validate:"gte=0,lte=40"`
	BetaMin         float64  `yaml:"beta_min" json:"beta_min" validate:"gte=0"`
	BetaMax         float64  `yaml:"beta_max" json:"beta_max" validate:"gte=0"`
	Schedule        Schedule `yaml:"schedule" json:"schedule" validate:"omitempty,oneof=geometric linear"`
	Initial         Initial  `yaml:"initial" json:"initial" validate:"omitempty,oneof=random zero feasible"`

	Logger logrus.FieldLogger `yaml:"-" json:"-"`
}

var configValidate = validator.New()

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Reads:           10,
		Sweeps:          1000,
		Workers:         runtime.GOMAXPROCS(0),
		ExhaustiveLimit: DefaultExhaustiveLimit,
		Schedule:        Geometric,
		Initial:         Random,
	}
}

// A ConfigError is returned when a configuration is invalid.
type ConfigError struct {
	Reasons []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid solver configuration: %s", strings.Join(e.Reasons, "; "))
}

// Validate checks the values of cfg.
func (cfg Config) Validate() error {
	var reasons []string
	if err := configValidate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return errors.Wrap(err, "could not validate solver configuration")
		}
		for _, ferr := range verrs {
			reasons = append(reasons, fmt.Sprintf("%s: %v does not satisfy %s %s", ferr.Field(), ferr.Value(), ferr.Tag(), ferr.Param()))
		}
	}
	if cfg.BetaMax > 0 && cfg.BetaMin > cfg.BetaMax {
		reasons = append(reasons, fmt.Sprintf("BetaMin %v is greater than BetaMax %v", cfg.BetaMin, cfg.BetaMax))
	}
	if len(reasons) > 0 {
		return &ConfigError{Reasons: reasons}
	}
	return nil
}

// WithDefaults returns cfg where zero values were replaced by defaults.
// A nil Seed is replaced by a seed derived from the current time.
func (cfg Config) WithDefaults() Config {
	def := DefaultConfig()
	if cfg.Reads == 0 {
		cfg.Reads = def.Reads
	}
	if cfg.Sweeps == 0 {
		cfg.Sweeps = def.Sweeps
	}
	if cfg.Workers == 0 {
		cfg.Workers = def.Workers
	}
	if cfg.ExhaustiveLimit == 0 {
		cfg.ExhaustiveLimit = def.ExhaustiveLimit
	}
	if cfg.Schedule == "" {
		cfg.Schedule = def.Schedule
	}
	if cfg.Initial == "" {
		cfg.Initial = def.Initial
	}
	if cfg.Seed == nil {
		seed := time.Now().UnixNano()
		cfg.Seed = &seed
	}
	if cfg.Logger == nil {
		l := logrus.New()
		l.Out = io.Discard
		cfg.Logger = l
	}
	return cfg
}

// LoadConfig reads a YAML configuration from r and validates it.
// Durations are written as "1m30s".
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "could not parse solver configuration")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
