package compile

import (
	"io"

	"github.com/crillab/goqubo/expr"
	"github.com/sirupsen/logrus"
)

// DefaultMaxAuxiliary is the default cap on the number of auxiliary
// variables created by degree reduction.
const DefaultMaxAuxiliary = 10000

// Options tune a compilation. The zero value is valid.
type Options struct {
	// OneHotStrength is the strength of injected exactly-one constraints
	// whose domain does not specify one. 0 means encode.DefaultOneHotStrength.
	OneHotStrength float64 `yaml:"onehot_strength" json:"onehot_strength" validate:"gte=0"`
	// IntegerEncoding is the encoding of integer ranges that do not specify one.
	IntegerEncoding expr.IntegerEncoding `yaml:"integer_encoding" json:"integer_encoding" validate:"omitempty,oneof=onehot log"`
	// MaxAuxiliary caps the number of auxiliary variables. 0 means DefaultMaxAuxiliary.
	MaxAuxiliary int `yaml:"max_auxiliary" json:"max_auxiliary" validate:"gte=0"`
	// ReductionStrength is the strength of every reduction gadget.
	// 0 means 1 plus the sum of the absolute coefficients of the reduced terms.
	ReductionStrength float64 `yaml:"reduction_strength" json:"reduction_strength" validate:"gte=0"`

	Logger logrus.FieldLogger `yaml:"-" json:"-" hash:"ignore"`
}

// An Option modifies Options.
type Option func(*Options)

// WithOneHotStrength sets the default strength of injected exactly-one constraints.
func WithOneHotStrength(s float64) Option {
	return func(o *Options) { o.OneHotStrength = s }
}

// WithIntegerEncoding sets the default encoding of integer ranges.
func WithIntegerEncoding(e expr.IntegerEncoding) Option {
	return func(o *Options) { o.IntegerEncoding = e }
}

// WithMaxAuxiliary caps the number of auxiliary variables.
func WithMaxAuxiliary(n int) Option {
	return func(o *Options) { o.MaxAuxiliary = n }
}

// WithReductionStrength sets a fixed strength for reduction gadgets.
func WithReductionStrength(s float64) Option {
	return func(o *Options) { o.ReductionStrength = s }
}

// WithLogger sets the logger used to report compilation steps.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithOptions replaces all options at once, typically with values read from a file.
func WithOptions(opts Options) Option {
	return func(o *Options) {
		logger := o.Logger
		*o = opts
		if o.Logger == nil {
			o.Logger = logger
		}
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

func newOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.MaxAuxiliary == 0 {
		o.MaxAuxiliary = DefaultMaxAuxiliary
	}
	if o.Logger == nil {
		o.Logger = discardLogger()
	}
	return o
}
