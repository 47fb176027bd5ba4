package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/crillab/goqubo/bf"
	"github.com/crillab/goqubo/compile"
	"github.com/crillab/goqubo/expr"
	"github.com/crillab/goqubo/maxsat"
	"github.com/crillab/goqubo/qubo"
	"github.com/crillab/goqubo/solver"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// An input is a model read from a file, along with the problem it was compiled from, if any.
type input struct {
	model   *qubo.Model
	problem *maxsat.Problem // set for WCNF files
	formula bf.Formula      // set for boolean formulas
}

// fileConfig is the content of a configuration file: solver options,
// and compilation options used for inputs that must be compiled.
type fileConfig struct {
	solver.Config `yaml:",inline"`
	Compile       compile.Options `yaml:"compile"`
}

var configValidate = validator.New()

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "could not open configuration %q", path)
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, errors.Wrapf(err, "could not parse configuration %q", path)
	}
	if err := cfg.Config.Validate(); err != nil {
		return cfg, err
	}
	if err := configValidate.Struct(cfg.Compile); err != nil {
		return cfg, errors.Wrap(err, "invalid compilation options")
	}
	return cfg, nil
}

// formulaModel compiles f into a model whose feasible solutions are the models of f.
func formulaModel(f bf.Formula, opts ...compile.Option) (*qubo.Model, error) {
	g := expr.New()
	for _, name := range bf.Vars(f) {
		g.Binary(name)
	}
	root := g.Constraint("formula", expr.Logic{Formula: f}, g.Const(1))
	return compile.Compile(g, root, nil, opts...)
}

func readModel(path string, opts ...compile.Option) (*input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %q", path)
	}
	defer f.Close()
	var in input
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		in.model, err = qubo.ReadJSON(f)
	case ".yaml", ".yml":
		in.model, err = qubo.ReadYAML(f)
	case ".qubo":
		in.model, err = qubo.ReadQbsolv(f)
	case ".wcnf":
		if in.problem, err = maxsat.ParseWCNF(f); err == nil {
			in.model, err = in.problem.QUBO(opts...)
		}
	case ".bf":
		if in.formula, err = bf.Parse(f); err == nil {
			in.model, err = formulaModel(in.formula, opts...)
		}
	default:
		return nil, errors.Errorf("invalid file format %q for %q", ext, path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %q", path)
	}
	return &in, nil
}

func writeModel(m *qubo.Model, path string) error {
	var write func(io.Writer) error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		write = m.WriteJSON
	case ".yaml", ".yml":
		write = m.WriteYAML
	case ".qubo":
		write = m.WriteQbsolv
	default:
		return errors.Errorf("invalid output format %q for %q", ext, path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create %q", path)
	}
	err = write(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func writeIsing(is *qubo.Ising, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create %q", path)
	}
	defer f.Close()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(is)
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err = enc.Encode(is); err == nil {
			err = enc.Close()
		}
	default:
		err = errors.Errorf("invalid Ising output format %q for %q", ext, path)
	}
	return errors.Wrap(err, "could not write Ising model")
}
