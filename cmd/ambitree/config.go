package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/wlattner/ambitree/tree"
)

// fitOptions mirrors tree.Config in YAML-friendly form, loaded via
// --config as an alternative to individual flags.
type fitOptions struct {
	Criterion     string `yaml:"criterion"`
	SplitChoice   string `yaml:"split_choice"`
	SepNaN        bool   `yaml:"sep_nan"`
	CacheNodes    bool   `yaml:"cache_nodes"`
	PositiveClass int    `yaml:"positive_class"`
	PredChoice    string `yaml:"pred_choice"`
	NominalArity  []int  `yaml:"nominal_arity"`
}

func loadFitOptions(path string) (*fitOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	var opt fitOptions
	if err := yaml.Unmarshal(data, &opt); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	return &opt, nil
}

func (o *fitOptions) toConfig() (tree.Config, error) {
	cfg := tree.Config{
		SepNaN:        o.SepNaN,
		CacheNodes:    o.CacheNodes,
		PositiveClass: o.PositiveClass,
		NominalArity:  o.NominalArity,
	}

	switch o.Criterion {
	case "", "gini":
		cfg.Criterion = tree.Gini
	case "zero":
		cfg.Criterion = tree.Zero
	default:
		return cfg, errors.Errorf("unknown criterion %q", o.Criterion)
	}

	switch o.SplitChoice {
	case "", "single_max":
		cfg.SplitChoice = tree.SingleMax
	case "all_max":
		cfg.SplitChoice = tree.AllMax
	default:
		return cfg, errors.Errorf("unknown split_choice %q", o.SplitChoice)
	}

	switch o.PredChoice {
	case "", "majority":
		cfg.PredChoice = tree.Majority
	case "pure_majority":
		cfg.PredChoice = tree.PureMajority
	case "majority_general":
		cfg.PredChoice = tree.MajorityGeneral
	case "pure_majority_general":
		cfg.PredChoice = tree.PureMajorityGeneral
	default:
		return cfg, errors.Errorf("unknown pred_choice %q", o.PredChoice)
	}

	return cfg, nil
}
