package main

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/adaptivecat/engine/internal/cat"
)

// runConfig is the simulator's own TOML run configuration: which
// estimator/selector/stopping rule to use per construct.
type runConfig struct {
	Constructs map[string]constructConfig `toml:"constructs"`
	Stopping   stoppingConfig             `toml:"stopping"`
	Seed       int64                      `toml:"seed"`
}

type constructConfig struct {
	Method        string    `toml:"method"`
	Selector      string    `toml:"selector"`
	ThetaMin      float64   `toml:"theta_min"`
	ThetaMax      float64   `toml:"theta_max"`
	PriorDist     string    `toml:"prior_dist"`
	PriorParams   []float64 `toml:"prior_params"`
	NStartItems   int       `toml:"n_start_items"`
	StartSelector string    `toml:"start_selector"`
}

type stoppingConfig struct {
	Kind      string             `toml:"kind"` // "n_items", "se_plateau", "se_threshold", or "" for none
	Operator  string             `toml:"operator"`
	Required  map[string]int     `toml:"required"`
	Threshold map[string]float64 `toml:"threshold"`
	Patience  map[string]int     `toml:"patience"`
	Tolerance map[string]float64 `toml:"tolerance"`
}

func loadRunConfig(path string) (*runConfig, error) {
	var cfg runConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("parse run config: %w", err)
	}
	return &cfg, nil
}

func (cc constructConfig) toCatOptions(seed int64) cat.CatOptions {
	return cat.CatOptions{
		Method:        cc.Method,
		Selector:      cc.Selector,
		ThetaMin:      cc.ThetaMin,
		ThetaMax:      cc.ThetaMax,
		PriorDist:     cc.PriorDist,
		PriorParams:   cc.PriorParams,
		NStartItems:   cc.NStartItems,
		StartSelector: cc.StartSelector,
		Seed:          seed,
	}
}
