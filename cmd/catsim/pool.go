package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/adaptivecat/engine/internal/itemauthoring"
	"github.com/adaptivecat/engine/internal/multicat"
)

// poolFixture is the YAML shape of a simulation's item pool: a flat
// list of stimuli, each carrying one or more ζ tuples tagged by
// construct.
type poolFixture struct {
	Items []poolItem `yaml:"items"`
}

type poolItem struct {
	ID    string          `yaml:"id"`
	Zetas []poolZetaTuple `yaml:"zetas"`
}

type poolZetaTuple struct {
	Params map[string]any `yaml:"params"`
	Cats   []string       `yaml:"cats"`
}

// loadPool reads a YAML pool fixture and canonicalizes every ζ tuple's
// parameters the same way the item-authoring pipeline does.
func loadPool(path string) ([]multicat.Stimulus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pool fixture: %w", err)
	}

	var fixture poolFixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("parse pool fixture: %w", err)
	}

	stimuli := make([]multicat.Stimulus, 0, len(fixture.Items))
	for _, item := range fixture.Items {
		zetas := make([]multicat.ZetaTuple, 0, len(item.Zetas))
		for _, z := range item.Zetas {
			params, err := itemauthoring.CanonicalizeParams(z.Params, false)
			if err != nil {
				return nil, fmt.Errorf("item %s: %w", item.ID, err)
			}
			zetas = append(zetas, multicat.ZetaTuple{Params: params, Cats: z.Cats})
		}
		stimuli = append(stimuli, multicat.Stimulus{ID: item.ID, Zetas: zetas})
	}
	return stimuli, nil
}
