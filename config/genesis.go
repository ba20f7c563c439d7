// Package config loads the YAML genesis/network parameters a node
// needs to construct its types.Config and seed a fork-choice Store.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/devylongs/leanchoice/types"
)

// Genesis is the on-disk genesis parameter file. NumValidators is a
// fixed registry size for round-robin proposer assignment; there is no
// dynamic validator set.
type Genesis struct {
	NumValidators    uint64 `yaml:"num_validators"`
	GenesisTime      uint64 `yaml:"genesis_time"`
	SecondsPerSlot   uint64 `yaml:"seconds_per_slot"`
	IntervalsPerSlot uint64 `yaml:"intervals_per_slot"`
}

// ToConfig converts the loaded genesis parameters into a types.Config,
// filling in the package default for any zero-valued optional field.
func (g Genesis) ToConfig() types.Config {
	cfg := types.DefaultConfig(g.NumValidators, g.GenesisTime)
	if g.SecondsPerSlot != 0 {
		cfg.SecondsPerSlot = g.SecondsPerSlot
	}
	if g.IntervalsPerSlot != 0 {
		cfg.IntervalsPerSlot = g.IntervalsPerSlot
	}
	return cfg
}

// Load reads and parses a genesis YAML file from path.
func Load(path string) (Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, fmt.Errorf("read genesis config: %w", err)
	}
	var g Genesis
	if err := yaml.Unmarshal(data, &g); err != nil {
		return Genesis{}, fmt.Errorf("parse genesis config: %w", err)
	}
	if g.NumValidators == 0 {
		return Genesis{}, fmt.Errorf("genesis config: num_validators must be nonzero")
	}
	return g, nil
}
