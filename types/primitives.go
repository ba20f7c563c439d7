// Package types defines the primitive and composite types shared by the
// fork-choice core and its supporting layers.
package types

import "fmt"

// Slot counts protocol time units, monotonically, from genesis.
type Slot uint64

// Interval counts logical ticks since genesis; one slot holds
// Config.IntervalsPerSlot intervals.
type Interval uint64

// ValidatorIndex identifies a validator. Opaque to the core: stake
// weighting, if any, is applied by whoever pre-filters the vote set.
type ValidatorIndex uint64

// Root is an opaque fixed-width block identifier. Roots are totally
// ordered lexicographically for tie-breaking.
type Root [32]byte

// ZeroRoot denotes "none / genesis parent".
var ZeroRoot = Root{}

// IsZero reports whether r is the distinguished zero root.
func (r Root) IsZero() bool { return r == ZeroRoot }

// Short returns a short hex representation of r, for log lines.
func (r Root) Short() string { return fmt.Sprintf("%x", r[:4]) }

// Compare returns -1, 0, or 1 as r is lexicographically less than,
// equal to, or greater than other.
func (r Root) Compare(other Root) int {
	for i := 0; i < len(r); i++ {
		if r[i] != other[i] {
			if r[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Config carries the protocol-time parameters a Store is built with.
// INTERVALS_PER_SLOT is deliberately a field, not a bare constant: the
// correct cadence for a given network is a deployment choice, not
// something the fork-choice core should bake in.
type Config struct {
	NumValidators    uint64 `yaml:"num_validators"`
	GenesisTime      uint64 `yaml:"genesis_time"`
	SecondsPerSlot   uint64 `yaml:"seconds_per_slot"`
	IntervalsPerSlot uint64 `yaml:"intervals_per_slot"`
}

// SecondsPerInterval derives the interval length from the slot length
// and the configured interval cadence.
func (c Config) SecondsPerInterval() uint64 {
	return c.SecondsPerSlot / c.IntervalsPerSlot
}

// DefaultConfig returns the normative devnet parameters: 12-second
// slots divided into 4 intervals.
func DefaultConfig(numValidators, genesisTime uint64) Config {
	return Config{
		NumValidators:    numValidators,
		GenesisTime:      genesisTime,
		SecondsPerSlot:   12,
		IntervalsPerSlot: 4,
	}
}
