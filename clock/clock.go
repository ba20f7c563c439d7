// Package clock bridges wall-clock time to the discrete slot/interval
// time model the fork-choice core runs on. Every node must agree on
// slot boundaries to coordinate block proposals and attestations.
package clock

import (
	"time"

	"github.com/devylongs/leanchoice/types"
)

// SlotClock converts wall-clock time to consensus slots and intervals
// under a given network configuration. All time values are Unix
// timestamps in seconds.
type SlotClock struct {
	config   types.Config
	timeFunc func() time.Time
}

// New creates a SlotClock bound to cfg's genesis time and slot
// duration.
func New(cfg types.Config) *SlotClock {
	return &SlotClock{config: cfg, timeFunc: time.Now}
}

// NewWithTimeFunc creates a SlotClock with an injectable time source,
// for deterministic tests.
func NewWithTimeFunc(cfg types.Config, timeFunc func() time.Time) *SlotClock {
	return &SlotClock{config: cfg, timeFunc: timeFunc}
}

func (c *SlotClock) secondsSinceGenesis() uint64 {
	now := uint64(c.timeFunc().Unix())
	if now < c.config.GenesisTime {
		return 0
	}
	return now - c.config.GenesisTime
}

// CurrentSlot returns the current slot number (0 before genesis).
func (c *SlotClock) CurrentSlot() types.Slot {
	return types.Slot(c.secondsSinceGenesis() / c.config.SecondsPerSlot)
}

// CurrentInterval returns the current interval within the slot.
func (c *SlotClock) CurrentInterval() types.Interval {
	secondsIntoSlot := c.secondsSinceGenesis() % c.config.SecondsPerSlot
	return types.Interval(secondsIntoSlot / c.config.SecondsPerInterval())
}

// TotalIntervals returns the total intervals elapsed since genesis —
// the value a Store's logical clock should be advanced to.
func (c *SlotClock) TotalIntervals() types.Interval {
	return types.Interval(c.secondsSinceGenesis() / c.config.SecondsPerInterval())
}

// SlotStartTime returns the Unix timestamp when slot begins.
func (c *SlotClock) SlotStartTime(slot types.Slot) uint64 {
	return c.config.GenesisTime + uint64(slot)*c.config.SecondsPerSlot
}

// IsBeforeGenesis reports whether the clock's current time precedes
// genesis.
func (c *SlotClock) IsBeforeGenesis() bool {
	return uint64(c.timeFunc().Unix()) < c.config.GenesisTime
}
