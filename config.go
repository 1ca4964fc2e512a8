package mempool

import (
	"errors"
	"fmt"
)

const (
	// DefaultBlockSlots is the slot count requested for a pool's first block.
	DefaultBlockSlots = 1024

	// DefaultGrowthFactor doubles the requested slot count on every block
	// acquisition.
	DefaultGrowthFactor = 2.0
)

// Config holds pool tuning parameters.
type Config struct {
	// GrowthFactor is the multiplier applied to the slot count requested for
	// the next block after each block acquisition, a value from 1.0 to 2.0.
	//
	// 	- A value of 1.0 keeps every block the same size, at the cost of more
	// 		system allocator round trips for a growing working set.
	//
	// 	- A value of 2.0 doubles each block, bounding the number of system
	// 		allocator round trips logarithmically in the working set size, at
	// 		the cost of higher potential memory waste in the last block.
	GrowthFactor float64

	// BlockSlots is the slot count requested for the first block.
	BlockSlots int
}

// Validate reports whether the config holds usable values.
func (c Config) Validate() error {
	var errs []error
	if c.GrowthFactor < 1.0 || c.GrowthFactor > 2.0 {
		errs = append(
			errs,
			fmt.Errorf("invalid config: growth factor %v must be between 1.0 and 2.0", c.GrowthFactor),
		)
	}
	if c.BlockSlots <= 0 {
		errs = append(errs, fmt.Errorf("invalid config: block slots %d must be positive", c.BlockSlots))
	}
	return errors.Join(errs...)
}

// DefaultConfig returns the default pool configuration.
func DefaultConfig() Config {
	return Config{
		GrowthFactor: DefaultGrowthFactor, // Double each block to amortize system allocator round trips.
		BlockSlots:   DefaultBlockSlots,   // First block holds 1024 slots.
	}
}
