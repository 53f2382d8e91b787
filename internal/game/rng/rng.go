// Package rng provides the session-local random source used by encounters.
//
// The generator is a PCG from math/rand/v2 whose full state can be captured
// and restored, so a resumed encounter draws exactly the numbers the
// original would have drawn.
package rng

import (
	"fmt"
	"math/rand/v2"
)

// streamSalt separates the PCG stream from the seed value.
const streamSalt = 0x9e3779b97f4a7c15

// RNG is a deterministic random source with draw counting.
// It is not safe for concurrent use; each encounter session owns one.
type RNG struct {
	seed int64
	pcg  *rand.PCG
	r    *rand.Rand
	pos  int64
}

// New creates a generator from a seed.
func New(seed int64) *RNG {
	pcg := rand.NewPCG(uint64(seed), uint64(seed)^streamSalt)
	return &RNG{seed: seed, pcg: pcg, r: rand.New(pcg)}
}

// IntN returns a uniform integer in [0, n). Returns 0 when n <= 0
// without consuming a draw.
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	r.pos++
	return r.r.IntN(n)
}

// Range returns a uniform integer in [lo, hi]. If hi <= lo, lo is returned
// without consuming a draw.
func (r *RNG) Range(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

// Chance reports whether a roll succeeds with the given percent probability.
// Always consumes one draw.
func (r *RNG) Chance(percent float64) bool {
	r.pos++
	return r.r.Float64()*100 < percent
}

// Seed returns the seed the generator was created with.
func (r *RNG) Seed() int64 { return r.seed }

// Position returns the number of draws made since creation.
func (r *RNG) Position() int64 { return r.pos }

// State is a serializable capture of a generator.
type State struct {
	Seed     int64  `json:"seed"`
	Position int64  `json:"position"`
	PCG      []byte `json:"pcg"`
}

// State captures the generator so it can be restored later.
func (r *RNG) State() (State, error) {
	b, err := r.pcg.MarshalBinary()
	if err != nil {
		return State{}, fmt.Errorf("marshaling pcg state: %w", err)
	}
	return State{Seed: r.seed, Position: r.pos, PCG: b}, nil
}

// Restore rebuilds a generator from a captured state.
func Restore(st State) (*RNG, error) {
	g := New(st.Seed)
	if err := g.pcg.UnmarshalBinary(st.PCG); err != nil {
		return nil, fmt.Errorf("restoring pcg state: %w", err)
	}
	g.pos = st.Position
	return g, nil
}
