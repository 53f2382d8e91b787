// Package loot resolves weighted, quantity-ranged loot tables.
//
// A table is a list of slots resolved independently. Each slot holds
// entries with non-negative integer weights; one entry per slot is drawn
// with probability weight/total. A slot whose weights sum to zero yields
// nothing.
package loot

// Entry is one weighted outcome of a slot.
type Entry struct {
	Weight int
	Item   string
	Min    int // defaults to 1
	Max    int // defaults to Min
	NoDrop bool
}

// Quantity bounds with defaults applied.
func (e Entry) bounds() (lo, hi int) {
	lo, hi = e.Min, e.Max
	if lo <= 0 {
		lo = 1
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// Slot is an ordered list of entries from which one is drawn.
type Slot struct {
	Entries []Entry
}

// TotalWeight sums the weights of all entries.
func (s Slot) TotalWeight() int {
	total := 0
	for _, e := range s.Entries {
		total += e.Weight
	}
	return total
}

// Table is a named list of slots.
type Table struct {
	ID    string
	Slots []Slot
}

// Drop is a resolved item grant.
type Drop struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// Source is the random source used for resolution.
type Source interface {
	IntN(n int) int
	Range(lo, hi int) int
}
