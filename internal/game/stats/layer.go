package stats

import "fmt"

// Def is the intrinsic definition of a stat: a base value at level 1
// plus linear growth per level above 1.
type Def struct {
	Base     float64
	PerLevel float64
}

// At returns the intrinsic value at the given level.
func (d Def) At(level int) float64 {
	if level < 1 {
		level = 1
	}
	return d.Base + d.PerLevel*float64(level-1)
}

// Table maps stats to their definitions. Missing stats are zero.
type Table map[Stat]Def

// With returns a copy of t where entries from override replace the
// originals. Neither input is modified.
func (t Table) With(override Table) Table {
	out := make(Table, len(t)+len(override))
	for s, d := range t {
		out[s] = d
	}
	for s, d := range override {
		out[s] = d
	}
	return out
}

// Source is anything that exposes the inputs of stat computation.
// Characters, enemies and in-combat actor states implement it.
type Source interface {
	Level() int
	StatDef(s Stat) Def
	Modifiers() []Modifier
}

// Effective computes the effective value of stat for src.
//
// Additive modifiers are summed and added to the intrinsic value, then
// multiplicative modifiers are applied to that subtotal. The result does
// not depend on modifier order and never mutates src.
func Effective(src Source, stat Stat) (float64, error) {
	if !stat.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownStat, uint8(stat))
	}

	add := 0.0
	mul := 1.0
	for _, m := range src.Modifiers() {
		if m.Stat != stat {
			continue
		}
		switch m.Kind {
		case ModAdd:
			add += m.Value
		case ModMul:
			mul *= m.Value
		}
	}

	v := (src.StatDef(stat).At(src.Level()) + add) * mul
	if v < 0 && stat.NonNegative() {
		v = 0
	}
	return v, nil
}

// Snapshot computes every known stat for src.
func Snapshot(src Source) map[Stat]float64 {
	out := make(map[Stat]float64, statCount)
	for _, s := range All() {
		v, _ := Effective(src, s)
		out[s] = v
	}
	return out
}
