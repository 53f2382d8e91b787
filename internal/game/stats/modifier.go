package stats

import (
	"fmt"
	"strings"
)

// ModKind defines how a modifier is applied.
type ModKind int8

const (
	ModAdd ModKind = iota // flat bonus, e.g. +3 defence
	ModMul                // factor, e.g. 1.2 for +20%
)

func (k ModKind) String() string {
	switch k {
	case ModAdd:
		return "add"
	case ModMul:
		return "mul"
	default:
		return fmt.Sprintf("modkind(%d)", int8(k))
	}
}

// ParseModKind accepts "add" or "mul". An empty string means add.
func ParseModKind(s string) (ModKind, error) {
	switch strings.ToLower(s) {
	case "", "add":
		return ModAdd, nil
	case "mul":
		return ModMul, nil
	default:
		return 0, fmt.Errorf("unknown modifier kind %q", s)
	}
}

// Modifier is a single stat modification from an item or effect.
// Several modifiers can stack on the same stat.
type Modifier struct {
	Stat   Stat
	Kind   ModKind
	Value  float64
	Source string // item or effect id, for logs
}

// Add returns an additive modifier.
func Add(stat Stat, value float64) Modifier {
	return Modifier{Stat: stat, Kind: ModAdd, Value: value}
}

// Mul returns a multiplicative modifier.
func Mul(stat Stat, factor float64) Modifier {
	return Modifier{Stat: stat, Kind: ModMul, Value: factor}
}
