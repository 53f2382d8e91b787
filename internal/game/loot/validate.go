package loot

import (
	"errors"
	"fmt"
)

// ErrInvalidLootEntry is returned when a table references an unknown item
// or carries malformed weights or quantities.
var ErrInvalidLootEntry = errors.New("invalid loot entry")

// Validate checks every entry of the table. known reports whether an item
// id exists in the catalog. Tables are validated once at registration; a
// validated table is assumed well-formed during resolution.
func Validate(t Table, known func(item string) bool) error {
	var errs []error
	for si, slot := range t.Slots {
		for ei, e := range slot.Entries {
			if err := validateEntry(e, known); err != nil {
				errs = append(errs, fmt.Errorf("%w: table %q slot %d entry %d: %s",
					ErrInvalidLootEntry, t.ID, si, ei, err))
			}
		}
	}
	return errors.Join(errs...)
}

func validateEntry(e Entry, known func(string) bool) error {
	if e.Weight < 0 {
		return fmt.Errorf("negative weight %d", e.Weight)
	}
	if e.NoDrop {
		return nil
	}
	if e.Item == "" {
		return errors.New("missing item")
	}
	if known != nil && !known(e.Item) {
		return fmt.Errorf("unknown item %q", e.Item)
	}
	if e.Min < 0 || e.Max < 0 {
		return fmt.Errorf("negative quantity %d..%d", e.Min, e.Max)
	}
	if e.Max != 0 && e.Min > e.Max {
		return fmt.Errorf("min %d exceeds max %d", e.Min, e.Max)
	}
	return nil
}
