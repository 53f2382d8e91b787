package loot

// Roll draws one entry from the slot. The second result is false when the
// slot has zero total weight.
//
// The draw is a uniform integer in [0, total); entries are walked in
// order accumulating weight until the running sum exceeds the draw, so a
// zero-weight entry can never be selected.
func (s Slot) Roll(rnd Source) (Entry, bool) {
	total := s.TotalWeight()
	if total <= 0 {
		return Entry{}, false
	}

	roll := rnd.IntN(total)
	cumulative := 0
	for _, e := range s.Entries {
		cumulative += e.Weight
		if roll < cumulative {
			return e, true
		}
	}
	return Entry{}, false
}

// Resolve draws every slot of the table and returns the granted items.
// No-drop entries and empty slots contribute nothing.
func Resolve(t Table, rnd Source) []Drop {
	var drops []Drop
	for _, slot := range t.Slots {
		e, ok := slot.Roll(rnd)
		if !ok || e.NoDrop {
			continue
		}
		lo, hi := e.bounds()
		drops = append(drops, Drop{Item: e.Item, Quantity: rnd.Range(lo, hi)})
	}
	return drops
}

// Scale multiplies every quantity by the amount multiplier. A granted item
// never scales below one unit. A multiplier of zero or less leaves drops
// unchanged.
func Scale(drops []Drop, multiplier float64) []Drop {
	if multiplier <= 0 || multiplier == 1 {
		return drops
	}
	out := make([]Drop, len(drops))
	for i, d := range drops {
		q := int(float64(d.Quantity) * multiplier)
		if q <= 0 {
			q = 1
		}
		out[i] = Drop{Item: d.Item, Quantity: q}
	}
	return out
}

// Merge folds drops of the same item together, keeping first-seen order.
func Merge(drops []Drop) []Drop {
	if len(drops) < 2 {
		return drops
	}
	index := make(map[string]int, len(drops))
	out := make([]Drop, 0, len(drops))
	for _, d := range drops {
		if i, ok := index[d.Item]; ok {
			out[i].Quantity += d.Quantity
			continue
		}
		index[d.Item] = len(out)
		out = append(out, d)
	}
	return out
}
