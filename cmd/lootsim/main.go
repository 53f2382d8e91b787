// Loot simulator: rolls a catalog loot table many times and prints how
// often each item dropped.
//
// Usage:
//
//	go run ./cmd/lootsim -table goblin_common -draws 100000
//	go run ./cmd/lootsim -list
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/udisondev/chatrpg/internal/data"
	"github.com/udisondev/chatrpg/internal/game/loot"
	"github.com/udisondev/chatrpg/internal/game/rng"
)

func main() {
	var (
		catalogDir = flag.String("catalog", "", "catalog directory (default: built-in catalog)")
		table      = flag.String("table", "", "loot table id")
		draws      = flag.Int("draws", 10000, "number of table resolutions")
		seed       = flag.Int64("seed", 0, "rng seed (0: random)")
		list       = flag.Bool("list", false, "list loot tables and exit")
	)
	flag.Parse()

	if err := run(os.Stdout, *catalogDir, *table, *draws, *seed, *list); err != nil {
		fmt.Fprintf(os.Stderr, "lootsim: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, catalogDir, tableID string, draws int, seed int64, list bool) error {
	var (
		cat *data.Catalog
		err error
	)
	if catalogDir == "" {
		cat, err = data.LoadDefault()
	} else {
		cat, err = data.LoadDir(catalogDir)
	}
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	if list || tableID == "" {
		fmt.Fprintf(w, "loot tables: %s\n", strings.Join(cat.LootTableIDs(), ", "))
		return nil
	}

	t, ok := cat.LootTable(tableID)
	if !ok {
		return fmt.Errorf("unknown loot table %q", tableID)
	}
	if draws <= 0 {
		return fmt.Errorf("draws must be positive, got %d", draws)
	}
	if seed == 0 {
		if seed, err = rng.NewSeed(); err != nil {
			return err
		}
	}

	stats := simulate(t, rng.New(seed), draws)
	report(w, tableID, seed, draws, stats)
	return nil
}

type itemStats struct {
	item  string
	drops int // resolutions that granted the item
	units int
}

func simulate(t loot.Table, rnd *rng.RNG, draws int) []itemStats {
	byItem := make(map[string]*itemStats)
	for range draws {
		for _, d := range loot.Merge(loot.Resolve(t, rnd)) {
			s, ok := byItem[d.Item]
			if !ok {
				s = &itemStats{item: d.Item}
				byItem[d.Item] = s
			}
			s.drops++
			s.units += d.Quantity
		}
	}

	out := make([]itemStats, 0, len(byItem))
	for _, s := range byItem {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b itemStats) int {
		if a.drops != b.drops {
			return b.drops - a.drops
		}
		return strings.Compare(a.item, b.item)
	})
	return out
}

func report(w io.Writer, tableID string, seed int64, draws int, stats []itemStats) {
	fmt.Fprintf(w, "table %s, %d draws, seed %d\n", tableID, draws, seed)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tRATE\tAVG QTY")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%.2f%%\t%.2f\n",
			s.item,
			100*float64(s.drops)/float64(draws),
			float64(s.units)/float64(s.drops))
	}
	tw.Flush()
}
