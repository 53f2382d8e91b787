package encounter

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/chatrpg/internal/data"
	"github.com/udisondev/chatrpg/internal/model"
	"github.com/udisondev/chatrpg/internal/telemetry"
)

const testCatalogYAML = `
items:
  - { id: fang, category: material }
  - id: bow
    category: equipment
    slot: weapon
    ammo_per_attack: 1
  - { id: potion, category: consumable, use: { heal: 30 } }
  - id: tonic
    category: consumable
    use:
      effect:
        id: ironbark
        turns: 2
        modifiers: [{ stat: defence, value: 5 }]

abilities:
  - { id: zap, kind: damage, resource: mana, cost: 5, power: 10, magical: true }
  - { id: mend, kind: heal, resource: mana, cost: 10, power: 20 }
  - id: ward
    kind: effect
    resource: mana
    cost: 5
    target: self
    effect:
      id: ward
      name: Ward
      turns: 2
      modifiers: [{ stat: defence, value: 50 }]
  - id: bite
    kind: damage
    cost: 0
    power: 1
    effect: { id: poison, name: Poison, turns: 2, health_per_turn: -2 }

archetypes:
  - id: hero
    stats:
      maxHp: { base: 200 }
      minDamage: { base: 50 }
      maxDamage: { base: 50 }
      dodge: { base: 0 }
      crit: { base: 0 }
      defence: { base: 0 }
      maxMp: { base: 20 }
      maxAmmo: { base: 2 }
      spellPower: { base: 0 }
    abilities: [zap, mend, ward]

loot_tables:
  - id: dummy_drops
    slots:
      - entries:
          - { weight: 1, item: fang, min: 2, max: 2 }

enemies:
  - id: dummy
    name: Dummy
    level: 1
    experience: 10
    currency: { min: 5, max: 5 }
    loot: dummy_drops
    stats: &weak
      maxHp: { base: 30 }
      minDamage: { base: 1 }
      maxDamage: { base: 1 }
      dodge: { base: 0 }
      crit: { base: 0 }
      defence: { base: 0 }
  - id: tank
    name: Tank
    experience: 1
    stats:
      maxHp: { base: 1000 }
      minDamage: { base: 1 }
      maxDamage: { base: 1 }
      dodge: { base: 0 }
      crit: { base: 0 }
      defence: { base: 0 }
  - id: brute
    name: Brute
    experience: 99
    loot: dummy_drops
    stats:
      maxHp: { base: 1000 }
      minDamage: { base: 500 }
      maxDamage: { base: 500 }
      dodge: { base: 0 }
      crit: { base: 0 }
  - id: dodger
    name: Dodger
    stats:
      maxHp: { base: 30 }
      minDamage: { base: 1 }
      maxDamage: { base: 1 }
      dodge: { base: 100 }
      crit: { base: 0 }
  - id: wolf
    name: Wolf
    level: 2
    experience: 20
    currency: { min: 1, max: 9 }
    loot: dummy_drops
    stats:
      maxHp: { base: 300 }
      minDamage: { base: 2 }
      maxDamage: { base: 9 }
      dodge: { base: 20 }
      crit: { base: 20 }
      defence: { base: 2 }
    behavior:
      - { action: attack, weight: 70 }
      - { action: "ability:bite", weight: 30 }
  - id: viper
    name: Viper
    stats:
      maxHp: { base: 1000 }
      minDamage: { base: 1 }
      maxDamage: { base: 1 }
      dodge: { base: 0 }
      crit: { base: 0 }
      defence: { base: 0 }
    behavior:
      - { action: "ability:bite", weight: 1 }
  - id: glitch
    name: Glitch
    stats: *weak
    script: |
      function choose(state)
        return "ability:does_not_exist"
      end
  - id: crasher
    name: Crasher
    stats: *weak
    script: |
      function choose(state)
        error("boom")
      end
  - id: scripted
    name: Scripted
    stats: *weak
    script: |
      function choose(state)
        if state.turn > 0 then
          return "attack"
        end
        return "ability:bite"
      end
`

func testCatalog(t testing.TB) *data.Catalog {
	t.Helper()
	c, err := data.Parse([]byte(testCatalogYAML))
	require.NoError(t, err)
	return c
}

type recorder struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (r *recorder) ApplyOutcome(_ context.Context, out Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, out)
	return nil
}

func (r *recorder) all() []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Outcome(nil), r.outcomes...)
}

type faultCounter struct{ n atomic.Int32 }

func (f *faultCounter) ReportFault(context.Context, string, error) { f.n.Add(1) }

func newTestEngine(t testing.TB, cat *data.Catalog, opts ...Option) (*Engine, *recorder) {
	t.Helper()
	rec := &recorder{}
	base := []Option{
		WithPersister(rec),
		WithMasterSeed(20261017),
		WithTracer(telemetry.NoopTracer()),
	}
	return NewEngine(cat, append(base, opts...)...), rec
}

func newHero(t testing.TB, cat *data.Catalog, id int64) *model.Character {
	t.Helper()
	arch, ok := cat.Archetype("hero")
	require.True(t, ok)
	return model.NewCharacter(id, "Hero", 1, arch)
}

func spawn(t testing.TB, cat *data.Catalog, ids ...string) []*model.Enemy {
	t.Helper()
	out := make([]*model.Enemy, 0, len(ids))
	for _, id := range ids {
		def, ok := cat.Enemy(id)
		require.True(t, ok, id)
		out = append(out, model.NewEnemy(def))
	}
	return out
}

func kinds(entries []LogEntry) []EntryKind {
	out := make([]EntryKind, len(entries))
	for i, e := range entries {
		out[i] = e.Kind
	}
	return out
}
