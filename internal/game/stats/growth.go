package stats

// CharacterGrowth is the default growth table for player characters.
// Archetypes from the catalog override individual entries.
var CharacterGrowth = Table{
	MaxHP:      {Base: 100, PerLevel: 12},
	MaxMP:      {Base: 30, PerLevel: 4},
	MaxAmmo:    {Base: 0, PerLevel: 0},
	MinDamage:  {Base: 4, PerLevel: 1},
	MaxDamage:  {Base: 8, PerLevel: 1.5},
	Defence:    {Base: 2, PerLevel: 0.5},
	Dodge:      {Base: 5, PerLevel: 0},
	Crit:       {Base: 5, PerLevel: 0},
	SpellPower: {Base: 4, PerLevel: 1},
}

// EnemyGrowth is the default growth table for enemies.
var EnemyGrowth = Table{
	MaxHP:      {Base: 40, PerLevel: 8},
	MaxMP:      {Base: 0, PerLevel: 0},
	MaxAmmo:    {Base: 0, PerLevel: 0},
	MinDamage:  {Base: 3, PerLevel: 1},
	MaxDamage:  {Base: 6, PerLevel: 1},
	Defence:    {Base: 1, PerLevel: 0.5},
	Dodge:      {Base: 3, PerLevel: 0},
	Crit:       {Base: 3, PerLevel: 0},
	SpellPower: {Base: 0, PerLevel: 1},
}
