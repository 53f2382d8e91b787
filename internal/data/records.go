package data

// Flat YAML records. They are converted into definitions by the catalog
// builder, which resolves names and validates references.

type catalogFile struct {
	Archetypes []archetypeRecord `yaml:"archetypes"`
	Items      []itemRecord      `yaml:"items"`
	Abilities  []abilityRecord   `yaml:"abilities"`
	LootTables []lootTableRecord `yaml:"loot_tables"`
	Enemies    []enemyRecord     `yaml:"enemies"`
}

type statRecord struct {
	Base     float64 `yaml:"base"`
	PerLevel float64 `yaml:"per_level"`
}

type modifierRecord struct {
	Stat  string  `yaml:"stat"`
	Kind  string  `yaml:"kind"`
	Value float64 `yaml:"value"`
}

type effectRecord struct {
	ID            string           `yaml:"id"`
	Name          string           `yaml:"name"`
	Turns         int              `yaml:"turns"`
	Modifiers     []modifierRecord `yaml:"modifiers"`
	HealthPerTurn int              `yaml:"health_per_turn"`
}

type useRecord struct {
	Heal        int           `yaml:"heal"`
	RestoreMana int           `yaml:"restore_mana"`
	RestoreAmmo int           `yaml:"restore_ammo"`
	Effect      *effectRecord `yaml:"effect"`
}

type itemRecord struct {
	ID            string           `yaml:"id"`
	Name          string           `yaml:"name"`
	Description   string           `yaml:"description"`
	Category      string           `yaml:"category"`
	Slot          string           `yaml:"slot"`
	Level         int              `yaml:"level"`
	Price         int64            `yaml:"price"`
	Modifiers     []modifierRecord `yaml:"modifiers"`
	AmmoPerAttack int              `yaml:"ammo_per_attack"`
	Use           *useRecord       `yaml:"use"`
}

type abilityRecord struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name"`
	Kind     string        `yaml:"kind"`
	Resource string        `yaml:"resource"`
	Cost     int           `yaml:"cost"`
	Power    int           `yaml:"power"`
	Magical  bool          `yaml:"magical"`
	Target   string        `yaml:"target"`
	Effect   *effectRecord `yaml:"effect"`
}

type behaviorRecord struct {
	Action string `yaml:"action"`
	Weight int    `yaml:"weight"`
}

type rangeRecord struct {
	Min int64 `yaml:"min"`
	Max int64 `yaml:"max"`
}

type enemyRecord struct {
	ID         string                `yaml:"id"`
	Name       string                `yaml:"name"`
	Level      int                   `yaml:"level"`
	Stats      map[string]statRecord `yaml:"stats"`
	Experience int64                 `yaml:"experience"`
	Currency   rangeRecord           `yaml:"currency"`
	Loot       string                `yaml:"loot"`
	Behavior   []behaviorRecord      `yaml:"behavior"`
	Script     string                `yaml:"script"`
}

type lootEntryRecord struct {
	Weight int    `yaml:"weight"`
	Item   string `yaml:"item"`
	Min    int    `yaml:"min"`
	Max    int    `yaml:"max"`
	NoDrop bool   `yaml:"no_drop"`
}

type lootSlotRecord struct {
	Entries []lootEntryRecord `yaml:"entries"`
}

type lootTableRecord struct {
	ID    string           `yaml:"id"`
	Slots []lootSlotRecord `yaml:"slots"`
}

type archetypeRecord struct {
	ID        string                `yaml:"id"`
	Name      string                `yaml:"name"`
	Stats     map[string]statRecord `yaml:"stats"`
	Abilities []string              `yaml:"abilities"`
}
