package data

// MaxLevel is the highest level a character can reach.
const MaxLevel = 50

// ExperienceTable holds cumulative experience required to reach each level.
// Index = level (0-51). Levels 0 and 1 require no experience.
var ExperienceTable = [MaxLevel + 2]int64{
	0,      // 0 (unused)
	0,      // 1
	40,     // 2
	200,    // 3
	500,    // 4
	970,    // 5
	1620,   // 6
	2460,   // 7
	3510,   // 8
	4780,   // 9
	6260,   // 10
	7980,   // 11
	9940,   // 12
	12140,  // 13
	14590,  // 14
	17300,  // 15
	20280,  // 16
	23530,  // 17
	27050,  // 18
	30850,  // 19
	34930,  // 20
	39300,  // 21
	43970,  // 22
	48940,  // 23
	54200,  // 24
	59780,  // 25
	65660,  // 26
	71860,  // 27
	78380,  // 28
	85220,  // 29
	92380,  // 30
	99870,  // 31
	107690, // 32
	115850, // 33
	124350, // 34
	133190, // 35
	142370, // 36
	151900, // 37
	161780, // 38
	172010, // 39
	182600, // 40
	193550, // 41
	204860, // 42
	216540, // 43
	228580, // 44
	240990, // 45
	253770, // 46
	266930, // 47
	280470, // 48
	294380, // 49
	308680, // 50
	323360, // 51 (cap for 50 -> 51 overflow)
}

// ExpForLevel returns cumulative experience required to reach the level.
// Returns 0 for level <= 1 and the overflow cap above MaxLevel.
func ExpForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	if level > MaxLevel+1 {
		level = MaxLevel + 1
	}
	return ExperienceTable[level]
}

// LevelForExp returns the level for the given cumulative experience,
// scanning upward from startLevel.
func LevelForExp(exp int64, startLevel int) int {
	if startLevel < 1 {
		startLevel = 1
	}
	level := startLevel
	for level < MaxLevel {
		if ExperienceTable[level+1] > exp {
			break
		}
		level++
	}
	return level
}
