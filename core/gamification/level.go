package gamification

// Leveling configuration. Levels are fixed 100-XP bands capped at MaxLevel;
// these values are static reference data, not computed.
const (
	XPPerLevel = 100
	MaxLevel   = 8
)

var levelNames = map[int]string{
	1: "Pemula",
	2: "Pemula",
	3: "Amatir",
	4: "Amatir",
	5: "Basic",
	6: "Basic",
	7: "Pro",
	8: "Ace",
}

// LevelStyle holds the presentation attributes of a level tier.
type LevelStyle struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

var levelStyles = map[int]LevelStyle{
	1: {Name: "Pemula", Color: "#9CA3AF", Icon: "seedling"},
	2: {Name: "Pemula", Color: "#9CA3AF", Icon: "seedling"},
	3: {Name: "Amatir", Color: "#60A5FA", Icon: "compass"},
	4: {Name: "Amatir", Color: "#60A5FA", Icon: "compass"},
	5: {Name: "Basic", Color: "#34D399", Icon: "shield"},
	6: {Name: "Basic", Color: "#34D399", Icon: "shield"},
	7: {Name: "Pro", Color: "#FBBF24", Icon: "flame"},
	8: {Name: "Ace", Color: "#F87171", Icon: "crown"},
}

// LevelInfo describes where a total XP count lands within the level bands.
type LevelInfo struct {
	Level              int    `json:"level"`
	LevelName          string `json:"level_name"`
	CurrentLevelXP     int    `json:"current_level_xp"`
	XPForNextLevel     int    `json:"xp_for_next_level"`
	ProgressPercentage int    `json:"progress_percentage"`
	IsMaxLevel         bool   `json:"is_max_level"`
}

// LevelForXP maps accumulated XP to a level in [1, MaxLevel].
// Level n spans [(n-1)*100, n*100-1]; MaxLevel is open-ended.
func LevelForXP(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	level := totalXP/XPPerLevel + 1
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// LevelName returns the display name of a level; empty for out-of-range levels.
func LevelName(level int) string {
	return levelNames[level]
}

// StyleForLevel returns the presentation attributes of a level.
func StyleForLevel(level int) (LevelStyle, bool) {
	style, ok := levelStyles[level]
	return style, ok
}

// LevelInfoForXP computes the full level breakdown for a total XP count.
// Negative XP is treated as 0.
func LevelInfoForXP(totalXP int) LevelInfo {
	if totalXP < 0 {
		totalXP = 0
	}

	level := LevelForXP(totalXP)
	info := LevelInfo{
		Level:     level,
		LevelName: LevelName(level),
	}

	if level == MaxLevel {
		info.CurrentLevelXP = totalXP - (MaxLevel-1)*XPPerLevel
		info.ProgressPercentage = 100
		info.IsMaxLevel = true
		return info
	}

	xpForCurrentLevel := (level - 1) * XPPerLevel
	info.CurrentLevelXP = totalXP - xpForCurrentLevel
	info.XPForNextLevel = level * XPPerLevel
	info.ProgressPercentage = info.CurrentLevelXP * 100 / XPPerLevel
	if info.ProgressPercentage > 100 {
		info.ProgressPercentage = 100
	}
	return info
}
