package gamification

import "testing"

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		name    string
		totalXP int
		want    int
	}{
		{name: "zero", totalXP: 0, want: 1},
		{name: "top of level 1", totalXP: 99, want: 1},
		{name: "bottom of level 2", totalXP: 100, want: 2},
		{name: "mid level 2", totalXP: 150, want: 2},
		{name: "bottom of max level", totalXP: 700, want: 8},
		{name: "way past max level", totalXP: 10_000, want: 8},
		{name: "negative treated as zero", totalXP: -5, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelForXP(tt.totalXP); got != tt.want {
				t.Errorf("LevelForXP(%d) = %d; want %d", tt.totalXP, got, tt.want)
			}
		})
	}
}

func TestLevelForXP_monotonic(t *testing.T) {
	prev := 0
	for xp := 0; xp <= 1200; xp++ {
		level := LevelForXP(xp)
		if level < 1 || level > MaxLevel {
			t.Fatalf("LevelForXP(%d) = %d; out of [1, %d]", xp, level, MaxLevel)
		}
		if level < prev {
			t.Fatalf("LevelForXP(%d) = %d; decreased from %d", xp, level, prev)
		}
		prev = level
	}
}

func TestLevelInfoForXP(t *testing.T) {
	tests := []struct {
		name    string
		totalXP int
		want    LevelInfo
	}{
		{
			name:    "fresh user",
			totalXP: 0,
			want:    LevelInfo{Level: 1, LevelName: "Pemula", CurrentLevelXP: 0, XPForNextLevel: 100, ProgressPercentage: 0},
		},
		{
			name:    "halfway through level 2",
			totalXP: 150,
			want:    LevelInfo{Level: 2, LevelName: "Pemula", CurrentLevelXP: 50, XPForNextLevel: 200, ProgressPercentage: 50},
		},
		{
			name:    "last point before level up",
			totalXP: 199,
			want:    LevelInfo{Level: 2, LevelName: "Pemula", CurrentLevelXP: 99, XPForNextLevel: 200, ProgressPercentage: 99},
		},
		{
			name:    "mid tiers",
			totalXP: 420,
			want:    LevelInfo{Level: 5, LevelName: "Basic", CurrentLevelXP: 20, XPForNextLevel: 500, ProgressPercentage: 20},
		},
		{
			name:    "max level",
			totalXP: 750,
			want:    LevelInfo{Level: 8, LevelName: "Ace", CurrentLevelXP: 50, XPForNextLevel: 0, ProgressPercentage: 100, IsMaxLevel: true},
		},
		{
			name:    "negative treated as zero",
			totalXP: -20,
			want:    LevelInfo{Level: 1, LevelName: "Pemula", CurrentLevelXP: 0, XPForNextLevel: 100, ProgressPercentage: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelInfoForXP(tt.totalXP); got != tt.want {
				t.Errorf("LevelInfoForXP(%d) = %+v; want %+v", tt.totalXP, got, tt.want)
			}
		})
	}
}

func TestLevelName_duplicatedTiers(t *testing.T) {
	pairs := [][2]int{{1, 2}, {3, 4}, {5, 6}}
	for _, pair := range pairs {
		if LevelName(pair[0]) != LevelName(pair[1]) {
			t.Errorf("LevelName(%d) = %q; want same as LevelName(%d) = %q",
				pair[1], LevelName(pair[1]), pair[0], LevelName(pair[0]))
		}
	}
	if LevelName(7) == LevelName(8) {
		t.Errorf("LevelName(7) and LevelName(8) should differ")
	}
}

func TestStyleForLevel(t *testing.T) {
	for level := 1; level <= MaxLevel; level++ {
		style, ok := StyleForLevel(level)
		if !ok {
			t.Errorf("StyleForLevel(%d) missing", level)
			continue
		}
		if style.Name != LevelName(level) {
			t.Errorf("StyleForLevel(%d).Name = %q; want %q", level, style.Name, LevelName(level))
		}
	}
	if _, ok := StyleForLevel(MaxLevel + 1); ok {
		t.Errorf("StyleForLevel(%d) should be missing", MaxLevel+1)
	}
}
