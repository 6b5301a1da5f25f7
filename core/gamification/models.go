package gamification

import (
	"context"
	"errors"
	"strings"
)

var (
	// errors
	ErrBadgeNotFound = errors.New("badge not found")
)

// Badge is a catalog row unlocked once a user's level falls within
// [LevelMin, LevelMax]. Ranges are inclusive, non-overlapping and span all
// levels 1..MaxLevel. Static reference data seeded by migration.
type Badge struct {
	ID       string `db:"badge_id" json:"badge_id"`
	Name     string `db:"nama" json:"nama"`
	Image    string `db:"gambar" json:"gambar"`
	LevelMin int    `db:"level_min" json:"level_min"`
	LevelMax int    `db:"level_max" json:"level_max"`
}

// fixLegacyImage rewrites a stale ".jpg" image reference to ".png".
// Old catalog rows were ingested before the assets were converted and were
// never updated; the rewrite must be applied on every read path.
func (b *Badge) fixLegacyImage() {
	if strings.HasSuffix(b.Image, ".jpg") {
		b.Image = strings.TrimSuffix(b.Image, ".jpg") + ".png"
	}
}

type (
	// BadgeRepository reads the static badge catalog.
	BadgeRepository interface {
		// GetBadge returns the catalog row with the given ID, or ErrBadgeNotFound.
		GetBadge(ctx context.Context, id string) (Badge, error)
		// GetBadgeByLevel returns the single row whose range contains level,
		// or ErrBadgeNotFound on a catalog gap.
		GetBadgeByLevel(ctx context.Context, level int) (Badge, error)
		// QueryBadgesUnlockedByLevel returns all rows with level_min <= level,
		// ordered ascending by level_min.
		QueryBadgesUnlockedByLevel(ctx context.Context, level int) ([]Badge, error)
	}

	// XPRepository aggregates the per-material quiz-progress rows.
	XPRepository interface {
		// SumXPEarned sums xp_earned across all of the user's progress rows,
		// treating missing rows as 0.
		SumXPEarned(ctx context.Context, userID string) (int, error)
	}

	// ProfileRepository persists the resolved badge onto the user profile.
	ProfileRepository interface {
		GetUserBadgeID(ctx context.Context, userID string) (string, error)
		SetUserBadge(ctx context.Context, userID, badgeID string) error
		GetUserContact(ctx context.Context, userID string) (name, email string, err error)
	}
)
