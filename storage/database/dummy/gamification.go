package dummydb

import (
	"context"
	"sort"

	"github.com/belajarku/backend/core/gamification"
)

type badgeRepository struct {
	db *badgeTable
}

var _ gamification.BadgeRepository = (*badgeRepository)(nil) // interface compliance check

func NewBadgeRepository(db *DB) gamification.BadgeRepository {
	return &badgeRepository{db: db.badge}
}

// SeedBadges loads a badge catalog into the table, mainly for tests.
func SeedBadges(db *DB, badges ...gamification.Badge) {
	db.badge.Lock()
	defer db.badge.Unlock()
	for i := range badges {
		b := badges[i]
		db.badge.table[b.ID] = &b
	}
}

func (repo *badgeRepository) GetBadge(ctx context.Context, id string) (gamification.Badge, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if b, ok := repo.db.table[id]; ok {
		return *b, nil
	}
	return gamification.Badge{}, gamification.ErrBadgeNotFound
}

func (repo *badgeRepository) GetBadgeByLevel(ctx context.Context, level int) (gamification.Badge, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, b := range repo.db.table {
		if b.LevelMin <= level && level <= b.LevelMax {
			return *b, nil
		}
	}
	return gamification.Badge{}, gamification.ErrBadgeNotFound
}

func (repo *badgeRepository) QueryBadgesUnlockedByLevel(ctx context.Context, level int) ([]gamification.Badge, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var badges []gamification.Badge
	for _, b := range repo.db.table {
		if b.LevelMin <= level {
			badges = append(badges, *b)
		}
	}
	sort.Slice(badges, func(i, j int) bool { return badges[i].LevelMin < badges[j].LevelMin })
	return badges, nil
}
