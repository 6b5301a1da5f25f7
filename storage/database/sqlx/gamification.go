package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/belajarku/backend/core/gamification"
)

type badgeRepository struct {
	db *sqlx.DB
}

var _ gamification.BadgeRepository = (*badgeRepository)(nil) // interface compliance check

func NewBadgeRepository(db *sqlx.DB) gamification.BadgeRepository {
	return &badgeRepository{db: db}
}

const badgeColumns = "badge_id, nama, gambar, level_min, level_max"

func (repo *badgeRepository) GetBadge(ctx context.Context, id string) (gamification.Badge, error) {
	var b gamification.Badge
	err := repo.db.GetContext(ctx, &b, "SELECT "+badgeColumns+" FROM badges WHERE badge_id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return gamification.Badge{}, gamification.ErrBadgeNotFound
		}
		return gamification.Badge{}, errors.Wrap(err, "getting badge")
	}
	return b, nil
}

func (repo *badgeRepository) GetBadgeByLevel(ctx context.Context, level int) (gamification.Badge, error) {
	var b gamification.Badge
	err := repo.db.GetContext(ctx, &b,
		"SELECT "+badgeColumns+" FROM badges WHERE level_min <= $1 AND level_max >= $1", level)
	if err != nil {
		if err == sql.ErrNoRows {
			return gamification.Badge{}, gamification.ErrBadgeNotFound
		}
		return gamification.Badge{}, errors.Wrap(err, "getting badge by level")
	}
	return b, nil
}

func (repo *badgeRepository) QueryBadgesUnlockedByLevel(ctx context.Context, level int) ([]gamification.Badge, error) {
	badges := make([]gamification.Badge, 0)
	err := repo.db.SelectContext(ctx, &badges,
		"SELECT "+badgeColumns+" FROM badges WHERE level_min <= $1 ORDER BY level_min ASC", level)
	if err != nil {
		return nil, errors.Wrap(err, "querying unlocked badges")
	}
	return badges, nil
}
