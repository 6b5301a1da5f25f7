package gamification

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/belajarku/backend/core"
)

type (
	Service interface {
		// TotalXP sums xp_earned across all of the user's materials.
		TotalXP(ctx context.Context, userID string) (int, error)
		// LevelInfo computes the user's level breakdown from their total XP.
		LevelInfo(ctx context.Context, userID string) (LevelInfo, error)
		// BadgeForLevel resolves the single badge whose range contains level.
		BadgeForLevel(ctx context.Context, level int) (Badge, error)
		// BadgeByID returns the catalog badge with the given ID.
		BadgeByID(ctx context.Context, id string) (Badge, error)
		// UnlockedBadges returns every badge the given level ever qualified for.
		UnlockedBadges(ctx context.Context, level int) ([]Badge, error)
		// CurrentBadge returns the badge persisted on the user profile, falling
		// back to level resolution when none has been persisted yet.
		CurrentBadge(ctx context.Context, userID string) (Badge, error)
		// UpdateUserBadge recomputes total XP -> level -> badge and persists the
		// resolved badge onto the user profile. Idempotent.
		UpdateUserBadge(ctx context.Context, userID string) (Badge, error)
	}

	service struct {
		badges   BadgeRepository
		xp       XPRepository
		profiles ProfileRepository
		mailSvc  core.EmailService
		conf     *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(
	badges BadgeRepository,
	xp XPRepository,
	profiles ProfileRepository,
	mailSvc core.EmailService,
	conf *core.Config,
) Service {
	return &service{
		badges:   badges,
		xp:       xp,
		profiles: profiles,
		mailSvc:  mailSvc,
		conf:     conf,
	}
}

func (svc *service) TotalXP(ctx context.Context, userID string) (int, error) {
	total, err := svc.xp.SumXPEarned(ctx, userID)
	if err != nil {
		return 0, errors.Wrap(err, "summing xp")
	}
	return total, nil
}

func (svc *service) LevelInfo(ctx context.Context, userID string) (LevelInfo, error) {
	total, err := svc.TotalXP(ctx, userID)
	if err != nil {
		return LevelInfo{}, err
	}
	return LevelInfoForXP(total), nil
}

func (svc *service) BadgeForLevel(ctx context.Context, level int) (Badge, error) {
	badge, err := svc.badges.GetBadgeByLevel(ctx, level)
	if err != nil {
		if err == ErrBadgeNotFound {
			return Badge{}, err
		}
		return Badge{}, errors.Wrap(err, "finding badge by level")
	}
	badge.fixLegacyImage()
	return badge, nil
}

func (svc *service) BadgeByID(ctx context.Context, id string) (Badge, error) {
	badge, err := svc.badges.GetBadge(ctx, id)
	if err != nil {
		if err == ErrBadgeNotFound {
			return Badge{}, err
		}
		return Badge{}, errors.Wrap(err, "getting badge")
	}
	badge.fixLegacyImage()
	return badge, nil
}

func (svc *service) UnlockedBadges(ctx context.Context, level int) ([]Badge, error) {
	badges, err := svc.badges.QueryBadgesUnlockedByLevel(ctx, level)
	if err != nil {
		return nil, errors.Wrap(err, "querying unlocked badges")
	}
	for i := range badges {
		badges[i].fixLegacyImage()
	}
	return badges, nil
}

func (svc *service) CurrentBadge(ctx context.Context, userID string) (Badge, error) {
	badgeID, err := svc.profiles.GetUserBadgeID(ctx, userID)
	if err != nil {
		return Badge{}, errors.Wrap(err, "getting persisted badge")
	}
	if badgeID != "" {
		return svc.BadgeByID(ctx, badgeID)
	}
	info, err := svc.LevelInfo(ctx, userID)
	if err != nil {
		return Badge{}, err
	}
	return svc.BadgeForLevel(ctx, info.Level)
}

func (svc *service) UpdateUserBadge(ctx context.Context, userID string) (Badge, error) {
	info, err := svc.LevelInfo(ctx, userID)
	if err != nil {
		return Badge{}, err
	}
	badge, err := svc.BadgeForLevel(ctx, info.Level)
	if err != nil {
		return Badge{}, err
	}

	prevID, err := svc.profiles.GetUserBadgeID(ctx, userID)
	if err != nil {
		return Badge{}, errors.Wrap(err, "getting current badge")
	}
	if prevID == badge.ID {
		// no XP change since last resolution; nothing to persist
		return badge, nil
	}

	if err := svc.profiles.SetUserBadge(ctx, userID, badge.ID); err != nil {
		return Badge{}, errors.Wrap(err, "setting user badge")
	}
	svc.sendBadgeUnlockedMail(ctx, userID, badge, info)
	return badge, nil
}

func (svc *service) sendBadgeUnlockedMail(ctx context.Context, userID string, badge Badge, info LevelInfo) {
	if svc.mailSvc == nil {
		return
	}
	name, email, err := svc.profiles.GetUserContact(ctx, userID)
	if err != nil || email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: name, Address: email}},
		Subject: fmt.Sprintf("Selamat! Kamu mendapat badge %s", badge.Name),
		BodyStr: fmt.Sprintf(
			"Halo %s,\n\nKamu sudah mencapai level %d (%s) dan membuka badge %s. "+
				"Lihat koleksi badge kamu di %s/profil/badge. Teruskan belajarnya!\n",
			name, info.Level, info.LevelName, badge.Name, svc.conf.FrontendBaseURL,
		),
	})
}
