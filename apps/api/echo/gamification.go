package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/belajarku/backend/core/gamification"
)

type gamificationApi struct {
	svc gamification.Service
}

func registerGamificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc gamification.Service) {
	api := gamificationApi{svc: svc}

	gg := g.Group("/gamification", jwt)
	gg.GET("/level", api.retrieveLevel)
	gg.GET("/badge", api.retrieveBadge)
	gg.GET("/badges/unlocked", api.queryUnlockedBadges)
}

// Handlers

func (api *gamificationApi) retrieveLevel(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	info, err := api.svc.LevelInfo(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting level info")
	}
	return ctx.JSON(http.StatusOK, info)
}

func (api *gamificationApi) retrieveBadge(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	badge, err := api.svc.CurrentBadge(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == gamification.ErrBadgeNotFound {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "getting current badge")
	}
	return ctx.JSON(http.StatusOK, badge)
}

func (api *gamificationApi) queryUnlockedBadges(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	info, err := api.svc.LevelInfo(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting level info")
	}
	badges, err := api.svc.UnlockedBadges(ctx.Request().Context(), info.Level)
	if err != nil {
		return errors.Wrap(err, "querying unlocked badges")
	}
	if badges == nil {
		badges = []gamification.Badge{}
	}
	return ctx.JSON(http.StatusOK, badges)
}
