package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/belajarku/backend/core/chat"
	"github.com/belajarku/backend/core/user"
)

type chatApi struct {
	svc      chat.Service
	userSvc  user.Service
	validate *validator.Validate
}

func registerChatAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc chat.Service, userSvc user.Service, validate *validator.Validate) {
	api := chatApi{svc: svc, userSvc: userSvc, validate: validate}

	rg := g.Group("/chat/rooms", jwt)
	rg.POST("", api.createRoom)
	rg.GET("/:id", api.retrieveRoom)
	rg.DELETE("/:id", api.destroyRoom, adminMiddleware())
	rg.GET("/:id/messages", api.queryMessages)
	rg.POST("/:id/messages", api.postMessage)

	g.GET("/topics/:id/rooms", api.queryRooms, jwt)
}

// Handlers

func (api *chatApi) createRoom(ctx echo.Context) error {
	var data chat.NewRoom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRoom")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	room, err := api.svc.CreateRoom(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating room")
	}
	return ctx.JSON(http.StatusCreated, room)
}

func (api *chatApi) retrieveRoom(ctx echo.Context) error {
	room, err := api.svc.GetRoom(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == chat.ErrRoomNotFound {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "getting room")
	}
	return ctx.JSON(http.StatusOK, room)
}

func (api *chatApi) queryRooms(ctx echo.Context) error {
	rooms, err := api.svc.QueryRoomsByTopic(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying rooms")
	}
	if rooms == nil {
		rooms = []chat.Room{}
	}
	return ctx.JSON(http.StatusOK, rooms)
}

func (api *chatApi) destroyRoom(ctx echo.Context) error {
	if err := api.svc.DeleteRooms(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting room")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *chatApi) postMessage(ctx echo.Context) error {
	var data chat.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	msg, err := api.svc.PostMessage(ctx.Request().Context(), ctx.Param("id"), ctxUsr.ID, ctxUsr.Username, data)
	if err != nil {
		if errors.Cause(err) == chat.ErrRoomNotFound {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "posting message")
	}
	return ctx.JSON(http.StatusCreated, msg)
}

func (api *chatApi) queryMessages(ctx echo.Context) error {
	var limit int
	if raw := ctx.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	msgs, err := api.svc.QueryMessages(ctx.Request().Context(), ctx.Param("id"), limit)
	if err != nil {
		return errors.Wrap(err, "querying messages")
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}
