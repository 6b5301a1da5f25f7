package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/belajarku/backend/core/topic"
)

type topicApi struct {
	svc      topic.Service
	validate *validator.Validate
}

func registerTopicAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc topic.Service, validate *validator.Validate) {
	api := topicApi{svc: svc, validate: validate}

	tg := g.Group("/topics", jwt)
	tg.GET("", api.query)
	tg.POST("", api.create, staffMiddleware())
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id", api.update, staffMiddleware())
	tg.DELETE("/:id", api.destroy, adminMiddleware())
	tg.GET("/:id/materials", api.queryMaterials)

	mg := g.Group("/materials", jwt)
	mg.POST("", api.createMaterial, staffMiddleware())
	mg.GET("/:id", api.retrieveMaterial)
	mg.PUT("/:id", api.updateMaterial, staffMiddleware())
	mg.DELETE("/:id", api.destroyMaterial, adminMiddleware())
}

// Handlers

func (api *topicApi) query(ctx echo.Context) error {
	filter := new(topic.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []topic.Topic{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	topics, err := api.svc.QueryTopics(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying topics")
	}
	if topics == nil {
		topics = []topic.Topic{}
	}
	return ctx.JSON(http.StatusOK, topics)
}

func (api *topicApi) create(ctx echo.Context) error {
	var data topic.NewTopic
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTopic")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.svc.CreateTopic(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating topic")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *topicApi) retrieve(ctx echo.Context) error {
	t, err := api.svc.GetTopicDetail(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == topic.ErrTopicNotFound {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "getting topic")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *topicApi) update(ctx echo.Context) error {
	var data topic.UpdateTopic
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTopic")
	}

	origTopic, err := api.svc.GetTopic(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == topic.ErrTopicNotFound {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "getting topic")
	}
	if err := data.Validate(origTopic, api.validate); err != nil {
		return err
	}

	t, err := api.svc.UpdateTopic(ctx.Request().Context(), origTopic.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating topic")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *topicApi) destroy(ctx echo.Context) error {
	if err := api.svc.DeleteTopics(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting topic")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *topicApi) queryMaterials(ctx echo.Context) error {
	mats, err := api.svc.QueryMaterialsByTopic(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying materials")
	}
	if mats == nil {
		mats = []topic.Material{}
	}
	return ctx.JSON(http.StatusOK, mats)
}

func (api *topicApi) createMaterial(ctx echo.Context) error {
	var data topic.NewMaterial
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMaterial")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.CreateMaterial(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == topic.ErrTopicNotFound {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "creating material")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *topicApi) retrieveMaterial(ctx echo.Context) error {
	m, err := api.svc.GetMaterial(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == topic.ErrMaterialNotFound {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "getting material")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *topicApi) updateMaterial(ctx echo.Context) error {
	var data topic.UpdateMaterial
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMaterial")
	}

	origMat, err := api.svc.GetMaterial(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == topic.ErrMaterialNotFound {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "getting material")
	}
	if err := data.Validate(origMat, api.validate); err != nil {
		return err
	}

	m, err := api.svc.UpdateMaterial(ctx.Request().Context(), origMat.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating material")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *topicApi) destroyMaterial(ctx echo.Context) error {
	if err := api.svc.DeleteMaterials(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting material")
	}
	return ctx.NoContent(http.StatusNoContent)
}
