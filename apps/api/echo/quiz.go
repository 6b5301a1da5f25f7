package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/belajarku/backend/core/quiz"
	"github.com/belajarku/backend/core/topic"
)

type quizApi struct {
	svc      quiz.Service
	topicSvc topic.Service
	validate *validator.Validate
}

func registerQuizAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc quiz.Service, topicSvc topic.Service, validate *validator.Validate) {
	api := quizApi{svc: svc, topicSvc: topicSvc, validate: validate}

	qg := g.Group("/quiz", jwt)
	qg.POST("/answers", api.submitAnswer)
	qg.GET("/progress", api.queryProgress)
	qg.GET("/materials/:id/questions", api.queryQuestions)
	qg.GET("/materials/:id/scores", api.retrieveScores)
	qg.GET("/materials/:id/progress", api.retrieveProgress)
	qg.POST("/materials/:id/questions", api.regenerateQuestions, staffMiddleware())
}

// Handlers

func (api *quizApi) submitAnswer(ctx echo.Context) error {
	var data quiz.SubmitAnswer
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitAnswer")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	res, err := api.svc.SubmitAnswer(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		if errors.Cause(err) == quiz.ErrQuizNotFound {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "submitting answer")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *quizApi) queryQuestions(ctx echo.Context) error {
	questions, err := api.svc.QuestionsForMaterial(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying questions")
	}
	if questions == nil {
		questions = []quiz.Question{}
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *quizApi) retrieveScores(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	ledger, err := api.svc.GetScores(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting scores")
	}
	return ctx.JSON(http.StatusOK, ledger)
}

func (api *quizApi) retrieveProgress(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	progress, err := api.svc.GetProgress(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting progress")
	}
	return ctx.JSON(http.StatusOK, progress)
}

func (api *quizApi) queryProgress(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	progress, err := api.svc.QueryProgressByUser(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying progress")
	}
	if progress == nil {
		progress = []quiz.Progress{}
	}
	return ctx.JSON(http.StatusOK, progress)
}

// regenerateQuestions builds a fresh question set from the material content.
func (api *quizApi) regenerateQuestions(ctx echo.Context) error {
	mat, err := api.topicSvc.GetMaterial(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == topic.ErrMaterialNotFound {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "getting material")
	}

	questions, err := api.svc.RegenerateQuestions(ctx.Request().Context(), mat.ID, mat.Title, mat.Content)
	if err != nil {
		return errors.Wrap(err, "regenerating questions")
	}
	return ctx.JSON(http.StatusCreated, questions)
}
