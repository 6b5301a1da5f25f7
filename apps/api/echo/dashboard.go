package echoapi

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/belajarku/backend/core/gamification"
	"github.com/belajarku/backend/core/quiz"
	"github.com/belajarku/backend/core/topic"
	"github.com/belajarku/backend/core/user"
)

const topEarnersLimit = 5

type dashboardApi struct {
	userSvc  user.Service
	topicSvc topic.Service
	quizSvc  quiz.Service
	gameSvc  gamification.Service
}

func registerDashboardAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	userSvc user.Service,
	topicSvc topic.Service,
	quizSvc quiz.Service,
	gameSvc gamification.Service,
) {
	api := dashboardApi{
		userSvc:  userSvc,
		topicSvc: topicSvc,
		quizSvc:  quizSvc,
		gameSvc:  gameSvc,
	}
	g.GET("/dashboard", api.retrieve, jwt, staffMiddleware())
}

type (
	TopEarner struct {
		UserID   string `json:"user_id"`
		Username string `json:"username"`
		Name     string `json:"name"`
		TotalXP  int    `json:"total_xp"`
		Level    int    `json:"level"`
	}

	TopicStats struct {
		TopicID       string `json:"topic_id"`
		Name          string `json:"name"`
		MaterialCount int    `json:"material_count"`
		Completions   int    `json:"completions"`
	}

	Dashboard struct {
		TotalUsers   int          `json:"total_users"`
		ActiveUsers  int          `json:"active_users"`
		TotalTopics  int          `json:"total_topics"`
		Topics       []TopicStats `json:"topics"`
		TopXPEarners []TopEarner  `json:"top_xp_earners"`
	}
)

// retrieve assembles the staff overview from the individual stores.
func (api *dashboardApi) retrieve(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	users, err := api.userSvc.Query(reqCtx, nil, nil)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}

	dash := Dashboard{
		TotalUsers:   len(users),
		Topics:       []TopicStats{},
		TopXPEarners: []TopEarner{},
	}

	earners := make([]TopEarner, 0, len(users))
	completions := make(map[string]int) // materialID -> completed attempts
	for _, usr := range users {
		if usr.IsActive {
			dash.ActiveUsers++
		}
		if !usr.IsStudent() {
			continue
		}
		progress, err := api.quizSvc.QueryProgressByUser(reqCtx, usr.ID)
		if err != nil {
			return errors.Wrap(err, "querying user progress")
		}
		for _, p := range progress {
			if p.IsCompleted {
				completions[p.MaterialID]++
			}
		}
		total, err := api.gameSvc.TotalXP(reqCtx, usr.ID)
		if err != nil {
			return errors.Wrap(err, "summing user xp")
		}
		earners = append(earners, TopEarner{
			UserID:   usr.ID,
			Username: usr.Username,
			Name:     usr.Name,
			TotalXP:  total,
			Level:    gamification.LevelForXP(total),
		})
	}
	sort.SliceStable(earners, func(i, j int) bool { return earners[i].TotalXP > earners[j].TotalXP })
	if len(earners) > topEarnersLimit {
		earners = earners[:topEarnersLimit]
	}
	dash.TopXPEarners = earners

	topics, err := api.topicSvc.QueryTopics(reqCtx, nil, nil)
	if err != nil {
		return errors.Wrap(err, "querying topics")
	}
	dash.TotalTopics = len(topics)
	for _, t := range topics {
		mats, err := api.topicSvc.QueryMaterialsByTopic(reqCtx, t.ID)
		if err != nil {
			return errors.Wrap(err, "querying materials")
		}
		stats := TopicStats{
			TopicID:       t.ID,
			Name:          t.Name,
			MaterialCount: len(mats),
		}
		for _, m := range mats {
			stats.Completions += completions[m.ID]
		}
		dash.Topics = append(dash.Topics, stats)
	}

	return ctx.JSON(http.StatusOK, dash)
}
