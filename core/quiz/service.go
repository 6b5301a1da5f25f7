package quiz

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/belajarku/backend/core"
	"github.com/belajarku/backend/core/gamification"
)

type (
	Service interface {
		// SubmitAnswer grades one page answer and folds it into the user's
		// score ledger and attempt progress.
		SubmitAnswer(ctx context.Context, userID string, sa SubmitAnswer) (AnswerResult, error)
		QuestionsForMaterial(ctx context.Context, materialID string) ([]Question, error)
		GetScores(ctx context.Context, userID, materialID string) (ScoreLedger, error)
		GetProgress(ctx context.Context, userID, materialID string) (Progress, error)
		QueryProgressByUser(ctx context.Context, userID string) ([]Progress, error)
		// RegenerateQuestions asks the generator for a fresh question set and
		// replaces the material's stored questions.
		RegenerateQuestions(ctx context.Context, materialID, title, content string) ([]Question, error)
	}

	service struct {
		repo     Repository
		gen      Generator
		badgeSvc gamification.Service
		logger   core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, gen Generator, badgeSvc gamification.Service, logger core.Logger) Service {
	return &service{
		repo:     repo,
		gen:      gen,
		badgeSvc: badgeSvc,
		logger:   logger,
	}
}

func (svc *service) SubmitAnswer(ctx context.Context, userID string, sa SubmitAnswer) (AnswerResult, error) {
	question, err := svc.repo.GetQuestion(ctx, sa.MaterialID, sa.Page)
	if err != nil {
		if err == ErrQuizNotFound {
			return AnswerResult{}, err
		}
		return AnswerResult{}, errors.Wrap(err, "finding question")
	}

	selected := *sa.SelectedAnswer
	isCorrect := selected == question.CorrectIndex
	now := time.Now().UTC()

	var res AnswerResult
	err = svc.repo.UpdateScores(ctx, userID, sa.MaterialID, func(ledger *ScoreLedger, progress *Progress) error {
		ledger.ApplyAnswer(sa.Page, selected, isCorrect, now)
		progress.recordAnswer(isCorrect, now)
		res = AnswerResult{
			IsCorrect:     isCorrect,
			CorrectAnswer: question.CorrectIndex,
			IsCompleted:   progress.IsCompleted,
			XPEarned:      progress.XPEarned,
		}
		return nil
	})
	if err != nil {
		return AnswerResult{}, errors.Wrap(err, "updating scores")
	}

	if res.IsCompleted {
		svc.updateBadge(ctx, userID)
	}
	return res, nil
}

// updateBadge re-resolves the user's badge after a completed attempt.
// A catalog gap only means the user has no badge; other failures are logged
// and do not fail the submission that triggered the update.
func (svc *service) updateBadge(ctx context.Context, userID string) {
	if svc.badgeSvc == nil {
		return
	}
	if _, err := svc.badgeSvc.UpdateUserBadge(ctx, userID); err != nil && err != gamification.ErrBadgeNotFound {
		if svc.logger != nil {
			svc.logger.Error("updating user badge", errors.Wrap(err, "updating user badge"))
		}
	}
}

func (svc *service) QuestionsForMaterial(ctx context.Context, materialID string) ([]Question, error) {
	questions, err := svc.repo.QueryQuestionsByMaterial(ctx, materialID)
	if err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	return questions, nil
}

func (svc *service) GetScores(ctx context.Context, userID, materialID string) (ScoreLedger, error) {
	return svc.repo.GetScores(ctx, userID, materialID)
}

func (svc *service) GetProgress(ctx context.Context, userID, materialID string) (Progress, error) {
	return svc.repo.GetProgress(ctx, userID, materialID)
}

func (svc *service) QueryProgressByUser(ctx context.Context, userID string) ([]Progress, error) {
	return svc.repo.QueryProgressByUser(ctx, userID)
}

func (svc *service) RegenerateQuestions(ctx context.Context, materialID, title, content string) ([]Question, error) {
	generated, err := svc.gen.GenerateQuestions(ctx, title, content, TotalQuestions)
	if err != nil {
		return nil, errors.Wrap(err, "generating questions")
	}

	now := time.Now().UTC()
	questions := make([]Question, 0, len(generated))
	for _, nq := range generated {
		questions = append(questions, Question{
			ID:           uuid.New().String(),
			MaterialID:   materialID,
			Page:         nq.Page,
			Prompt:       nq.Prompt,
			Options:      nq.Options,
			CorrectIndex: nq.CorrectIndex,
			CreatedAt:    now,
		})
	}
	if err := svc.repo.ReplaceQuestions(ctx, materialID, questions); err != nil {
		return nil, errors.Wrap(err, "replacing questions")
	}
	return questions, nil
}
