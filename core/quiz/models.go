package quiz

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/belajarku/backend/core"
)

// Quiz configuration: every material carries a fixed-size quiz and each
// correct answer is worth a flat XP amount.
const (
	TotalQuestions = 3
	XPPerQuestion  = 5
)

// Answer results as stored in the page-score map.
const (
	ResultCorrect   = "correct"
	ResultIncorrect = "incorrect"
)

var (
	// errors
	ErrQuizNotFound = errors.New("quiz not found")
)

// Question is a stored multiple-choice question for one page of a material.
type Question struct {
	ID           string    `db:"question_id" json:"question_id"`
	MaterialID   string    `db:"material_id" json:"material_id"`
	Page         string    `db:"page" json:"page"`
	Prompt       string    `db:"prompt" json:"prompt"`
	Options      []string  `db:"-" json:"options"`
	CorrectIndex int       `db:"correct_index" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"` // UTC
}

// NewQuestion contains information needed to store a generated question.
type NewQuestion struct {
	Page         string   `json:"page" validate:"required"`
	Prompt       string   `json:"prompt" validate:"required"`
	Options      []string `json:"options" validate:"required,len=4,dive,required"`
	CorrectIndex int      `json:"correct_index" validate:"min=0,max=3"`
}

// PageScore is one entry of the per-(user, material) score map.
// Re-answering a page overwrites its entry.
type PageScore struct {
	Result         string    `json:"result"`
	SelectedAnswer int       `json:"selected_answer"`
	AnsweredAt     time.Time `json:"answered_at"` // UTC
}

// ScoreLedger is the per-(user, material) score map plus its running
// counters. The counters are an incremental view over Pages: after every
// ApplyAnswer they must equal a full recount of the map.
type ScoreLedger struct {
	UserID        string               `json:"user_id"`
	MaterialID    string               `json:"material_id"`
	Pages         map[string]PageScore `json:"pages"`
	TotalAnswered int                  `json:"total_answered"`
	TotalCorrect  int                  `json:"total_correct"`
}

// ApplyAnswer records an answer for a page, adjusting the counters by delta:
// TotalAnswered +1 only for a first answer; TotalCorrect +1 when a page
// becomes correct, -1 when a previously correct page becomes wrong.
func (l *ScoreLedger) ApplyAnswer(page string, selected int, correct bool, now time.Time) {
	if l.Pages == nil {
		l.Pages = make(map[string]PageScore)
	}

	prev, wasAnswered := l.Pages[page]
	wasCorrect := wasAnswered && prev.Result == ResultCorrect

	if !wasAnswered {
		l.TotalAnswered++
	}
	if correct && !wasCorrect {
		l.TotalCorrect++
	} else if !correct && wasCorrect {
		l.TotalCorrect--
	}

	result := ResultIncorrect
	if correct {
		result = ResultCorrect
	}
	l.Pages[page] = PageScore{
		Result:         result,
		SelectedAnswer: selected,
		AnsweredAt:     now,
	}
}

// Recount derives the counters from the full map; used to assert the
// incremental-view invariant.
func (l *ScoreLedger) Recount() (answered, correct int) {
	for _, score := range l.Pages {
		answered++
		if score.Result == ResultCorrect {
			correct++
		}
	}
	return answered, correct
}

// Progress is the per-(user, material) attempt ledger. XPEarned holds the
// best score across attempts and never decreases on a retake.
type Progress struct {
	UserID            string    `db:"user_id" json:"user_id"`
	MaterialID        string    `db:"material_id" json:"material_id"`
	QuestionsAnswered int       `db:"questions_answered" json:"questions_answered"`
	CorrectAnswers    int       `db:"correct_answers" json:"correct_answers"`
	XPEarned          int       `db:"xp_earned" json:"xp_earned"`
	IsCompleted       bool      `db:"is_completed" json:"is_completed"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"` // UTC
}

// recordAnswer folds one submission into the attempt ledger. The first
// answer after a completed attempt starts a retake with fresh counters.
// Completion keeps the best XP across attempts.
func (p *Progress) recordAnswer(correct bool, now time.Time) {
	if p.IsCompleted {
		p.QuestionsAnswered = 0
		p.CorrectAnswers = 0
		p.IsCompleted = false
	}

	p.QuestionsAnswered++
	if correct {
		p.CorrectAnswers++
	}
	p.UpdatedAt = now

	if p.QuestionsAnswered >= TotalQuestions {
		p.IsCompleted = true
		if attemptXP := p.CorrectAnswers * XPPerQuestion; attemptXP > p.XPEarned {
			p.XPEarned = attemptXP
		}
	}
}

// SubmitAnswer is the answer-submission input.
type SubmitAnswer struct {
	MaterialID     string `json:"material_id" validate:"required"`
	Page           string `json:"page" validate:"required"`
	SelectedAnswer *int   `json:"selected_answer" validate:"required,min=0,max=3"`
}

func (sa *SubmitAnswer) Validate(validate *validator.Validate) error {
	sa.MaterialID = core.CleanString(sa.MaterialID)
	sa.Page = core.CleanString(sa.Page)
	return validate.Struct(sa)
}

// AnswerResult is returned to the caller after a submission.
type AnswerResult struct {
	IsCorrect     bool `json:"is_correct"`
	CorrectAnswer int  `json:"correct_answer"`
	IsCompleted   bool `json:"is_completed"`
	XPEarned      int  `json:"xp_earned"`
}

type (
	// Repository persists quiz questions, score ledgers and attempt progress.
	Repository interface {
		// GetQuestion returns the stored question for (material, page),
		// or ErrQuizNotFound.
		GetQuestion(ctx context.Context, materialID, page string) (Question, error)
		QueryQuestionsByMaterial(ctx context.Context, materialID string) ([]Question, error)
		// ReplaceQuestions swaps the stored question set of a material.
		ReplaceQuestions(ctx context.Context, materialID string, questions []Question) error

		GetScores(ctx context.Context, userID, materialID string) (ScoreLedger, error)
		GetProgress(ctx context.Context, userID, materialID string) (Progress, error)
		QueryProgressByUser(ctx context.Context, userID string) ([]Progress, error)

		// UpdateScores runs fn over the (user, material) ledger and progress
		// inside a single atomic read-modify-write; implementations must
		// guard against concurrent submissions for the same key.
		UpdateScores(ctx context.Context, userID, materialID string, fn func(*ScoreLedger, *Progress) error) error
	}

	// Generator produces a question set from material content.
	Generator interface {
		GenerateQuestions(ctx context.Context, title, content string, n int) ([]NewQuestion, error)
	}
)
