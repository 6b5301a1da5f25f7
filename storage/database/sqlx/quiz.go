package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"

	"github.com/belajarku/backend/core/gamification"
	"github.com/belajarku/backend/core/quiz"
)

type quizRepository struct {
	db *sqlx.DB
}

var (
	_ quiz.Repository           = (*quizRepository)(nil) // interface compliance check
	_ gamification.XPRepository = (*quizRepository)(nil)
)

func NewQuizRepository(db *sqlx.DB) quiz.Repository {
	return &quizRepository{db: db}
}

// NewXPRepository exposes the quiz_progress table as the gamification XP store.
func NewXPRepository(db *sqlx.DB) gamification.XPRepository {
	return &quizRepository{db: db}
}

// dbQuestion mirrors quiz.Question with the options held as JSONB.
type dbQuestion struct {
	ID           string         `db:"question_id"`
	MaterialID   string         `db:"material_id"`
	Page         string         `db:"page"`
	Prompt       string         `db:"prompt"`
	Options      types.JSONText `db:"options"`
	CorrectIndex int            `db:"correct_index"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (q dbQuestion) toCore() (quiz.Question, error) {
	question := quiz.Question{
		ID:           q.ID,
		MaterialID:   q.MaterialID,
		Page:         q.Page,
		Prompt:       q.Prompt,
		CorrectIndex: q.CorrectIndex,
		CreatedAt:    q.CreatedAt,
	}
	if err := json.Unmarshal(q.Options, &question.Options); err != nil {
		return quiz.Question{}, errors.Wrap(err, "decoding question options")
	}
	return question, nil
}

func toDBQuestion(q quiz.Question) (dbQuestion, error) {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return dbQuestion{}, errors.Wrap(err, "encoding question options")
	}
	return dbQuestion{
		ID:           q.ID,
		MaterialID:   q.MaterialID,
		Page:         q.Page,
		Prompt:       q.Prompt,
		Options:      options,
		CorrectIndex: q.CorrectIndex,
		CreatedAt:    q.CreatedAt,
	}, nil
}

// dbScores mirrors quiz.ScoreLedger with the page map held as JSONB.
type dbScores struct {
	UserID        string         `db:"user_id"`
	MaterialID    string         `db:"material_id"`
	Pages         types.JSONText `db:"pages"`
	TotalAnswered int            `db:"total_answered"`
	TotalCorrect  int            `db:"total_correct"`
}

func (s dbScores) toCore() (quiz.ScoreLedger, error) {
	ledger := quiz.ScoreLedger{
		UserID:        s.UserID,
		MaterialID:    s.MaterialID,
		TotalAnswered: s.TotalAnswered,
		TotalCorrect:  s.TotalCorrect,
	}
	if err := json.Unmarshal(s.Pages, &ledger.Pages); err != nil {
		return quiz.ScoreLedger{}, errors.Wrap(err, "decoding page scores")
	}
	return ledger, nil
}

const questionColumns = "question_id, material_id, page, prompt, options, correct_index, created_at"

func (repo *quizRepository) GetQuestion(ctx context.Context, materialID, page string) (quiz.Question, error) {
	var q dbQuestion
	err := repo.db.GetContext(ctx, &q,
		"SELECT "+questionColumns+" FROM questions WHERE material_id = $1 AND page = $2", materialID, page)
	if err != nil {
		if err == sql.ErrNoRows {
			return quiz.Question{}, quiz.ErrQuizNotFound
		}
		return quiz.Question{}, errors.Wrap(err, "getting question")
	}
	return q.toCore()
}

func (repo *quizRepository) QueryQuestionsByMaterial(ctx context.Context, materialID string) ([]quiz.Question, error) {
	var dbQuestions []dbQuestion
	err := repo.db.SelectContext(ctx, &dbQuestions,
		"SELECT "+questionColumns+" FROM questions WHERE material_id = $1 ORDER BY page ASC", materialID)
	if err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	questions := make([]quiz.Question, 0, len(dbQuestions))
	for _, q := range dbQuestions {
		question, err := q.toCore()
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, nil
}

func (repo *quizRepository) ReplaceQuestions(ctx context.Context, materialID string, questions []quiz.Question) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM questions WHERE material_id = $1", materialID); err != nil {
		return errors.Wrap(err, "deleting old questions")
	}

	const q = `
	INSERT INTO questions (` + questionColumns + `)
	VALUES (:question_id, :material_id, :page, :prompt, :options, :correct_index, :created_at)`
	for _, question := range questions {
		dbq, err := toDBQuestion(question)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, q, dbq); err != nil {
			return errors.Wrap(err, "inserting question")
		}
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func (repo *quizRepository) GetScores(ctx context.Context, userID, materialID string) (quiz.ScoreLedger, error) {
	var s dbScores
	err := repo.db.GetContext(ctx, &s,
		"SELECT user_id, material_id, pages, total_answered, total_correct FROM quiz_scores WHERE user_id = $1 AND material_id = $2",
		userID, materialID)
	if err != nil {
		if err == sql.ErrNoRows {
			return quiz.ScoreLedger{UserID: userID, MaterialID: materialID}, nil
		}
		return quiz.ScoreLedger{}, errors.Wrap(err, "getting scores")
	}
	return s.toCore()
}

func (repo *quizRepository) GetProgress(ctx context.Context, userID, materialID string) (quiz.Progress, error) {
	var p quiz.Progress
	err := repo.db.GetContext(ctx, &p,
		"SELECT user_id, material_id, questions_answered, correct_answers, xp_earned, is_completed, updated_at FROM quiz_progress WHERE user_id = $1 AND material_id = $2",
		userID, materialID)
	if err != nil {
		if err == sql.ErrNoRows {
			return quiz.Progress{UserID: userID, MaterialID: materialID}, nil
		}
		return quiz.Progress{}, errors.Wrap(err, "getting progress")
	}
	return p, nil
}

func (repo *quizRepository) QueryProgressByUser(ctx context.Context, userID string) ([]quiz.Progress, error) {
	progress := make([]quiz.Progress, 0)
	err := repo.db.SelectContext(ctx, &progress,
		"SELECT user_id, material_id, questions_answered, correct_answers, xp_earned, is_completed, updated_at FROM quiz_progress WHERE user_id = $1 ORDER BY material_id ASC",
		userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying progress")
	}
	return progress, nil
}

// UpdateScores runs fn inside a transaction holding row locks on the
// (user, material) score and progress rows, so concurrent submissions for
// the same key serialize instead of clobbering each other.
func (repo *quizRepository) UpdateScores(ctx context.Context, userID, materialID string, fn func(*quiz.ScoreLedger, *quiz.Progress) error) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	// ensure both rows exist before locking them
	_, err = tx.ExecContext(ctx, `
	INSERT INTO quiz_scores (user_id, material_id, pages) VALUES ($1, $2, '{}')
	ON CONFLICT (user_id, material_id) DO NOTHING`, userID, materialID)
	if err != nil {
		return errors.Wrap(err, "ensuring score row")
	}
	_, err = tx.ExecContext(ctx, `
	INSERT INTO quiz_progress (user_id, material_id, updated_at) VALUES ($1, $2, now())
	ON CONFLICT (user_id, material_id) DO NOTHING`, userID, materialID)
	if err != nil {
		return errors.Wrap(err, "ensuring progress row")
	}

	var s dbScores
	err = tx.GetContext(ctx, &s,
		"SELECT user_id, material_id, pages, total_answered, total_correct FROM quiz_scores WHERE user_id = $1 AND material_id = $2 FOR UPDATE",
		userID, materialID)
	if err != nil {
		return errors.Wrap(err, "locking score row")
	}
	ledger, err := s.toCore()
	if err != nil {
		return err
	}

	var p quiz.Progress
	err = tx.GetContext(ctx, &p,
		"SELECT user_id, material_id, questions_answered, correct_answers, xp_earned, is_completed, updated_at FROM quiz_progress WHERE user_id = $1 AND material_id = $2 FOR UPDATE",
		userID, materialID)
	if err != nil {
		return errors.Wrap(err, "locking progress row")
	}

	if err := fn(&ledger, &p); err != nil {
		return err
	}

	pages, err := json.Marshal(ledger.Pages)
	if err != nil {
		return errors.Wrap(err, "encoding page scores")
	}
	_, err = tx.ExecContext(ctx, `
	UPDATE quiz_scores
	SET pages = $1, total_answered = $2, total_correct = $3
	WHERE user_id = $4 AND material_id = $5`,
		types.JSONText(pages), ledger.TotalAnswered, ledger.TotalCorrect, userID, materialID)
	if err != nil {
		return errors.Wrap(err, "saving scores")
	}

	_, err = tx.ExecContext(ctx, `
	UPDATE quiz_progress
	SET questions_answered = $1, correct_answers = $2, xp_earned = $3, is_completed = $4, updated_at = $5
	WHERE user_id = $6 AND material_id = $7`,
		p.QuestionsAnswered, p.CorrectAnswers, p.XPEarned, p.IsCompleted, p.UpdatedAt, userID, materialID)
	if err != nil {
		return errors.Wrap(err, "saving progress")
	}

	return errors.Wrap(tx.Commit(), "committing transaction")
}

// gamification.XPRepository

func (repo *quizRepository) SumXPEarned(ctx context.Context, userID string) (int, error) {
	var total int
	err := repo.db.GetContext(ctx, &total,
		"SELECT COALESCE(SUM(xp_earned), 0) FROM quiz_progress WHERE user_id = $1", userID)
	if err != nil {
		return 0, errors.Wrap(err, "summing xp")
	}
	return total, nil
}
