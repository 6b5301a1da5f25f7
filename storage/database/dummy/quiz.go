package dummydb

import (
	"context"
	"sort"

	"github.com/belajarku/backend/core/gamification"
	"github.com/belajarku/backend/core/quiz"
)

type quizRepository struct {
	db *quizTable
}

var (
	_ quiz.Repository           = (*quizRepository)(nil) // interface compliance check
	_ gamification.XPRepository = (*quizRepository)(nil)
)

func NewQuizRepository(db *DB) quiz.Repository {
	return &quizRepository{db: db.quiz}
}

// NewXPRepository exposes the progress table as the gamification XP store.
func NewXPRepository(db *DB) gamification.XPRepository {
	return &quizRepository{db: db.quiz}
}

func scoreKey(userID, materialID string) string {
	return userID + "/" + materialID
}

func (repo *quizRepository) GetQuestion(ctx context.Context, materialID, page string) (quiz.Question, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, q := range repo.db.questions {
		if q.MaterialID == materialID && q.Page == page {
			return *q, nil
		}
	}
	return quiz.Question{}, quiz.ErrQuizNotFound
}

func (repo *quizRepository) QueryQuestionsByMaterial(ctx context.Context, materialID string) ([]quiz.Question, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var questions []quiz.Question
	for _, q := range repo.db.questions {
		if q.MaterialID == materialID {
			questions = append(questions, *q)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].Page < questions[j].Page })
	return questions, nil
}

func (repo *quizRepository) ReplaceQuestions(ctx context.Context, materialID string, questions []quiz.Question) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for id, q := range repo.db.questions {
		if q.MaterialID == materialID {
			delete(repo.db.questions, id)
		}
	}
	for i := range questions {
		q := questions[i]
		repo.db.questions[q.ID] = &q
	}
	return nil
}

func (repo *quizRepository) GetScores(ctx context.Context, userID, materialID string) (quiz.ScoreLedger, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ledger, ok := repo.db.scores[scoreKey(userID, materialID)]; ok {
		return *ledger, nil
	}
	return quiz.ScoreLedger{UserID: userID, MaterialID: materialID}, nil
}

func (repo *quizRepository) GetProgress(ctx context.Context, userID, materialID string) (quiz.Progress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.progress[scoreKey(userID, materialID)]; ok {
		return *p, nil
	}
	return quiz.Progress{UserID: userID, MaterialID: materialID}, nil
}

func (repo *quizRepository) QueryProgressByUser(ctx context.Context, userID string) ([]quiz.Progress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var progress []quiz.Progress
	for _, p := range repo.db.progress {
		if p.UserID == userID {
			progress = append(progress, *p)
		}
	}
	sort.Slice(progress, func(i, j int) bool { return progress[i].MaterialID < progress[j].MaterialID })
	return progress, nil
}

// UpdateScores holds the table lock for the whole read-modify-write so
// concurrent submissions for the same key serialize.
func (repo *quizRepository) UpdateScores(ctx context.Context, userID, materialID string, fn func(*quiz.ScoreLedger, *quiz.Progress) error) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := scoreKey(userID, materialID)
	ledger, ok := repo.db.scores[key]
	if !ok {
		ledger = &quiz.ScoreLedger{UserID: userID, MaterialID: materialID}
		repo.db.scores[key] = ledger
	}
	p, ok := repo.db.progress[key]
	if !ok {
		p = &quiz.Progress{UserID: userID, MaterialID: materialID}
		repo.db.progress[key] = p
	}
	return fn(ledger, p)
}

// gamification.XPRepository

func (repo *quizRepository) SumXPEarned(ctx context.Context, userID string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var total int
	for _, p := range repo.db.progress {
		if p.UserID == userID {
			total += p.XPEarned
		}
	}
	return total, nil
}
