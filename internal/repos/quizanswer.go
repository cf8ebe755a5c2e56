package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/types"
)

type QuizAnswerRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, answer *types.QuizAnswer) (*types.QuizAnswer, error)
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.QuizAnswer, error)
	FullDeleteBySessionIDs(ctx context.Context, tx *gorm.DB, sessionIDs []uuid.UUID) error
}

type quizAnswerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizAnswerRepo(db *gorm.DB, baseLog *logger.Logger) QuizAnswerRepo {
	return &quizAnswerRepo{db: db, log: baseLog.With("repo", "QuizAnswerRepo")}
}

// Upsert writes the answer for (session_id, question_id), replacing any
// previous choice set. Last write wins.
func (r *quizAnswerRepo) Upsert(ctx context.Context, tx *gorm.DB, answer *types.QuizAnswer) (*types.QuizAnswer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"choice_ids", "updated_at"}),
		}).
		Create(answer).Error; err != nil {
		return nil, err
	}
	return answer, nil
}

func (r *quizAnswerRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.QuizAnswer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.QuizAnswer
	if err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizAnswerRepo) FullDeleteBySessionIDs(ctx context.Context, tx *gorm.DB, sessionIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(sessionIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("session_id IN ?", sessionIDs).
		Delete(&types.QuizAnswer{}).Error
}
