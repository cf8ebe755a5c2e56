package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/types"
)

type QuizSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *types.QuizSession) (*types.QuizSession, error)
	GetByID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.QuizSession, error)
	GetCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.QuizSession, error)
	MarkCompleted(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, completedAt time.Time) error
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, sessionIDs []uuid.UUID) error
}

type quizSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizSessionRepo(db *gorm.DB, baseLog *logger.Logger) QuizSessionRepo {
	return &quizSessionRepo{db: db, log: baseLog.With("repo", "QuizSessionRepo")}
}

func (r *quizSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.QuizSession) (*types.QuizSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (r *quizSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.QuizSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.QuizSession
	if err := transaction.WithContext(ctx).
		Where("id = ?", sessionID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *quizSessionRepo) GetCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.QuizSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.QuizSession
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, types.SessionStatusCompleted).
		Order("completed_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizSessionRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, completedAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.QuizSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]any{
			"status":       types.SessionStatusCompleted,
			"completed_at": completedAt,
		}).Error
}

func (r *quizSessionRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, sessionIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(sessionIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", sessionIDs).
		Delete(&types.QuizSession{}).Error
}
