package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/types"
)

type SessionRecommendationRepo interface {
	CreateMany(ctx context.Context, tx *gorm.DB, recommendations []*types.SessionRecommendation) error
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.SessionRecommendation, error)
	GetBySessionIDs(ctx context.Context, tx *gorm.DB, sessionIDs []uuid.UUID) ([]*types.SessionRecommendation, error)
	FullDeleteBySessionIDs(ctx context.Context, tx *gorm.DB, sessionIDs []uuid.UUID) error
}

type sessionRecommendationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) SessionRecommendationRepo {
	return &sessionRecommendationRepo{db: db, log: baseLog.With("repo", "SessionRecommendationRepo")}
}

func (r *sessionRecommendationRepo) CreateMany(ctx context.Context, tx *gorm.DB, recommendations []*types.SessionRecommendation) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(recommendations) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Create(&recommendations).Error
}

// GetBySessionID returns rows in rank order; callers serve them as-is.
func (r *sessionRecommendationRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.SessionRecommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SessionRecommendation
	if err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("rank ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sessionRecommendationRepo) GetBySessionIDs(ctx context.Context, tx *gorm.DB, sessionIDs []uuid.UUID) ([]*types.SessionRecommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SessionRecommendation
	if len(sessionIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("session_id IN ?", sessionIDs).
		Order("session_id ASC, rank ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sessionRecommendationRepo) FullDeleteBySessionIDs(ctx context.Context, tx *gorm.DB, sessionIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(sessionIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("session_id IN ?", sessionIDs).
		Delete(&types.SessionRecommendation{}).Error
}
