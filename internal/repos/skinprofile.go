package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/types"
)

type SkinProfileRepo interface {
	Create(ctx context.Context, tx *gorm.DB, profile *types.SkinProfile) (*types.SkinProfile, error)
	GetByID(ctx context.Context, tx *gorm.DB, profileID uuid.UUID) (*types.SkinProfile, error)
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.SkinProfile, error)
	GetBySessionIDs(ctx context.Context, tx *gorm.DB, sessionIDs []uuid.UUID) ([]*types.SkinProfile, error)
	GetNewestByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.SkinProfile, error)
	UnsetLatestForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
	SetLatest(ctx context.Context, tx *gorm.DB, profileID uuid.UUID) error
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, profileIDs []uuid.UUID) error
}

type skinProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkinProfileRepo(db *gorm.DB, baseLog *logger.Logger) SkinProfileRepo {
	return &skinProfileRepo{db: db, log: baseLog.With("repo", "SkinProfileRepo")}
}

func (r *skinProfileRepo) Create(ctx context.Context, tx *gorm.DB, profile *types.SkinProfile) (*types.SkinProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *skinProfileRepo) GetByID(ctx context.Context, tx *gorm.DB, profileID uuid.UUID) (*types.SkinProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SkinProfile
	if err := transaction.WithContext(ctx).
		Where("id = ?", profileID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *skinProfileRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.SkinProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SkinProfile
	if err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *skinProfileRepo) GetBySessionIDs(ctx context.Context, tx *gorm.DB, sessionIDs []uuid.UUID) ([]*types.SkinProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SkinProfile
	if len(sessionIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("session_id IN ?", sessionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *skinProfileRepo) GetNewestByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.SkinProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SkinProfile
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// UnsetLatestForUser clears is_latest on every profile of the user. Callers
// run it in the same transaction that creates or promotes a latest profile,
// keeping "at most one latest" true at every commit point.
func (r *skinProfileRepo) UnsetLatestForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.SkinProfile{}).
		Where("user_id = ? AND is_latest = ?", userID, true).
		Update("is_latest", false).Error
}

func (r *skinProfileRepo) SetLatest(ctx context.Context, tx *gorm.DB, profileID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.SkinProfile{}).
		Where("id = ?", profileID).
		Update("is_latest", true).Error
}

func (r *skinProfileRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, profileIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(profileIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", profileIDs).
		Delete(&types.SkinProfile{}).Error
}
