package repos

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/types"
)

type QuizQuestionRepo interface {
	UpsertMany(ctx context.Context, tx *gorm.DB, questions []*types.QuizQuestion) error
	GetAllOrdered(ctx context.Context, tx *gorm.DB) ([]*types.QuizQuestion, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, questionIDs []string) ([]*types.QuizQuestion, error)
}

type quizQuestionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuizQuestionRepo {
	return &quizQuestionRepo{db: db, log: baseLog.With("repo", "QuizQuestionRepo")}
}

// UpsertMany writes catalog rows keyed by slug id, so reseeding at startup
// is safe.
func (r *quizQuestionRepo) UpsertMany(ctx context.Context, tx *gorm.DB, questions []*types.QuizQuestion) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(questions) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"prompt", "category", "is_multi", "required", "sort_order", "choices", "updated_at"}),
		}).
		Create(&questions).Error
}

func (r *quizQuestionRepo) GetAllOrdered(ctx context.Context, tx *gorm.DB) ([]*types.QuizQuestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.QuizQuestion
	if err := transaction.WithContext(ctx).
		Order("sort_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizQuestionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, questionIDs []string) ([]*types.QuizQuestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.QuizQuestion
	if len(questionIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", questionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
