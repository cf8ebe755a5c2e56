package services

import (
	"context"

	"gorm.io/gorm"

	apperrors "github.com/dermatch/dermatch-go/internal/pkg/errors"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/repos"
	"github.com/dermatch/dermatch-go/internal/seed"
	"github.com/dermatch/dermatch-go/internal/types"
)

type CatalogService interface {
	Seed(ctx context.Context, catalog seed.Catalog) error
	ListQuestions(ctx context.Context) (*QuestionListView, error)
	QuestionsByID(ctx context.Context, tx *gorm.DB) (map[string]*types.QuizQuestion, error)
	GetProductDetail(ctx context.Context, productID string) (*ProductDetailView, error)
}

type catalogService struct {
	db           *gorm.DB
	log          *logger.Logger
	questionRepo repos.QuizQuestionRepo
	productRepo  repos.ProductRepo
}

func NewCatalogService(db *gorm.DB, log *logger.Logger, questionRepo repos.QuizQuestionRepo, productRepo repos.ProductRepo) CatalogService {
	return &catalogService{
		db:           db,
		log:          log.With("service", "CatalogService"),
		questionRepo: questionRepo,
		productRepo:  productRepo,
	}
}

// Seed upserts the catalog into the store. Rows are keyed by slug, so
// reseeding on every startup is safe.
func (s *catalogService) Seed(ctx context.Context, catalog seed.Catalog) error {
	questionRows, err := catalog.QuestionRows()
	if err != nil {
		return err
	}
	productRows, err := catalog.ProductRows()
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.questionRepo.UpsertMany(ctx, tx, questionRows); err != nil {
			return err
		}
		return s.productRepo.UpsertMany(ctx, tx, productRows)
	})
	if err != nil {
		return err
	}
	s.log.Info("catalog seeded", "questions", len(questionRows), "products", len(productRows))
	return nil
}

func (s *catalogService) ListQuestions(ctx context.Context) (*QuestionListView, error) {
	rows, err := s.questionRepo.GetAllOrdered(ctx, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindNetwork, "list questions", err)
	}
	views := make([]QuestionView, 0, len(rows))
	for _, row := range rows {
		views = append(views, questionViewFromRow(row))
	}
	return &QuestionListView{Questions: views}, nil
}

func (s *catalogService) QuestionsByID(ctx context.Context, tx *gorm.DB) (map[string]*types.QuizQuestion, error) {
	rows, err := s.questionRepo.GetAllOrdered(ctx, tx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*types.QuizQuestion, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	return byID, nil
}

// GetProductDetail serves the full product record. Unpublished products are
// indistinguishable from missing ones on purpose.
func (s *catalogService) GetProductDetail(ctx context.Context, productID string) (*ProductDetailView, error) {
	row, err := s.productRepo.GetByID(ctx, nil, productID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindNetwork, "get product", err)
	}
	if row == nil || !row.Published {
		return nil, apperrors.New(apperrors.KindNotFound, "product not found")
	}
	return productDetailViewFromRow(row), nil
}
