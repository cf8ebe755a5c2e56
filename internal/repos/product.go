package repos

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/types"
)

type ProductRepo interface {
	UpsertMany(ctx context.Context, tx *gorm.DB, products []*types.Product) error
	GetByID(ctx context.Context, tx *gorm.DB, productID string) (*types.Product, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, productIDs []string) ([]*types.Product, error)
	GetPublished(ctx context.Context, tx *gorm.DB) ([]*types.Product, error)
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return &productRepo{db: db, log: baseLog.With("repo", "ProductRepo")}
}

func (r *productRepo) UpsertMany(ctx context.Context, tx *gorm.DB, products []*types.Product) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(products) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "brand", "category", "description", "price", "rating",
				"image_url", "ingredients", "tags", "concerns", "skin_types",
				"avoid_for", "published", "updated_at",
			}),
		}).
		Create(&products).Error
}

func (r *productRepo) GetByID(ctx context.Context, tx *gorm.DB, productID string) (*types.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Product
	if err := transaction.WithContext(ctx).
		Where("id = ?", productID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *productRepo) GetByIDs(ctx context.Context, tx *gorm.DB, productIDs []string) ([]*types.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Product
	if len(productIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", productIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetPublished returns scoreable products in id order so scoring ties break
// deterministically.
func (r *productRepo) GetPublished(ctx context.Context, tx *gorm.DB) ([]*types.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Product
	if err := transaction.WithContext(ctx).
		Where("published = ?", true).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
