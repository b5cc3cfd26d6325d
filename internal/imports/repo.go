package imports

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/callpay-backend/internal/repo"
	"github.com/angelmondragon/callpay-backend/pkg/db/models"
	"github.com/angelmondragon/callpay-backend/pkg/pagination"
)

// Repository persists import audit runs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, run *models.ImportRun) error
	ListRecent(ctx context.Context, limit int) ([]models.ImportRun, error)
}

type repositoryImpl struct {
	repo.Base
}

// NewRepository returns an import-run repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{Base: repo.NewBase(db)}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	return &repositoryImpl{Base: r.Bind(tx)}
}

func (r *repositoryImpl) Create(ctx context.Context, run *models.ImportRun) error {
	return r.DB(ctx).Create(run).Error
}

func (r *repositoryImpl) ListRecent(ctx context.Context, limit int) ([]models.ImportRun, error) {
	var runs []models.ImportRun
	if err := r.DB(ctx).
		Order("started_at DESC, id DESC").
		Limit(pagination.NormalizeLimit(limit)).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
