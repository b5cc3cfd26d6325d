package interpreters

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/callpay-backend/internal/repo"
	"github.com/angelmondragon/callpay-backend/pkg/db/models"
	"github.com/angelmondragon/callpay-backend/pkg/pagination"
)

// Repository exposes roster persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, interpreter *models.Interpreter) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Interpreter, error)
	UpdateProfile(ctx context.Context, interpreter *models.Interpreter) error
	UpsertByName(ctx context.Context, rows []models.Interpreter) (int64, error)
	List(ctx context.Context, params ListQuery) ([]models.Interpreter, *pagination.Cursor, error)
	ListAll(ctx context.Context) ([]models.Interpreter, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Interpreter, error)
	UpdateTotals(ctx context.Context, id uuid.UUID, amount decimal.Decimal, minutes *int64) error
}

// ListQuery selects one page of the roster in persisted order.
type ListQuery struct {
	Limit  int
	Cursor *pagination.Cursor
	Name   string
}

type repositoryImpl struct {
	repo.Base
}

// NewRepository returns a roster repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{Base: repo.NewBase(db)}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	return &repositoryImpl{Base: r.Bind(tx)}
}

func (r *repositoryImpl) Create(ctx context.Context, interpreter *models.Interpreter) error {
	return r.DB(ctx).Create(interpreter).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Interpreter, error) {
	var interpreter models.Interpreter
	if err := r.DB(ctx).First(&interpreter, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &interpreter, nil
}

// UpdateProfile writes the operator-editable columns only; totals belong to
// reconciliation.
func (r *repositoryImpl) UpdateProfile(ctx context.Context, interpreter *models.Interpreter) error {
	return r.DB(ctx).
		Model(&models.Interpreter{}).
		Where("id = ?", interpreter.ID).
		Updates(map[string]any{
			"name":           interpreter.Name,
			"payment_method": interpreter.PaymentMethod,
			"service_center": interpreter.ServiceCenter,
			"updated_at":     time.Now().UTC(),
		}).Error
}

// UpsertByName inserts roster rows, overwriting payment method and service
// center of rows whose name already exists.
func (r *repositoryImpl) UpsertByName(ctx context.Context, rows []models.Interpreter) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	result := r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"payment_method", "service_center", "updated_at"}),
		}).
		Create(&rows)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) List(ctx context.Context, params ListQuery) ([]models.Interpreter, *pagination.Cursor, error) {
	query := r.DB(ctx).Model(&models.Interpreter{})
	if params.Name != "" {
		query = query.Where("name = ?", params.Name)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) > (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Interpreter
	if err := query.Order("created_at ASC, id ASC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	page, next := pagination.Trim(rows, params.Limit, func(i models.Interpreter) pagination.Cursor {
		return pagination.Cursor{CreatedAt: i.CreatedAt, ID: i.ID}
	})
	return page, next, nil
}

// ListAll returns the whole roster in persisted order.
func (r *repositoryImpl) ListAll(ctx context.Context) ([]models.Interpreter, error) {
	var rows []models.Interpreter
	if err := r.DB(ctx).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByIDs returns the selected interpreters in persisted order; no ids
// selects the whole roster.
func (r *repositoryImpl) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Interpreter, error) {
	if len(ids) == 0 {
		return r.ListAll(ctx)
	}
	var rows []models.Interpreter
	if err := r.DB(ctx).Where("id IN ?", ids).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateTotals overwrites the reconciled totals of one interpreter. A nil
// minutes leaves total_minutes untouched.
func (r *repositoryImpl) UpdateTotals(ctx context.Context, id uuid.UUID, amount decimal.Decimal, minutes *int64) error {
	updates := map[string]any{
		"total_amount": decimal.NullDecimal{Decimal: amount, Valid: true},
		"updated_at":   time.Now().UTC(),
	}
	if minutes != nil {
		updates["total_minutes"] = *minutes
	}
	result := r.DB(ctx).Model(&models.Interpreter{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
