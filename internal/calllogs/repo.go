package calllogs

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

const upsertBatchSize = 500

// Repository exposes call-log persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, logs []models.CallLog, columns []string) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.CallLog, error)
	List(ctx context.Context, params ListQuery) ([]models.CallLog, *pagination.Cursor, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.CallLog, error)
	ListByInterpreterNames(ctx context.Context, names []string) ([]models.CallLog, error)
	BackfillServiceCenter(ctx context.Context, ids []uuid.UUID) (int64, error)
	Count(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// ListQuery selects one page of call logs, newest first.
type ListQuery struct {
	Limit           int
	Cursor          *pagination.Cursor
	InterpreterName string
}

type repositoryImpl struct {
	repo.Base
}

// NewRepository returns a call-log repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{Base: repo.NewBase(db)}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	return &repositoryImpl{Base: r.Bind(tx)}
}

// Upsert inserts logs keyed by call_id. On conflict only the listed columns
// are overwritten, so fields a schema revision does not import survive.
func (r *repositoryImpl) Upsert(ctx context.Context, logs []models.CallLog, columns []string) (int64, error) {
	if len(logs) == 0 {
		return 0, nil
	}
	updates := append(append([]string{}, columns...), "updated_at")
	result := r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "call_id"}},
			DoUpdates: clause.AssignmentColumns(updates),
		}).
		CreateInBatches(&logs, upsertBatchSize)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.CallLog, error) {
	var log models.CallLog
	if err := r.DB(ctx).First(&log, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *repositoryImpl) List(ctx context.Context, params ListQuery) ([]models.CallLog, *pagination.Cursor, error) {
	query := r.DB(ctx).Model(&models.CallLog{})
	if params.InterpreterName != "" {
		query = query.Where("interpreter_name = ?", params.InterpreterName)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.CallLog
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	page, next := pagination.Trim(rows, params.Limit, func(c models.CallLog) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	})
	return page, next, nil
}

// ListByIDs returns the selected logs; no ids selects every log.
func (r *repositoryImpl) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.CallLog, error) {
	query := r.DB(ctx).Model(&models.CallLog{})
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	var rows []models.CallLog
	if err := query.Order("interpreter_name ASC, call_time ASC, call_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByInterpreterNames returns every log attributed to one of names.
func (r *repositoryImpl) ListByInterpreterNames(ctx context.Context, names []string) ([]models.CallLog, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var rows []models.CallLog
	if err := r.DB(ctx).Where("interpreter_name IN ?", names).Order("interpreter_name ASC, call_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// BackfillServiceCenter copies each log's interpreter service center by exact
// name. Logs without a matching interpreter are left alone.
func (r *repositoryImpl) BackfillServiceCenter(ctx context.Context, ids []uuid.UUID) (int64, error) {
	matched := r.DB(ctx).
		Table("interpreters").
		Select("1").
		Where("interpreters.name = call_logs.interpreter_name")
	center := r.DB(ctx).
		Table("interpreters").
		Select("interpreters.service_center").
		Where("interpreters.name = call_logs.interpreter_name").
		Limit(1)

	query := r.DB(ctx).Model(&models.CallLog{}).Where("EXISTS (?)", matched)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	result := query.UpdateColumns(map[string]any{
		"service_center": center,
		"updated_at":     time.Now().UTC(),
	})
	return result.RowsAffected, result.Error
}

// Count returns how many of the selected logs exist; no ids counts all.
func (r *repositoryImpl) Count(ctx context.Context, ids []uuid.UUID) (int64, error) {
	query := r.DB(ctx).Model(&models.CallLog{})
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumPay adds up interpreter_pay of the given logs; NULL pay counts as zero.
func SumPay(logs []models.CallLog) decimal.Decimal {
	sum := decimal.Zero
	for _, log := range logs {
		if log.InterpreterPay.Valid {
			sum = sum.Add(log.InterpreterPay.Decimal)
		}
	}
	return sum
}
