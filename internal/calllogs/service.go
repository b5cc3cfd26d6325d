package calllogs

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/callpay-backend/pkg/errors"
	"github.com/angelmondragon/callpay-backend/pkg/pagination"
)

// Service defines call-log reads and the maintenance operations.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*CallLogDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	BackfillServiceCenter(ctx context.Context, ids []uuid.UUID) (*BackfillResult, error)
	PayTotal(ctx context.Context, ids []uuid.UUID) (*PayTotal, error)
}

// ListParams configures call-log pagination.
type ListParams struct {
	Limit           int
	Cursor          string
	InterpreterName string
}

// ListResult wraps one page of call logs and the cursor for the next.
type ListResult struct {
	Items  []CallLogDTO `json:"items"`
	Cursor string       `json:"cursor"`
}

type service struct {
	repo Repository
}

// NewService wires call-log dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "call logs repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CallLogDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "call log id required")
	}
	log, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "call log not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load call log")
	}
	return FromModel(log), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := ListQuery{Limit: params.Limit, InterpreterName: params.InterpreterName}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list call logs")
	}
	items := make([]CallLogDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &ListResult{Items: items, Cursor: pagination.EncodeNext(next)}, nil
}

// BackfillServiceCenter copies the matching interpreter's service center onto
// the selected logs (all logs when ids is empty).
func (s *service) BackfillServiceCenter(ctx context.Context, ids []uuid.UUID) (*BackfillResult, error) {
	selected, err := s.repo.Count(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count call logs")
	}
	updated, err := s.repo.BackfillServiceCenter(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "backfill service center")
	}
	skipped := selected - updated
	if skipped < 0 {
		skipped = 0
	}
	return &BackfillResult{Updated: updated, Skipped: skipped}, nil
}

// PayTotal sums interpreter pay across the selected logs without persisting
// anything.
func (s *service) PayTotal(ctx context.Context, ids []uuid.UUID) (*PayTotal, error) {
	logs, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load call logs")
	}
	total := SumPay(logs).Round(2)
	return &PayTotal{
		Total:   total,
		Count:   len(logs),
		Message: fmt.Sprintf("Total interpreter pay for %d call logs: %s", len(logs), total.StringFixed(2)),
	}, nil
}
