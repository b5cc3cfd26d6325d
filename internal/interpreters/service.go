package interpreters

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/callpay-backend/internal/schema"
	"github.com/angelmondragon/callpay-backend/pkg/db"
	"github.com/angelmondragon/callpay-backend/pkg/db/models"
	"github.com/angelmondragon/callpay-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/callpay-backend/pkg/errors"
	"github.com/angelmondragon/callpay-backend/pkg/pagination"
)

// Service defines roster CRUD.
type Service interface {
	Create(ctx context.Context, input Input) (*InterpreterDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*InterpreterDTO, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*InterpreterDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

// ListParams configures roster pagination.
type ListParams struct {
	Limit  int
	Cursor string
	Name   string
}

// ListResult wraps one roster page and the cursor for the next.
type ListResult struct {
	Items  []InterpreterDTO `json:"items"`
	Cursor string           `json:"cursor"`
}

type service struct {
	repo     Repository
	revision schema.Revision
}

// NewService wires the roster service to the active schema revision.
func NewService(repo Repository, revision schema.Revision) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "interpreters repository required")
	}
	return &service{repo: repo, revision: revision}, nil
}

func (s *service) Create(ctx context.Context, input Input) (*InterpreterDTO, error) {
	interpreter, err := s.build(input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, interpreter); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "interpreter name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create interpreter")
	}
	return FromModel(interpreter), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*InterpreterDTO, error) {
	interpreter, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(interpreter), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*InterpreterDTO, error) {
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := s.build(input)
	if err != nil {
		return nil, err
	}

	current.Name = next.Name
	current.PaymentMethod = next.PaymentMethod
	current.ServiceCenter = next.ServiceCenter
	if err := s.repo.UpdateProfile(ctx, current); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "interpreter name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update interpreter")
	}
	return s.Get(ctx, id)
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := ListQuery{Limit: params.Limit, Name: params.Name}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list interpreters")
	}

	items := make([]InterpreterDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &ListResult{Items: items, Cursor: pagination.EncodeNext(next)}, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Interpreter, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "interpreter id required")
	}
	interpreter, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "interpreter not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load interpreter")
	}
	return interpreter, nil
}

// build validates input against the active revision. The name is stored as
// given because call-log matching is exact.
func (s *service) build(input Input) (*models.Interpreter, error) {
	interpreter, err := BuildInterpreter(s.revision, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid interpreter").
			WithDetails(map[string]string{"reason": err.Error()})
	}
	return interpreter, nil
}

// BuildInterpreter validates a roster row against rev and maps it to a model.
// Legacy service-center labels are migrated to their current names.
func BuildInterpreter(rev schema.Revision, input Input) (*models.Interpreter, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	method := enums.PaymentMethod(strings.TrimSpace(input.PaymentMethod))
	if !rev.AllowsPaymentMethod(method) {
		return nil, fmt.Errorf("payment method %q is not valid", input.PaymentMethod)
	}
	center := enums.ServiceCenter(rev.MigrateServiceCenter(strings.TrimSpace(input.ServiceCenter)))
	if !rev.AllowsServiceCenter(center) {
		return nil, fmt.Errorf("service center %q is not valid", input.ServiceCenter)
	}
	return &models.Interpreter{
		Name:          input.Name,
		PaymentMethod: method,
		ServiceCenter: center,
	}, nil
}
