package interpreters

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/callpay-backend/pkg/db/models"
	"github.com/angelmondragon/callpay-backend/pkg/enums"
)

// InterpreterDTO is the API view of a roster entry.
type InterpreterDTO struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	ServiceCenter enums.ServiceCenter `json:"service_center"`
	TotalAmount   *decimal.Decimal    `json:"total_amount"`
	TotalMinutes  *int64              `json:"total_minutes"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// FromModel maps the persisted interpreter into a DTO.
func FromModel(m *models.Interpreter) *InterpreterDTO {
	if m == nil {
		return nil
	}
	dto := &InterpreterDTO{
		ID:            m.ID,
		Name:          m.Name,
		PaymentMethod: m.PaymentMethod,
		ServiceCenter: m.ServiceCenter,
		TotalMinutes:  m.TotalMinutes,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.TotalAmount.Valid {
		amount := m.TotalAmount.Decimal.Round(2)
		dto.TotalAmount = &amount
	}
	return dto
}

// Input carries the operator-editable roster fields.
type Input struct {
	Name          string
	PaymentMethod string
	ServiceCenter string
}
