package calllogs

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/callpay-backend/pkg/db/models"
)

// CallLogDTO is the API view of one stored call.
type CallLogDTO struct {
	ID                  uuid.UUID        `json:"id"`
	CallID              string           `json:"call_id"`
	CallTime            *time.Time       `json:"call_time"`
	InterpreterCalltime *int64           `json:"interpreter_calltime"`
	InterpreterPay      *decimal.Decimal `json:"interpreter_pay"`
	InterpreterName     string           `json:"interpreter_name"`
	CustomerName        string           `json:"customer_name"`
	Language            string           `json:"language"`
	ServiceCenter       string           `json:"service_center"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// FromModel maps the persisted call log into a DTO.
func FromModel(m *models.CallLog) *CallLogDTO {
	if m == nil {
		return nil
	}
	dto := &CallLogDTO{
		ID:                  m.ID,
		CallID:              m.CallID,
		CallTime:            m.CallTime,
		InterpreterCalltime: m.InterpreterCalltime,
		InterpreterName:     m.InterpreterName,
		CustomerName:        m.CustomerName,
		Language:            m.Language,
		ServiceCenter:       m.ServiceCenter,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	if m.InterpreterPay.Valid {
		pay := m.InterpreterPay.Decimal
		dto.InterpreterPay = &pay
	}
	return dto
}

// BackfillResult reports the service-center maintenance outcome.
type BackfillResult struct {
	Updated int64 `json:"updated"`
	Skipped int64 `json:"skipped"`
}

// PayTotal is the transient sum shown to the operator.
type PayTotal struct {
	Total   decimal.Decimal `json:"total"`
	Count   int             `json:"count"`
	Message string          `json:"message"`
}
