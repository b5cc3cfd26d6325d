package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CallLog is one billed call as reported by the vendor export, keyed by CallID.
type CallLog struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CallID              string              `gorm:"column:call_id;size:25;not null;uniqueIndex:call_logs_call_id_key"`
	CallTime            *time.Time          `gorm:"column:call_time"`
	InterpreterCalltime *int64              `gorm:"column:interpreter_calltime"`
	InterpreterPay      decimal.NullDecimal `gorm:"column:interpreter_pay;type:numeric(12,2)"`
	InterpreterName     string              `gorm:"column:interpreter_name;size:255;not null;default:'';index"`
	CustomerName        string              `gorm:"column:customer_name;size:255;not null;default:''"`
	Language            string              `gorm:"column:language;size:100;not null;default:''"`
	ServiceCenter       string              `gorm:"column:service_center;size:50;not null;default:''"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (CallLog) TableName() string { return "call_logs" }

func (c *CallLog) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
