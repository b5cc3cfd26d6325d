package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/callpay-backend/pkg/enums"
)

// Interpreter is one payable individual on the roster. TotalAmount and
// TotalMinutes are only ever written by call-log reconciliation.
type Interpreter struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name          string              `gorm:"column:name;size:255;not null;uniqueIndex:interpreters_name_key"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;size:50;not null;default:''"`
	ServiceCenter enums.ServiceCenter `gorm:"column:service_center;size:50;not null;default:''"`
	TotalAmount   decimal.NullDecimal `gorm:"column:total_amount;type:numeric(12,2)"`
	TotalMinutes  *int64              `gorm:"column:total_minutes"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Interpreter) TableName() string { return "interpreters" }

// BeforeCreate assigns the surrogate key so sqlite and Postgres behave alike.
func (i *Interpreter) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
