package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/callpay-backend/pkg/enums"
)

// ImportRun records the outcome of one spreadsheet import.
type ImportRun struct {
	ID                  uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Kind                enums.ImportKind   `gorm:"column:kind;size:20;not null"`
	Status              enums.ImportStatus `gorm:"column:status;size:20;not null"`
	Filename            string             `gorm:"column:filename;size:255;not null;default:''"`
	ContentSHA256       string             `gorm:"column:content_sha256;size:64;not null;default:''"`
	SchemaVersion       int                `gorm:"column:schema_version;not null;default:0"`
	RowsTotal           int                `gorm:"column:rows_total;not null;default:0"`
	RowsUpserted        int                `gorm:"column:rows_upserted;not null;default:0"`
	RowsSkipped         int                `gorm:"column:rows_skipped;not null;default:0"`
	InterpretersMatched int                `gorm:"column:interpreters_matched;not null;default:0"`
	CoercionWarnings    int                `gorm:"column:coercion_warnings;not null;default:0"`
	ErrorCode           string             `gorm:"column:error_code;size:40;not null;default:''"`
	ErrorMessage        string             `gorm:"column:error_message;not null;default:''"`
	StartedAt           time.Time          `gorm:"column:started_at;not null"`
	FinishedAt          time.Time          `gorm:"column:finished_at;not null"`
	CreatedAt           time.Time          `gorm:"column:created_at;autoCreateTime"`
}

func (ImportRun) TableName() string { return "import_runs" }

func (r *ImportRun) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
