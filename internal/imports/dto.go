package imports

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/callpay-backend/internal/aggregate"
	"github.com/angelmondragon/callpay-backend/pkg/db/models"
	"github.com/angelmondragon/callpay-backend/pkg/enums"
)

const maxReportedWarnings = 100

// Upload is one operator-supplied spreadsheet.
type Upload struct {
	Filename string
	Content  io.Reader
}

// CallLogReport summarizes a finished call-log import.
type CallLogReport struct {
	RunID               uuid.UUID                          `json:"run_id"`
	Filename            string                             `json:"filename"`
	SchemaVersion       int                                `json:"schema_version"`
	RowsTotal           int                                `json:"rows_total"`
	RowsUpserted        int                                `json:"rows_upserted"`
	RowsSkippedBlankID  int                                `json:"rows_skipped_blank_id"`
	DuplicateCallIDs    int                                `json:"duplicate_call_ids"`
	InterpretersMatched int                                `json:"interpreters_matched"`
	UnmatchedNames      []string                           `json:"unmatched_names"`
	UnknownColumns      []string                           `json:"unknown_columns,omitempty"`
	PayImported         decimal.Decimal                    `json:"pay_imported"`
	PayReconciled       decimal.Decimal                    `json:"pay_reconciled"`
	WarningCount        int                                `json:"warning_count"`
	Warnings            []aggregate.NumericCoercionWarning `json:"warnings"`
}

// RosterReport summarizes a finished roster import.
type RosterReport struct {
	RunID        uuid.UUID `json:"run_id"`
	Filename     string    `json:"filename"`
	RowsTotal    int       `json:"rows_total"`
	RowsUpserted int       `json:"rows_upserted"`
	// DuplicateNames counts rows superseded by a later row with the same name.
	DuplicateNames int `json:"duplicate_names"`
}

// RunDTO is the API view of an import audit row.
type RunDTO struct {
	ID                  uuid.UUID          `json:"id"`
	Kind                enums.ImportKind   `json:"kind"`
	Status              enums.ImportStatus `json:"status"`
	Filename            string             `json:"filename"`
	ContentSHA256       string             `json:"content_sha256"`
	SchemaVersion       int                `json:"schema_version"`
	RowsTotal           int                `json:"rows_total"`
	RowsUpserted        int                `json:"rows_upserted"`
	RowsSkipped         int                `json:"rows_skipped"`
	InterpretersMatched int                `json:"interpreters_matched"`
	CoercionWarnings    int                `json:"coercion_warnings"`
	ErrorCode           string             `json:"error_code,omitempty"`
	ErrorMessage        string             `json:"error_message,omitempty"`
	StartedAt           time.Time          `json:"started_at"`
	FinishedAt          time.Time          `json:"finished_at"`
}

// RunFromModel maps the persisted run into a DTO.
func RunFromModel(m models.ImportRun) RunDTO {
	return RunDTO{
		ID:                  m.ID,
		Kind:                m.Kind,
		Status:              m.Status,
		Filename:            m.Filename,
		ContentSHA256:       m.ContentSHA256,
		SchemaVersion:       m.SchemaVersion,
		RowsTotal:           m.RowsTotal,
		RowsUpserted:        m.RowsUpserted,
		RowsSkipped:         m.RowsSkipped,
		InterpretersMatched: m.InterpretersMatched,
		CoercionWarnings:    m.CoercionWarnings,
		ErrorCode:           m.ErrorCode,
		ErrorMessage:        m.ErrorMessage,
		StartedAt:           m.StartedAt,
		FinishedAt:          m.FinishedAt,
	}
}
