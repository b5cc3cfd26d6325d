// Package reports renders the roster and call logs as downloadable workbooks.
package reports

import (
	"bytes"
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/callpay-backend/internal/spreadsheet"
	"github.com/angelmondragon/callpay-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/callpay-backend/pkg/errors"
	"github.com/angelmondragon/callpay-backend/pkg/logger"
)

const (
	InterpretersPayFilename  = "InterpretersPay.xlsx"
	InterpreterCallsFilename = "InterpreterCalls.xlsx"
	DayNightFilename         = "InterpreterDayNight.xlsx"

	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// RosterReader loads interpreters for export; no ids selects all.
type RosterReader interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Interpreter, error)
}

// CallLogReader loads call logs for export.
type CallLogReader interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.CallLog, error)
	ListByInterpreterNames(ctx context.Context, names []string) ([]models.CallLog, error)
}

// File is a rendered workbook ready to stream.
type File struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Service renders the three exports.
type Service interface {
	InterpretersPay(ctx context.Context, ids []uuid.UUID) (*File, error)
	CallLogs(ctx context.Context, ids []uuid.UUID) (*File, error)
	DayNight(ctx context.Context, interpreterIDs []uuid.UUID) (*File, error)
}

type service struct {
	roster   RosterReader
	callLogs CallLogReader
	window   Window
	logg     *logger.Logger
}

// NewService wires report dependencies.
func NewService(roster RosterReader, callLogs CallLogReader, window Window, logg *logger.Logger) (Service, error) {
	if roster == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "interpreters repository required")
	}
	if callLogs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "call logs repository required")
	}
	if window.StartHour >= window.EndHour {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "day window must start before it ends")
	}
	return &service{roster: roster, callLogs: callLogs, window: window, logg: logg}, nil
}

func (s *service) InterpretersPay(ctx context.Context, ids []uuid.UUID) (*File, error) {
	roster, err := s.roster.ListByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load interpreters")
	}
	return s.render(ctx, InterpretersPayFilename, InterpreterPayTable(roster))
}

func (s *service) CallLogs(ctx context.Context, ids []uuid.UUID) (*File, error) {
	logs, err := s.callLogs.ListByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load call logs")
	}
	return s.render(ctx, InterpreterCallsFilename, CallLogTable(logs))
}

func (s *service) DayNight(ctx context.Context, interpreterIDs []uuid.UUID) (*File, error) {
	roster, err := s.roster.ListByIDs(ctx, interpreterIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load interpreters")
	}
	names := make([]string, 0, len(roster))
	for _, interpreter := range roster {
		names = append(names, interpreter.Name)
	}
	logs, err := s.callLogs.ListByInterpreterNames(ctx, names)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load call logs")
	}
	return s.render(ctx, DayNightFilename, DayNightTable(SplitDayNight(roster, logs, s.window)))
}

func (s *service) render(ctx context.Context, filename string, table spreadsheet.Table) (*File, error) {
	var buf bytes.Buffer
	if err := spreadsheet.WriteXLSX(&buf, table); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render report")
	}
	if s.logg != nil {
		s.logg.Debug(s.logg.WithFields(ctx, map[string]any{"report": filename, "rows": len(table.Rows)}), "report rendered")
	}
	return &File{Filename: filename, ContentType: ContentTypeXLSX, Content: buf.Bytes()}, nil
}
