package imports

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/callpay-backend/internal/aggregate"
	"github.com/angelmondragon/callpay-backend/internal/calllogs"
	"github.com/angelmondragon/callpay-backend/internal/importlock"
	"github.com/angelmondragon/callpay-backend/internal/interpreters"
	"github.com/angelmondragon/callpay-backend/internal/normalize"
	"github.com/angelmondragon/callpay-backend/internal/reconcile"
	"github.com/angelmondragon/callpay-backend/internal/schema"
	"github.com/angelmondragon/callpay-backend/internal/spreadsheet"
	"github.com/angelmondragon/callpay-backend/pkg/db/models"
	"github.com/angelmondragon/callpay-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/callpay-backend/pkg/errors"
	"github.com/angelmondragon/callpay-backend/pkg/logger"
	"github.com/angelmondragon/callpay-backend/pkg/metrics"
)

const rosterColumns = 3

// Transactor runs fn inside one database transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service runs the two spreadsheet imports and exposes their audit trail.
type Service interface {
	ImportCallLogs(ctx context.Context, upload Upload) (*CallLogReport, error)
	ImportRoster(ctx context.Context, upload Upload) (*RosterReport, error)
	ListRuns(ctx context.Context, limit int) ([]RunDTO, error)
}

// ServiceParams bundles the import service dependencies.
type ServiceParams struct {
	DB           Transactor
	Interpreters interpreters.Repository
	CallLogs     calllogs.Repository
	Runs         Repository
	Lock         importlock.Lock
	Revision     schema.Revision
	Matcher      reconcile.Matcher
	Metrics      *metrics.ImportMetrics
	Logger       *logger.Logger
	Now          func() time.Time
}

type service struct {
	db           Transactor
	interpreters interpreters.Repository
	callLogs     calllogs.Repository
	runs         Repository
	lock         importlock.Lock
	revision     schema.Revision
	engine       *reconcile.Engine
	metrics      *metrics.ImportMetrics
	logg         *logger.Logger
	now          func() time.Time
}

// NewService wires the import pipeline.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.DB == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database required")
	case params.Interpreters == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "interpreters repository required")
	case params.CallLogs == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "call logs repository required")
	case params.Runs == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "import runs repository required")
	case params.Lock == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "import lock required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		db:           params.DB,
		interpreters: params.Interpreters,
		callLogs:     params.CallLogs,
		runs:         params.Runs,
		lock:         params.Lock,
		revision:     params.Revision,
		engine:       reconcile.NewEngine(params.Revision, reconcile.WithMatcher(params.Matcher)),
		metrics:      params.Metrics,
		logg:         params.Logger,
		now:          now,
	}, nil
}

// ImportCallLogs decodes a vendor export, upserts every call by call id and
// overwrites the totals of each roster entry whose name appears in it. All
// store writes commit together.
func (s *service) ImportCallLogs(ctx context.Context, upload Upload) (*CallLogReport, error) {
	run := s.startRun(enums.ImportKindCallLog, upload.Filename)
	ctx = s.logContext(ctx, run)

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	report, err := s.importCallLogs(ctx, upload, run)
	if err != nil {
		s.fail(ctx, run, err)
		return nil, err
	}
	s.succeed(ctx, run)
	return report, nil
}

func (s *service) importCallLogs(ctx context.Context, upload Upload, run *models.ImportRun) (*CallLogReport, error) {
	ds, err := s.decode(upload, run)
	if err != nil {
		return nil, err
	}

	normalized, err := normalize.Normalize(ds, s.revision)
	if err != nil {
		return nil, schemaMismatch(err)
	}
	if len(normalized.Dropped) > 0 && s.logg != nil {
		s.logg.Debug(s.logg.WithField(ctx, "dropped_columns", normalized.Dropped), "dropped vendor columns")
	}
	if len(normalized.Unknown) > 0 && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "unknown_columns", normalized.Unknown), "export carries columns the schema revision does not declare")
	}

	result := aggregate.Aggregate(normalized)
	run.RowsTotal = len(result.Records)
	run.CoercionWarnings = len(result.Warnings)

	var (
		upserts reconcile.UpsertSummary
		matched reconcile.Summary
	)
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		upserts, txErr = s.engine.UpsertCallLogs(ctx, s.callLogs.WithTx(tx), result)
		if txErr != nil {
			return txErr
		}
		matched, txErr = s.engine.Reconcile(ctx, s.interpreters.WithTx(tx), result)
		if txErr != nil {
			return txErr
		}

		run.RowsUpserted = upserts.Upserted
		run.RowsSkipped = upserts.SkippedBlankID + upserts.Duplicates
		run.InterpretersMatched = matched.Matched
		s.finish(run, enums.ImportStatusSucceeded)
		return s.runs.WithTx(tx).Create(ctx, run)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist call-log import")
	}

	if len(matched.UnmatchedNames) > 0 && s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "unmatched_names", len(matched.UnmatchedNames)), "call-log names without roster entry")
	}
	s.metrics.AddRows(string(run.Kind), "upserted", upserts.Upserted)
	s.metrics.AddRows(string(run.Kind), "skipped", run.RowsSkipped)
	s.metrics.AddWarnings(string(run.Kind), len(result.Warnings))
	s.metrics.AddMatched(string(run.Kind), matched.Matched)

	warnings := result.Warnings
	if len(warnings) > maxReportedWarnings {
		warnings = warnings[:maxReportedWarnings]
	}
	return &CallLogReport{
		RunID:               run.ID,
		Filename:            run.Filename,
		SchemaVersion:       s.revision.Version,
		RowsTotal:           run.RowsTotal,
		RowsUpserted:        upserts.Upserted,
		RowsSkippedBlankID:  upserts.SkippedBlankID,
		DuplicateCallIDs:    upserts.Duplicates,
		InterpretersMatched: matched.Matched,
		UnmatchedNames:      matched.UnmatchedNames,
		UnknownColumns:      normalized.Unknown,
		PayImported:         result.PayTotal(),
		PayReconciled:       matched.Written,
		WarningCount:        len(result.Warnings),
		Warnings:            warnings,
	}, nil
}

// ImportRoster upserts interpreters by name from a three-column sheet
// (name, payment method, service center). Header text is ignored; columns are
// positional. Any invalid row rejects the whole file.
func (s *service) ImportRoster(ctx context.Context, upload Upload) (*RosterReport, error) {
	run := s.startRun(enums.ImportKindRoster, upload.Filename)
	ctx = s.logContext(ctx, run)

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	report, err := s.importRoster(ctx, upload, run)
	if err != nil {
		s.fail(ctx, run, err)
		return nil, err
	}
	s.succeed(ctx, run)
	return report, nil
}

func (s *service) importRoster(ctx context.Context, upload Upload, run *models.ImportRun) (*RosterReport, error) {
	ds, err := s.decode(upload, run)
	if err != nil {
		return nil, err
	}
	if len(ds.Headers) < rosterColumns {
		return nil, pkgerrors.New(pkgerrors.CodeSchemaMismatch, "roster needs Name, Payment Method and Service Center columns").
			WithDetails(map[string]any{"columns_found": len(ds.Headers)})
	}

	var (
		validationErr error
		rows          []models.Interpreter
		position      = map[string]int{}
		duplicates    int
	)
	for i, cells := range ds.Rows {
		interpreter, err := interpreters.BuildInterpreter(s.revision, interpreters.Input{
			Name:          cells[0],
			PaymentMethod: cells[1],
			ServiceCenter: cells[2],
		})
		if err != nil {
			validationErr = multierr.Append(validationErr, fmt.Errorf("row %d: %w", i+1, err))
			continue
		}
		if at, dup := position[interpreter.Name]; dup {
			rows[at] = *interpreter
			duplicates++
			continue
		}
		position[interpreter.Name] = len(rows)
		rows = append(rows, *interpreter)
	}
	run.RowsTotal = len(ds.Rows)
	if validationErr != nil {
		problems := multierr.Errors(validationErr)
		details := make([]string, 0, len(problems))
		for _, p := range problems {
			details = append(details, p.Error())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, validationErr, fmt.Sprintf("%d roster rows are invalid", len(problems))).
			WithDetails(map[string]any{"rows": details})
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.interpreters.WithTx(tx).UpsertByName(ctx, rows); err != nil {
			return err
		}
		run.RowsUpserted = len(rows)
		run.RowsSkipped = duplicates
		s.finish(run, enums.ImportStatusSucceeded)
		return s.runs.WithTx(tx).Create(ctx, run)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist roster import")
	}

	s.metrics.AddRows(string(run.Kind), "upserted", len(rows))
	s.metrics.AddRows(string(run.Kind), "skipped", duplicates)
	return &RosterReport{
		RunID:          run.ID,
		Filename:       run.Filename,
		RowsTotal:      run.RowsTotal,
		RowsUpserted:   len(rows),
		DuplicateNames: duplicates,
	}, nil
}

func (s *service) ListRuns(ctx context.Context, limit int) ([]RunDTO, error) {
	runs, err := s.runs.ListRecent(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list import runs")
	}
	out := make([]RunDTO, 0, len(runs))
	for _, run := range runs {
		out = append(out, RunFromModel(run))
	}
	return out, nil
}

func (s *service) acquire(ctx context.Context) (func(), error) {
	token, ok, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire import lock")
	}
	if !ok {
		if s.logg != nil {
			s.logg.Warn(ctx, "import rejected: another import holds the lock")
		}
		return nil, pkgerrors.New(pkgerrors.CodeImportInProgress, "another import is in progress")
	}
	return func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), token); err != nil && s.logg != nil {
			s.logg.Error(ctx, "release import lock", err)
		}
	}, nil
}

func (s *service) decode(upload Upload, run *models.ImportRun) (*spreadsheet.Dataset, error) {
	if upload.Content == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is required")
	}
	data, err := io.ReadAll(upload.Content)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "read upload")
	}
	sum := sha256.Sum256(data)
	run.ContentSHA256 = hex.EncodeToString(sum[:])

	ds, err := spreadsheet.Decode(bytes.NewReader(data), upload.Filename)
	if err != nil {
		var decodeErr *spreadsheet.DecodeError
		if !errors.As(err, &decodeErr) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode upload")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "file could not be read as a spreadsheet").
			WithDetails(map[string]string{"reason": decodeErr.Reason})
	}
	return ds, nil
}

func schemaMismatch(err error) error {
	var mismatch *normalize.SchemaMismatchError
	if !errors.As(err, &mismatch) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "normalize spreadsheet")
	}
	missing := make([]string, 0, len(mismatch.Missing))
	expected := make(map[string]string, len(mismatch.Missing))
	for _, f := range mismatch.Missing {
		missing = append(missing, string(f))
		expected[string(f)] = strings.Join(mismatch.Expected[f], " | ")
	}
	return pkgerrors.Wrap(pkgerrors.CodeSchemaMismatch, err, "spreadsheet is missing required columns").
		WithDetails(map[string]any{
			"schema_version": mismatch.Revision,
			"missing":        missing,
			"expected":       expected,
		})
}

func (s *service) startRun(kind enums.ImportKind, filename string) *models.ImportRun {
	return &models.ImportRun{
		ID:            uuid.New(),
		Kind:          kind,
		Filename:      filename,
		SchemaVersion: s.revision.Version,
		StartedAt:     s.now(),
	}
}

func (s *service) finish(run *models.ImportRun, status enums.ImportStatus) {
	run.Status = status
	run.FinishedAt = s.now()
}

func (s *service) logContext(ctx context.Context, run *models.ImportRun) context.Context {
	if s.logg == nil {
		return ctx
	}
	ctx = s.logg.WithImportID(ctx, run.ID.String())
	ctx = s.logg.WithImportKind(ctx, string(run.Kind))
	return s.logg.WithField(ctx, "filename", run.Filename)
}

func (s *service) succeed(ctx context.Context, run *models.ImportRun) {
	s.metrics.IncRun(string(run.Kind), string(enums.ImportStatusSucceeded))
	s.metrics.ObserveDuration(string(run.Kind), run.FinishedAt.Sub(run.StartedAt))
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"rows_total":           run.RowsTotal,
			"rows_upserted":        run.RowsUpserted,
			"rows_skipped":         run.RowsSkipped,
			"interpreters_matched": run.InterpretersMatched,
			"coercion_warnings":    run.CoercionWarnings,
		}), "import finished")
	}
}

// fail records the failed run outside the rolled-back transaction so the
// attempt stays visible in the audit trail.
func (s *service) fail(ctx context.Context, run *models.ImportRun, cause error) {
	s.finish(run, enums.ImportStatusFailed)
	run.RowsUpserted = 0
	run.InterpretersMatched = 0
	if typed := pkgerrors.As(cause); typed != nil {
		run.ErrorCode = string(typed.Code())
	}
	run.ErrorMessage = cause.Error()

	s.metrics.IncRun(string(run.Kind), string(enums.ImportStatusFailed))
	s.metrics.ObserveDuration(string(run.Kind), run.FinishedAt.Sub(run.StartedAt))
	if s.logg != nil {
		s.logg.Error(ctx, "import failed", cause)
	}
	if err := s.runs.Create(context.WithoutCancel(ctx), run); err != nil && s.logg != nil {
		s.logg.Error(ctx, "record failed import run", err)
	}
}
