package controllers

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/callpay-backend/api/responses"
	"github.com/angelmondragon/callpay-backend/api/validators"
	"github.com/angelmondragon/callpay-backend/internal/reports"
	pkgerrors "github.com/angelmondragon/callpay-backend/pkg/errors"
	"github.com/angelmondragon/callpay-backend/pkg/logger"
)

const maxSelectionBytes = 1 << 20

type reportFunc func(ctx context.Context, ids []uuid.UUID) (*reports.File, error)

func ReportInterpretersPay(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return reportUnavailable(logg)
	}
	return reportDownload(svc.InterpretersPay, logg)
}

func ReportCallLogs(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return reportUnavailable(logg)
	}
	return reportDownload(svc.CallLogs, logg)
}

// ReportDayNight selects interpreters by id and splits their calls into day
// and night buckets.
func ReportDayNight(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return reportUnavailable(logg)
	}
	return reportDownload(svc.DayNight, logg)
}

func reportDownload(render reportFunc, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := decodeSelection(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		file, err := render(r.Context(), ids)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteFile(w, file.Filename, file.ContentType, file.Content)
	}
}

func reportUnavailable(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
	}
}

// decodeSelection accepts an empty body as "select all".
func decodeSelection(r *http.Request) ([]uuid.UUID, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSelectionBytes))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	var payload selectionRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return nil, err
	}
	return validators.ParseUUIDs(payload.IDs)
}
