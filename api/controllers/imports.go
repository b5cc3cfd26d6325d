package controllers

import (
	"errors"
	"net/http"

	"github.com/angelmondragon/callpay-backend/api/responses"
	"github.com/angelmondragon/callpay-backend/api/validators"
	"github.com/angelmondragon/callpay-backend/internal/imports"
	pkgerrors "github.com/angelmondragon/callpay-backend/pkg/errors"
	"github.com/angelmondragon/callpay-backend/pkg/logger"
	"github.com/angelmondragon/callpay-backend/pkg/pagination"
)

const (
	uploadField     = "file"
	defaultRunLimit = 20
	maxRunLimit     = pagination.MaxLimit
)

type importFunc func(*http.Request, imports.Upload) (any, error)

// ImportCallLogs accepts a vendor call-log export as multipart field "file".
func ImportCallLogs(svc imports.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return importUnavailable(logg)
	}
	return importUpload(maxBytes, logg, func(r *http.Request, upload imports.Upload) (any, error) {
		return svc.ImportCallLogs(r.Context(), upload)
	})
}

// ImportRoster accepts a Name / Payment Method / Service Center sheet.
func ImportRoster(svc imports.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return importUnavailable(logg)
	}
	return importUpload(maxBytes, logg, func(r *http.Request, upload imports.Upload) (any, error) {
		return svc.ImportRoster(r.Context(), upload)
	})
}

func ImportRunList(svc imports.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return importUnavailable(logg)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", defaultRunLimit, 1, maxRunLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		runs, err := svc.ListRuns(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, runs)
	}
}

func importUpload(maxBytes int64, logg *logger.Logger, run importFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "upload too large").
					WithDetails(map[string]any{"max_bytes": maxBytes}))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart upload"))
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile(uploadField)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file is required").
				WithDetails(map[string]any{"field": uploadField}))
			return
		}
		defer file.Close()

		report, err := run(r, imports.Upload{Filename: header.Filename, Content: file})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, report)
	}
}

func importUnavailable(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "import service unavailable"))
	}
}
