package controllers

import (
	"net/http"

	"github.com/angelmondragon/callpay-backend/api/responses"
	"github.com/angelmondragon/callpay-backend/api/validators"
	"github.com/angelmondragon/callpay-backend/internal/calllogs"
	pkgerrors "github.com/angelmondragon/callpay-backend/pkg/errors"
	"github.com/angelmondragon/callpay-backend/pkg/logger"
	"github.com/angelmondragon/callpay-backend/pkg/pagination"
)

// selectionRequest picks rows by id; an empty list selects every row.
type selectionRequest struct {
	IDs []string `json:"ids" validate:"omitempty,dive,required"`
}

func CallLogList(svc calllogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "call log service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		name, err := validators.ParseQueryText(r, "interpreter_name", maxNameRunes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), calllogs.ListParams{
			Limit:           limit,
			Cursor:          r.URL.Query().Get("cursor"),
			InterpreterName: name,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CallLogGet(svc calllogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "call log service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "callLogId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		log, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, log)
	}
}

// CallLogBackfillServiceCenter copies interpreter service centers onto the
// selected call logs.
func CallLogBackfillServiceCenter(svc calllogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "call log service unavailable"))
			return
		}

		ids, err := decodeSelection(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.BackfillServiceCenter(r.Context(), ids)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CallLogPayTotal sums interpreter pay over the selected logs without
// persisting anything.
func CallLogPayTotal(svc calllogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "call log service unavailable"))
			return
		}

		ids, err := decodeSelection(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		total, err := svc.PayTotal(r.Context(), ids)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, total)
	}
}
