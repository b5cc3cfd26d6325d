package controllers

import (
	"net/http"

	"github.com/angelmondragon/callpay-backend/api/responses"
	"github.com/angelmondragon/callpay-backend/api/validators"
	"github.com/angelmondragon/callpay-backend/internal/interpreters"
	pkgerrors "github.com/angelmondragon/callpay-backend/pkg/errors"
	"github.com/angelmondragon/callpay-backend/pkg/logger"
	"github.com/angelmondragon/callpay-backend/pkg/pagination"
)

// maxNameRunes matches the width of the name columns.
const maxNameRunes = 255

type interpreterRequest struct {
	Name          string `json:"name" validate:"required,max=255"`
	PaymentMethod string `json:"payment_method" validate:"required"`
	ServiceCenter string `json:"service_center" validate:"max=50"`
}

func (r interpreterRequest) toInput() interpreters.Input {
	return interpreters.Input{
		Name:          r.Name,
		PaymentMethod: r.PaymentMethod,
		ServiceCenter: r.ServiceCenter,
	}
}

// InterpreterList pages through the roster.
func InterpreterList(svc interpreters.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "interpreter service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		name, err := validators.ParseQueryText(r, "name", maxNameRunes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), interpreters.ListParams{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
			Name:   name,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func InterpreterCreate(svc interpreters.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "interpreter service unavailable"))
			return
		}

		var payload interpreterRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func InterpreterGet(svc interpreters.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "interpreter service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "interpreterId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		interpreter, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, interpreter)
	}
}

// InterpreterUpdate edits the operator-owned fields. Totals are never
// accepted here; only call-log imports write them.
func InterpreterUpdate(svc interpreters.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "interpreter service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "interpreterId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload interpreterRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}
