package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/callpay-backend/api/controllers"
	"github.com/angelmondragon/callpay-backend/api/middleware"
	"github.com/angelmondragon/callpay-backend/internal/calllogs"
	"github.com/angelmondragon/callpay-backend/internal/imports"
	"github.com/angelmondragon/callpay-backend/internal/interpreters"
	"github.com/angelmondragon/callpay-backend/internal/reports"
	"github.com/angelmondragon/callpay-backend/pkg/config"
	"github.com/angelmondragon/callpay-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	metricsHandler http.Handler,
	interpreterService interpreters.Service,
	callLogService calllogs.Service,
	importService imports.Service,
	reportService reports.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/interpreters", func(r chi.Router) {
			r.Get("/", controllers.InterpreterList(interpreterService, logg))
			r.Post("/", controllers.InterpreterCreate(interpreterService, logg))
			r.Get("/{interpreterId}", controllers.InterpreterGet(interpreterService, logg))
			r.Put("/{interpreterId}", controllers.InterpreterUpdate(interpreterService, logg))
		})

		r.Route("/call-logs", func(r chi.Router) {
			r.Get("/", controllers.CallLogList(callLogService, logg))
			r.Get("/{callLogId}", controllers.CallLogGet(callLogService, logg))
		})

		r.Route("/imports", func(r chi.Router) {
			maxBytes := cfg.Import.MaxUploadBytes()
			r.Get("/", controllers.ImportRunList(importService, logg))
			r.Post("/roster", controllers.ImportRoster(importService, maxBytes, logg))
			r.Post("/call-logs", controllers.ImportCallLogs(importService, maxBytes, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Post("/interpreters", controllers.ReportInterpretersPay(reportService, logg))
			r.Post("/call-logs", controllers.ReportCallLogs(reportService, logg))
			r.Post("/day-night", controllers.ReportDayNight(reportService, logg))
			r.Post("/call-logs/pay-total", controllers.CallLogPayTotal(callLogService, logg))
		})

		r.Post("/maintenance/backfill-service-center", controllers.CallLogBackfillServiceCenter(callLogService, logg))
	})

	return r
}
