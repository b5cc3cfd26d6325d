// Package app wires repositories and services from configuration for the
// API server and the import CLI.
package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/callpay-backend/internal/calllogs"
	"github.com/angelmondragon/callpay-backend/internal/importlock"
	"github.com/angelmondragon/callpay-backend/internal/imports"
	"github.com/angelmondragon/callpay-backend/internal/interpreters"
	"github.com/angelmondragon/callpay-backend/internal/reports"
	"github.com/angelmondragon/callpay-backend/internal/schema"
	"github.com/angelmondragon/callpay-backend/pkg/config"
	"github.com/angelmondragon/callpay-backend/pkg/db"
	"github.com/angelmondragon/callpay-backend/pkg/logger"
	"github.com/angelmondragon/callpay-backend/pkg/metrics"
	"github.com/angelmondragon/callpay-backend/pkg/redis"
)

type ServiceParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         *db.Client
	Redis      *redis.Client
	Registerer prometheus.Registerer
}

type Services struct {
	Revision     schema.Revision
	Interpreters interpreters.Service
	CallLogs     calllogs.Service
	Imports      imports.Service
	Reports      reports.Service
}

func NewServices(params ServiceParams) (*Services, error) {
	if params.Config == nil {
		return nil, fmt.Errorf("config required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("database client required")
	}
	cfg := params.Config

	rev, err := schema.Lookup(cfg.Import.SchemaVersion)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.EnvSchemaVersion, err)
	}

	lock, err := NewImportLock(params.Redis, params.DB, cfg.Import)
	if err != nil {
		return nil, err
	}

	dayRate, nightRate, err := cfg.Reports.Rates()
	if err != nil {
		return nil, err
	}

	conn := params.DB.DB()
	rosterRepo := interpreters.NewRepository(conn)
	callLogRepo := calllogs.NewRepository(conn)

	interpreterService, err := interpreters.NewService(rosterRepo, rev)
	if err != nil {
		return nil, err
	}
	callLogService, err := calllogs.NewService(callLogRepo)
	if err != nil {
		return nil, err
	}
	importService, err := imports.NewService(imports.ServiceParams{
		DB:           params.DB,
		Interpreters: rosterRepo,
		CallLogs:     callLogRepo,
		Runs:         imports.NewRepository(conn),
		Lock:         lock,
		Revision:     rev,
		Metrics:      metrics.NewImportMetrics(params.Registerer),
		Logger:       params.Logger,
	})
	if err != nil {
		return nil, err
	}
	reportService, err := reports.NewService(rosterRepo, callLogRepo, reports.Window{
		StartHour: cfg.Reports.DayStartHour,
		EndHour:   cfg.Reports.DayEndHour,
		DayRate:   dayRate,
		NightRate: nightRate,
	}, params.Logger)
	if err != nil {
		return nil, err
	}

	return &Services{
		Revision:     rev,
		Interpreters: interpreterService,
		CallLogs:     callLogService,
		Imports:      importService,
		Reports:      reportService,
	}, nil
}

// NewImportLock returns a Redis-backed lock when Redis is available, otherwise
// a lease row in the shared database.
func NewImportLock(client *redis.Client, dbClient *db.Client, cfg config.ImportConfig) (importlock.Lock, error) {
	if client != nil {
		return importlock.NewRedisLock(client, client.LockKey(cfg.LockKey), cfg.LockTTL)
	}
	if dbClient == nil {
		return nil, fmt.Errorf("database client required for import lock")
	}
	return importlock.NewDBLock(dbClient.DB(), cfg.LockKey, cfg.LockTTL)
}
