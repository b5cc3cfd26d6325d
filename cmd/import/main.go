package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/callpay-backend/internal/app"
	"github.com/angelmondragon/callpay-backend/internal/imports"
	"github.com/angelmondragon/callpay-backend/pkg/config"
	"github.com/angelmondragon/callpay-backend/pkg/db"
	"github.com/angelmondragon/callpay-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/callpay-backend/pkg/errors"
	"github.com/angelmondragon/callpay-backend/pkg/instance"
	"github.com/angelmondragon/callpay-backend/pkg/logger"
	"github.com/angelmondragon/callpay-backend/pkg/redis"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code so deferred cleanup runs before exit.
func run(args []string, stdout, stderr io.Writer) int {
	logg := logger.New(logger.Options{ServiceName: "import", Output: stderr})

	_ = godotenv.Load()

	flags := flag.NewFlagSet("import", flag.ContinueOnError)
	flags.SetOutput(stderr)
	kindFlag := flags.String("kind", string(enums.ImportKindCallLog), "import kind: call_log|roster")
	file := flags.String("file", "", "path to the .xlsx, .xls or .csv file")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	if *file == "" {
		fmt.Fprintln(stderr, "missing -file")
		return 2
	}
	kind, err := enums.ParseImportKind(*kindFlag)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, err := config.Load()
	if resourceFailed(context.Background(), logg, "config", err) {
		return 1
	}

	logg = logger.New(logger.Options{
		ServiceName: "import",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Output:      stderr,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"kind":     kind,
		"file":     *file,
		"instance": instance.GetID(),
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if resourceFailed(ctx, logg, "database", err) {
		return 1
	}
	defer dbClient.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if resourceFailed(ctx, logg, "redis", err) {
			return 1
		}
		defer redisClient.Close()
	}

	services, err := app.NewServices(app.ServiceParams{
		Config: cfg,
		Logger: logg,
		DB:     dbClient,
		Redis:  redisClient,
	})
	if resourceFailed(ctx, logg, "services", err) {
		return 1
	}

	f, err := os.Open(*file)
	if resourceFailed(ctx, logg, "input file", err) {
		return 1
	}
	defer f.Close()

	upload := imports.Upload{Filename: filepath.Base(*file), Content: f}

	var report any
	switch kind {
	case enums.ImportKindRoster:
		report, err = services.Imports.ImportRoster(ctx, upload)
	default:
		report, err = services.Imports.ImportCallLogs(ctx, upload)
	}
	if err != nil {
		printError(stderr, err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(stderr, "write report: %v\n", err)
		return 1
	}
	return 0
}

func printError(w io.Writer, err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		fmt.Fprintf(w, "import failed: %v\n", err)
		return
	}
	fmt.Fprintf(w, "import failed [%s]: %s\n", typed.Code(), typed.Message())
	if details := typed.Details(); details != nil {
		if b, err := json.MarshalIndent(details, "", "  "); err == nil {
			fmt.Fprintln(w, string(b))
		}
	}
}

func resourceFailed(ctx context.Context, logg *logger.Logger, resource string, err error) bool {
	if err == nil {
		return false
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	return true
}
