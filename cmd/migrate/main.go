package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/chokistore/backend/pkg/config"
	"github.com/chokistore/backend/pkg/db"
	"github.com/chokistore/backend/pkg/logger"
	"github.com/chokistore/backend/pkg/migrate"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate")
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	// create and validate only touch the filesystem.
	switch *cmd {
	case "create":
		if *name == "" {
			fail("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			fail("failed to create migration: %v", err)
		}
		fmt.Println("created migration:", path)
		return
	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			fail("migration validation failed: %v", err)
		}
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
		"dir": *dir,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)

	runner, err := migrate.NewRunner(sqlDB, cfg.DB.Driver, *dir)
	requireResource(ctx, logg, "migrations", err)

	logg.Info(ctx, "migrate ready")
	if err := runCommand(ctx, logg, runner, *cmd, *version); err != nil {
		logg.Error(ctx, "migration failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "migrate done")
}

func runCommand(ctx context.Context, logg *logger.Logger, runner *migrate.Runner, cmd, version string) error {
	var (
		applied []migrate.Applied
		err     error
	)
	switch cmd {
	case "up":
		applied, err = runner.Up(ctx)
	case "down":
		applied, err = runner.Down(ctx)
	case "version":
		if version == "" {
			return fmt.Errorf("missing -version for version command")
		}
		applied, err = runner.To(ctx, version)
	case "status":
		return printStatus(ctx, runner)
	default:
		return fmt.Errorf("unknown -cmd value %q", cmd)
	}
	if err != nil {
		return err
	}
	for _, m := range applied {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"version":   m.Version,
			"direction": m.Direction,
			"duration":  m.Duration.String(),
		}), filepath.Base(m.Path))
	}
	current, err := runner.Version(ctx)
	if err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "db_version", current), "schema version")
	return nil
}

func printStatus(ctx context.Context, runner *migrate.Runner) error {
	rows, err := runner.Status(ctx)
	if err != nil {
		return err
	}
	for _, row := range rows {
		state := "pending"
		if row.Applied {
			state = "applied " + row.AppliedAt.UTC().Format(time.RFC3339)
		}
		fmt.Printf("%d  %-48s %s\n", row.Version, filepath.Base(row.Path), state)
	}
	return nil
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
