package app

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/AlSimons/graph-ambient-weather/internal/backup"
	"github.com/AlSimons/graph-ambient-weather/internal/cli"
	"github.com/AlSimons/graph-ambient-weather/internal/config"
	"github.com/AlSimons/graph-ambient-weather/internal/store/db"
	"github.com/AlSimons/graph-ambient-weather/internal/store/migrate"
	"github.com/AlSimons/graph-ambient-weather/internal/store/repository"
)

type ImportResult struct {
	Path     string
	Stats    backup.Stats
	Inserted int
}

// RunLoad runs one wxload command.
func RunLoad(ctx context.Context, cfg config.Config, opts cli.LoadOptions, logger *slog.Logger) error {
	switch opts.Command {
	case cli.CmdMigrate:
		return RunMigrate(ctx, cfg, logger)
	default:
		_, err := RunImport(ctx, cfg, opts, logger)
		return err
	}
}

func RunMigrate(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	return withMigratedDB(ctx, cfg, logger, func(*sql.DB) error { return nil })
}

// RunImport copies every catalog measurement of a backup file into the
// database. Without a path the newest backup under BACKUP_DIR is used.
func RunImport(ctx context.Context, cfg config.Config, opts cli.LoadOptions, logger *slog.Logger) (ImportResult, error) {
	cat, err := resolveCatalog(opts.Catalog)
	if err != nil {
		return ImportResult{}, err
	}

	res := ImportResult{Path: opts.Path}
	if res.Path == "" {
		dir := cfg.BackupDir
		if dir == "" {
			dir = "."
		}
		if res.Path, err = backup.FindLatest(dir); err != nil {
			return res, err
		}
	}

	records, stats, err := backup.Load(ctx, res.Path, backup.Options{Catalog: cat, Logger: logger})
	if err != nil {
		return res, err
	}
	res.Stats = stats
	logBackupStats(logger, res.Path, stats)

	err = withMigratedDB(ctx, cfg, logger, func(conn *sql.DB) error {
		repo := repository.NewRepository(conn, logger)
		n, err := repo.InsertRecords(ctx, cat, opts.Station, records)
		res.Inserted = n
		return err
	})
	if err != nil {
		return res, err
	}
	logger.Info("backup imported", "path", res.Path, "table", cat.Table, "rows", res.Inserted)
	return res, nil
}

func withMigratedDB(ctx context.Context, cfg config.Config, logger *slog.Logger, fn func(*sql.DB) error) error {
	conn, err := db.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(conn); err != nil {
			logger.Error("db close", "error", err)
		}
	}()

	applied, err := migrate.Run(ctx, conn, logger)
	if err != nil {
		return err
	}
	logger.Debug("schema up to date", "applied", len(applied), "path", cfg.SQLitePath)
	return fn(conn)
}
