package app

import (
	"context"
	"errors"

	"sales-dashboard/internal/loader"
	"sales-dashboard/internal/sales"
	"sales-dashboard/internal/storage"
)

// Import loads a sales CSV and writes its records into PostgreSQL.
func (a *App) Import(ctx context.Context, opts ImportOptions) error {
	loadOpts, err := a.loaderOptions()
	if err != nil {
		return err
	}

	path := a.Config.ResolveDataPath(opts.File)
	records, err := loader.LoadFile(path, loadOpts)
	if err != nil {
		return err
	}

	if opts.DryRun {
		a.Logger.Warn().Int("records", len(records)).Msg("import dry-run: nothing written to the database")
		return nil
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database.dsn not configured; cannot import")
	}
	defer closeStore()

	return a.importRecords(ctx, store, path, records, opts.Truncate)
}

func (a *App) importRecords(ctx context.Context, store storage.RecordStore, path string, records []sales.Record, truncate bool) error {
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	write := store.InsertRecords
	if truncate {
		write = store.ReplaceRecords
	}
	inserted, err := write(ctx, records)
	if err != nil {
		return err
	}
	if truncate {
		a.Logger.Info().Str("table", a.Config.Database.Table).Msg("existing records replaced")
	}

	total, err := store.CountRecords(ctx)
	if err != nil {
		return err
	}

	a.Logger.Info().Str("path", path).Int64("inserted", inserted).Int64("total", total).Msg("import complete")
	return nil
}
