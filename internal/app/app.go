package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/dashboard"
	"sales-dashboard/internal/loader"
	"sales-dashboard/internal/logging"
	"sales-dashboard/internal/render"
	"sales-dashboard/internal/sales"
	"sales-dashboard/internal/storage"
	"sales-dashboard/internal/web"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logging.Component(logger, "app")}
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	store, err := storage.Open(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

func (a *App) loaderOptions() (loader.Options, error) {
	policy, err := loader.ParsePolicy(a.Config.Data.MalformedRows)
	if err != nil {
		return loader.Options{}, err
	}
	return loader.Options{Policy: policy, Logger: a.Logger}, nil
}

// loadDataset reads every sales record from the configured source.
// A non-empty path forces CSV loading from that file.
func (a *App) loadDataset(ctx context.Context, path string) (*sales.Dataset, error) {
	if path == "" && a.Config.Data.Source == config.SourcePostgres {
		store, closeStore, err := a.openStore(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", loader.ErrDataSource, err)
		}
		if store == nil {
			return nil, errors.New("database.dsn not configured; cannot load sales from postgres")
		}
		defer closeStore()

		records, err := store.ListRecords(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", loader.ErrDataSource, err)
		}
		a.Logger.Info().Str("table", a.Config.Database.Table).Int("records", len(records)).Msg("sales data loaded")
		return sales.NewDataset(records), nil
	}

	opts, err := a.loaderOptions()
	if err != nil {
		return nil, err
	}
	records, err := loader.LoadFile(a.Config.ResolveDataPath(path), opts)
	if err != nil {
		return nil, err
	}
	return sales.NewDataset(records), nil
}

func (a *App) dashboardOptions() dashboard.Options {
	return dashboard.Options{
		Cutoff:      a.Config.Dashboard.CutoffDate,
		MarkerLabel: a.Config.Dashboard.MarkerLabel,
	}
}

func (a *App) chartSize() render.Size {
	return render.Size{Width: a.Config.Dashboard.ChartWidth, Height: a.Config.Dashboard.ChartHeight}
}

// Serve loads the dataset once and hosts the dashboard until interrupted.
func (a *App) Serve(ctx context.Context, dataPath string) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dataset, err := a.loadDataset(ctx, dataPath)
	if err != nil {
		return err
	}
	if dataset.Len() == 0 {
		a.Logger.Warn().Msg("dataset is empty; the dashboard will show no sales")
	}

	srv, err := web.New(dataset, web.Options{
		Addr:            a.Config.Server.Addr,
		Title:           a.Config.Dashboard.Title,
		ReadTimeout:     a.Config.Server.ReadTimeout,
		WriteTimeout:    a.Config.Server.WriteTimeout,
		ShutdownTimeout: a.Config.Server.ShutdownTimeout,
		ChartRateLimit:  a.Config.Server.ChartRateLimit,
		SessionTTL:      a.Config.Server.SessionTTL,
		SecureCookies:   a.Config.Server.SecureCookies,
		Production:      strings.EqualFold(a.Config.App.Environment, "production"),
		ChartSize:       a.chartSize(),
		Dashboard:       a.dashboardOptions(),
	}, a.Logger)
	if err != nil {
		return err
	}

	a.Logger.Info().Str("addr", a.Config.Server.Addr).Msg("starting dashboard")
	if err := srv.Run(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("dashboard terminated with error")
		return err
	}
	return nil
}

// SummaryOptions configure the summary command.
type SummaryOptions struct {
	Region   string
	DataPath string
}

// ExportOptions hold parameters for exporting the chart and daily series.
type ExportOptions struct {
	Region   string
	DataPath string
	PNGPath  string
	SVGPath  string
	CSVPath  string
}

// ImportOptions configure loading a CSV file into PostgreSQL.
type ImportOptions struct {
	File     string
	Truncate bool
	DryRun   bool
}
