package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load without a file should use defaults: %v", err)
	}
	want := time.Date(2021, 1, 15, 0, 0, 0, 0, time.UTC)
	if !cfg.Dashboard.CutoffDate.Equal(want) {
		t.Fatalf("expected default cutoff %s, got %s", want, cfg.Dashboard.CutoffDate)
	}
	if cfg.Dashboard.MarkerLabel != "Price Increase" {
		t.Fatalf("unexpected marker label %q", cfg.Dashboard.MarkerLabel)
	}
	if cfg.Data.Source != SourceCSV || cfg.Data.MalformedRows != "reject" {
		t.Fatalf("unexpected data defaults: %+v", cfg.Data)
	}
	if cfg.Server.SessionTTL != 2*time.Hour {
		t.Fatalf("expected session ttl 2h, got %s", cfg.Server.SessionTTL)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "salesdash.yaml")
	content := []byte(`
data:
  path: data/sales.csv
  malformed_rows: skip
dashboard:
  cutoff_date: 2021-02-01
server:
  addr: ":9000"
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SALESDASH_SERVER_ADDR", ":9100")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should succeed: %v", err)
	}
	if cfg.Data.Path != "data/sales.csv" || cfg.Data.MalformedRows != "skip" {
		t.Fatalf("file values not applied: %+v", cfg.Data)
	}
	if cfg.Dashboard.CutoffDate.Month() != time.February {
		t.Fatalf("cutoff date not decoded: %s", cfg.Dashboard.CutoffDate)
	}
	if cfg.Server.Addr != ":9100" {
		t.Fatalf("environment should override file, got %s", cfg.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Data:      DataConfig{Source: SourceCSV, Path: "x.csv", MalformedRows: "reject"},
			Dashboard: DashboardConfig{CutoffDate: time.Now(), ChartWidth: 10, ChartHeight: 10},
			Server:    ServerConfig{SessionTTL: time.Minute},
		}
	}

	cfg := base()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("base config should be valid: %v", err)
	}

	cases := map[string]func(c *Config){
		"unknown source":   func(c *Config) { c.Data.Source = "s3" },
		"postgres w/o dsn": func(c *Config) { c.Data.Source = SourcePostgres },
		"bad policy":       func(c *Config) { c.Data.MalformedRows = "ignore" },
		"no cutoff":        func(c *Config) { c.Dashboard.CutoffDate = time.Time{} },
		"zero width":       func(c *Config) { c.Dashboard.ChartWidth = 0 },
		"negative limit":   func(c *Config) { c.Server.ChartRateLimit = -1 },
		"zero ttl":         func(c *Config) { c.Server.SessionTTL = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestResolveDataPath(t *testing.T) {
	cfg := Config{Data: DataConfig{Path: "default.csv"}}
	if got := cfg.ResolveDataPath(""); got != "default.csv" {
		t.Fatalf("expected configured path, got %s", got)
	}
	if got := cfg.ResolveDataPath("other.csv"); got != "other.csv" {
		t.Fatalf("expected override, got %s", got)
	}
}
