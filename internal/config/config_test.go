package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SCOTT_CONFIG", "")
	t.Setenv("SCOTT_SAVE_DIR", "")
	t.Setenv("GEMINI_API_KEY", "")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SaveDir != ".saves" || cfg.LogLevel != "warning" || cfg.Seed != 0 {
		t.Errorf("defaults = %+v", cfg)
	}
	if err := cfg.RequireAPIKey(); err == nil {
		t.Error("RequireAPIKey succeeded without a key")
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scott.yaml")
	file := "game: adv01.dat\nsave_dir: saves\nyou_are: true\nseed: 7\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(file), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SCOTT_CONFIG", path)
	t.Setenv("SCOTT_SAVE_DIR", "/tmp/elsewhere")
	t.Setenv("SCOTT_SCOTT_LIGHT", "true")
	t.Setenv("SCOTT_YOU_ARE", "")
	t.Setenv("SCOTT_SEED", "")
	t.Setenv("GEMINI_API_KEY", "key")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GamePath != "adv01.dat" || !cfg.YouAre || cfg.Seed != 7 || cfg.LogLevel != "debug" {
		t.Errorf("file values = %+v", cfg)
	}
	if cfg.SaveDir != "/tmp/elsewhere" || !cfg.ScottLight {
		t.Errorf("environment values = %+v", cfg)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		t.Error(err)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv("SCOTT_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := LoadConfig(); err == nil {
		t.Error("missing config file accepted")
	}

	t.Setenv("SCOTT_CONFIG", "")
	t.Setenv("SCOTT_SEED", "soon")
	if _, err := LoadConfig(); err == nil {
		t.Error("bad seed accepted")
	}

	t.Setenv("SCOTT_SEED", "")
	t.Setenv("SCOTT_PREHISTORIC_LAMP", "maybe")
	if _, err := LoadConfig(); err == nil {
		t.Error("bad boolean accepted")
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	if opts := cfg.EngineOptions(); opts.Rand != nil {
		t.Error("zero seed gave a fixed random source")
	}
	cfg.Seed, cfg.ScottLight = 42, true
	a, b := cfg.EngineOptions(), cfg.EngineOptions()
	if !a.ScottLight || a.Rand == nil {
		t.Fatalf("options = %+v", a)
	}
	for i := 0; i < 10; i++ {
		if x, y := a.Rand.Intn(100), b.Rand.Intn(100); x != y {
			t.Fatalf("roll %d: %d != %d with the same seed", i, x, y)
		}
	}
}

func TestLoaderOptions(t *testing.T) {
	cfg := Default()
	if opts, err := cfg.LoaderOptions(); err != nil || len(opts) != 0 {
		t.Errorf("no catalog: %v, %v", opts, err)
	}

	dir := t.TempDir()
	cfg.CatalogPath = filepath.Join(dir, "games.yaml")
	entry := "games:\n  - name: Mine\n    dictionary: four_letter_uncompressed\n    header_style: early\n"
	if err := os.WriteFile(cfg.CatalogPath, []byte(entry), 0644); err != nil {
		t.Fatal(err)
	}
	if opts, err := cfg.LoaderOptions(); err != nil || len(opts) != 1 {
		t.Errorf("catalog: %v, %v", opts, err)
	}

	if err := os.WriteFile(cfg.CatalogPath, []byte("games:\n  - dictionary: ti99_4a\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := cfg.LoaderOptions(); err == nil {
		t.Error("bad catalog accepted")
	}
}

func TestSetupLogging(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "loud"
	if _, err := cfg.SetupLogging(); err == nil {
		t.Error("bad log level accepted")
	}

	cfg.LogLevel = "debug"
	cfg.LogFile = filepath.Join(t.TempDir(), "scott.log")
	done, err := cfg.SetupLogging()
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("hello")
	done()
	log.SetLevel(log.WarnLevel)

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log file = %q", data)
	}
}
