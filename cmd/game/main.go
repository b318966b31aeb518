package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/tatianab/scottfree/internal/config"
	"github.com/tatianab/scottfree/internal/loader"
	"github.com/tatianab/scottfree/internal/tui"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if len(os.Args) > 1 {
		cfg.GamePath = os.Args[1]
	}
	if cfg.GamePath == "" {
		fmt.Println("Usage: game <game file>")
		os.Exit(2)
	}

	// The terminal UI owns stdout, so only file logging is useful.
	if cfg.LogFile == "" {
		cfg.LogLevel = "panic"
	}
	closeLog, err := cfg.SetupLogging()
	if err != nil {
		fmt.Printf("Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	opts, err := cfg.LoaderOptions()
	if err != nil {
		fmt.Printf("Error loading catalog: %v\n", err)
		os.Exit(1)
	}
	w, err := loader.LoadFile(cfg.GamePath, opts...)
	if err != nil {
		fmt.Printf("Error loading %s: %v\n", cfg.GamePath, err)
		os.Exit(1)
	}
	if err := loader.Validate(w); err != nil {
		log.Warnf("game: %v", err)
	}
	log.Infof("game: loaded %q (%s)", w.Title, w.Dialect)

	if err := tui.Run(w, cfg.EngineOptions(), cfg.SaveDir); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
