// Package internal provides the App struct that wires all pngstash
// components together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pngstash/pngstash/internal/cli"
	"github.com/pngstash/pngstash/internal/core"
	"github.com/pngstash/pngstash/internal/observability"
	"github.com/pngstash/pngstash/internal/storage"
)

// App holds all service dependencies for pngstash.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigManager
	Cfg       *core.Config

	// Storage layer
	Store storage.FileStore

	// Core services
	Codec     core.MessageCodec
	Inspector core.Inspector
	Verifier  core.Verifier

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all pngstash components. basePath is the
// directory holding .pngstash.yaml and the event log, typically resolved
// by ResolveBasePath.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigManager(basePath)
	cfg, err := app.ConfigMgr.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := app.ConfigMgr.Validate(cfg); err != nil {
		return nil, err
	}
	app.Cfg = cfg

	// --- Storage layer ---
	app.Store = storage.NewFileStore(storage.Options{
		MaxChunkBytes: cfg.MaxChunkBytes,
		Backup:        cfg.Backup,
	})

	// --- Core services ---
	app.Codec = core.NewMessageCodec()
	app.Inspector = core.NewInspector()
	app.Verifier = core.NewVerifier()

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, ".pngstash_events.jsonl")
	app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: disable observability if the log can't be created.
		app.EventLog = nil
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Cfg = app.Cfg
	cli.Store = app.Store
	cli.Codec = app.Codec
	cli.Inspector = app.Inspector
	cli.Verifier = app.Verifier
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines where pngstash keeps its configuration and
// event log. It checks the PNGSTASH_HOME env var, then walks up from the
// current directory looking for a .pngstash.yaml, then falls back to the
// user home directory.
func ResolveBasePath() string {
	if home := os.Getenv("PNGSTASH_HOME"); home != "" {
		return home
	}

	if dir, err := os.Getwd(); err == nil {
		for {
			if _, err := os.Stat(filepath.Join(dir, ".pngstash.yaml")); err == nil {
				return dir
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	cwd, _ := os.Getwd()
	return cwd
}
