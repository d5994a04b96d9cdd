// Package cli implements the stemma command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stemma/pkg/cache"
	"github.com/matzehuels/stemma/pkg/document"
	"github.com/matzehuels/stemma/pkg/errors"
	"github.com/matzehuels/stemma/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "stemma"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogError = log.ErrorLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	cfg    *Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Document Factory
// =============================================================================

// openDocument opens the chart file as a live document: store attached,
// config applied, content loaded. The caller owns the document and must
// Close it.
func (c *CLI) openDocument(ctx context.Context, path string) (*document.Document, error) {
	st, err := store.NewFileStore(path)
	if err != nil {
		return nil, err
	}

	doc := document.New(document.Options{
		Store:         st,
		Layout:        c.cfg.layoutOptions(),
		AutosaveDelay: c.cfg.autosaveDelay(),
		Logger:        c.Logger,
	})
	if err := doc.Load(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return doc, nil
}

// requireFile rejects paths that do not exist yet. Read-only commands
// use it so a typo surfaces as an error instead of an empty chart.
func requireFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "chart file %s", path)
	}
	return nil
}

// newCache builds the avatar cache from config; disabled caching falls
// back to the null backend.
func (c *CLI) newCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Debug("cache dir unavailable, continuing without", "error", err)
		return cache.NewNullCache()
	}
	cc, err := cache.New(ctx, cache.Config{
		Backend:   c.cfg.Cache.Backend,
		Dir:       dir,
		RedisAddr: c.cfg.Cache.RedisAddr,
	})
	if err != nil {
		c.Logger.Debug("cache unavailable, continuing without", "error", err)
		return cache.NewNullCache()
	}
	return cc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the avatar cache directory using the XDG convention
// (~/.cache/stemma/avatars), honoring a config override.
func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName, "avatars"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName, "avatars"), nil
}

// configDir returns the config directory using the XDG convention
// (~/.config/stemma).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
