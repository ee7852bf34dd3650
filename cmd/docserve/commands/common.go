// Package commands implements the docserve command line.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docserve/internal/config"
)

// Global is passed to every command's Run method.
type Global struct {
	// Out receives command output; nil means stdout.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition and global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docserve.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve   ServeCmd   `cmd:"" help:"Serve the documentation site"`
	Index   IndexCmd   `cmd:"" help:"List indexed documents and slug conflicts"`
	Nav     NavCmd     `cmd:"" help:"Print the navigation tree for a slug"`
	Sitemap SitemapCmd `cmd:"" help:"Write sitemap.xml for the content tree"`
	Render  RenderCmd  `cmd:"" help:"Render one document to HTML"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing and installs a bootstrap logger. Commands
// that load configuration replace it via configureLogging.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(newLogger(os.Stderr, level, config.LogFormatText))
	return nil
}

// configureLogging applies the configured level and format. -v always wins.
func (c *CLI) configureLogging(cfg *config.Config) *slog.Logger {
	level := cfg.Monitoring.Logging.Level.SlogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := newLogger(os.Stderr, level, cfg.Monitoring.Logging.Format)
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, level slog.Level, format config.LogFormat) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
