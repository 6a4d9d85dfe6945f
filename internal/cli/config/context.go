// Package config carries the loaded configuration, logger and renderer
// through a command's context.
package config

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/leapstack-labs/leaprecord/internal/cli/output"
	intconfig "github.com/leapstack-labs/leaprecord/internal/config"
)

type configKey struct{}

type loggerKey struct{}

type rendererKey struct{}

// WithConfig stores cfg in ctx.
func WithConfig(ctx context.Context, cfg *intconfig.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *intconfig.Config {
	if c, ok := ctx.Value(configKey{}).(*intconfig.Config); ok {
		return c
	}
	return &intconfig.Config{
		DefaultUnit: intconfig.DefaultUnit,
		Output:      intconfig.DefaultOutput,
		Units:       map[string]*intconfig.Unit{},
	}
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// WithRenderer stores r in ctx.
func WithRenderer(ctx context.Context, r *output.Renderer) context.Context {
	return context.WithValue(ctx, rendererKey{}, r)
}

// GetRenderer retrieves the renderer from the command context.
func GetRenderer(ctx context.Context) *output.Renderer {
	if r, ok := ctx.Value(rendererKey{}).(*output.Renderer); ok {
		return r
	}
	return output.NewRenderer(os.Stdout, os.Stderr, output.ModeTable)
}

// NewLogger builds the CLI logger: text on stderr, debug level when verbose.
func NewLogger(cfg *intconfig.Config, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
