package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"texgen/core"
	"texgen/db"
	"texgen/imagegen"
	"texgen/logging"
	"texgen/sdruntime"
	"texgen/shutdown"
)

// Cleanup order: generators before the history database, logs last.
const (
	priorityGenerator = 10
	priorityHistory   = 20
	priorityLogger    = 100
)

const shutdownTimeout = 10 * time.Second

// app holds what the commands share: configuration, logger and the
// resources to release on exit.
type app struct {
	v        *viper.Viper
	stdout   io.Writer
	stderr   io.Writer
	cfg      *core.Config
	logger   *logging.Logger
	registry *shutdown.Registry

	// newGenerator builds the generation backend. Tests replace it.
	newGenerator func(cfg *core.Config, logger *logging.Logger) (imagegen.Generator, string, error)
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		v:            viper.New(),
		stdout:       stdout,
		stderr:       stderr,
		logger:       logging.NewNop(),
		registry:     shutdown.NewRegistry(),
		newGenerator: newGenerator,
	}
}

// setup loads the configuration, applies the global flags and starts the
// logger. It runs before every command.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := core.LoadConfig()
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = strings.ToLower(a.v.GetString("backend"))
	}
	if flags.Changed("history-db") {
		cfg.HistoryDB = core.HistoryPath(a.v.GetString("history-db"))
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.v.GetString("log-level")
	}
	if flags.Changed("log-file") {
		cfg.LogFile = a.v.GetString("log-file")
	}
	if flags.Changed("dev") {
		cfg.DevMode = a.v.GetBool("dev")
	}
	a.cfg = cfg

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return core.ErrInvalidValue("TEXGEN_LOG_LEVEL", cfg.LogLevel, "use debug, info, warn or error")
	}
	if cfg.LogLevel == "" {
		level = zapcore.WarnLevel
		if cfg.DevMode {
			level = zapcore.DebugLevel
		}
	}

	logger, err := logging.NewLoggerWithLevel(level, cfg.DevMode, cfg.LogFile, a.stderr)
	if err != nil {
		return err
	}
	a.logger = logger
	a.registry.Register("logger", priorityLogger, func(context.Context) error {
		// Syncing a terminal returns EINVAL on some platforms.
		_ = logger.Sync()
		return nil
	})

	logger.Debug("configuration loaded",
		zap.String("command", cmd.Name()),
		zap.String("backend", cfg.Backend),
		zap.String("history_db", cfg.HistoryDB),
		zap.String("log_file", cfg.LogFile),
		zap.Bool("dev_mode", cfg.DevMode))
	return nil
}

// openHistory opens the history database, or returns nil when history is
// disabled.
func (a *app) openHistory(ctx context.Context) (*db.Repository, error) {
	if a.cfg.HistoryDB == "" {
		return nil, nil
	}
	database, err := db.Open(ctx, a.cfg.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open history %s: %w", a.cfg.HistoryDB, err)
	}
	a.registry.Register("history", priorityHistory, func(context.Context) error {
		return database.Close()
	})
	return db.NewRepository(database), nil
}

// close releases everything registered during the command.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, err := range a.registry.Shutdown(ctx) {
		fmt.Fprintf(a.stderr, "cleanup: %v\n", err)
	}
}

// newGenerator builds the backend selected by cfg and returns it with the
// model name used for records.
func newGenerator(cfg *core.Config, logger *logging.Logger) (imagegen.Generator, string, error) {
	switch cfg.Backend {
	case core.BackendSD:
		sdCfg := sdruntime.LoadSDConfig()
		sdCfg.ModelPath = cfg.SDModelPath
		gen, err := sdruntime.NewGenerator(sdCfg)
		if err != nil {
			return nil, "", fmt.Errorf("failed to start stable diffusion: %w", err)
		}
		logger.Info("stable diffusion ready",
			zap.String("model", sdCfg.ModelPath),
			zap.Int("pool_size", gen.PoolSize()))
		return &closingGenerator{Generator: imagegen.NewSDGenerator(gen), close: gen.Close}, sdCfg.ModelPath, nil

	case core.BackendOpenAI:
		gen, err := imagegen.NewOpenAIGenerator(imagegen.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIImageModel,
		})
		if err != nil {
			return nil, "", err
		}
		logger.Info("openai image backend ready",
			zap.String("model", gen.Model()),
			zap.String("base_url", cfg.OpenAIBaseURL))
		return gen, gen.Model(), nil
	}
	return nil, "", core.ErrUnknownBackend(cfg.Backend)
}

// closingGenerator is a Generator owning a resource released on exit.
type closingGenerator struct {
	imagegen.Generator
	close func() error
}

func (g *closingGenerator) Close() error {
	return g.close()
}
