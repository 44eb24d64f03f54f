package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/emberforge/ember/internal/config"
	"github.com/emberforge/ember/internal/injector"
	"github.com/google/uuid"
	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	defaultCfg := "config/ember.toml"
	if p := os.Getenv("EMBER_CONFIG"); p != "" {
		defaultCfg = p
	}
	cfgPath := flag.String("config", defaultCfg, "config file")
	profMode := flag.String("profile", "", "write a cpu or mem profile to the working directory")
	snapshot := flag.String("snapshot", "", "load a stored scene snapshot by id instead of the scene file")
	flag.Parse()

	// 1. Config and logger
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	switch *profMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", *profMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Assemble the engine
	eng, cleanup, err := injector.InitializeEngine(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	// 3. Load the starting scene
	if *snapshot != "" {
		id, err := uuid.Parse(*snapshot)
		if err != nil {
			return fmt.Errorf("snapshot id: %w", err)
		}
		if err := eng.LoadSnapshot(ctx, id); err != nil {
			return err
		}
	} else if err := eng.LoadScene(cfg.Scene.File); err != nil {
		return err
	}
	log.Info("scene loaded",
		zap.String("scene", eng.Scene().Name()),
		zap.Int("entities", eng.Scene().Len()))

	// 4. Run the event pump and the frame loop until either stops
	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(loopCtx)
	g.Go(func() error {
		return eng.Window().PollEvents(gctx)
	})
	g.Go(func() error {
		// finalising the screen unblocks PollEvents
		defer eng.Window().Close()
		defer cancel()
		return eng.Run(gctx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("shutdown", zap.Uint64("frames", eng.Frames()))
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	// stdout belongs to the renderer
	if cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
	} else {
		zapCfg.OutputPaths = nil
	}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	return zapCfg.Build()
}
