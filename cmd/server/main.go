package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ichi0g0y/name-picker/internal/driver"
	"github.com/ichi0g0y/name-picker/internal/env"
	"github.com/ichi0g0y/name-picker/internal/localdb"
	"github.com/ichi0g0y/name-picker/internal/lottery"
	"github.com/ichi0g0y/name-picker/internal/reveal"
	"github.com/ichi0g0y/name-picker/internal/settings"
	"github.com/ichi0g0y/name-picker/internal/shared/logger"
	"github.com/ichi0g0y/name-picker/internal/tuning"
	"github.com/ichi0g0y/name-picker/internal/version"
	"github.com/ichi0g0y/name-picker/internal/webserver"
)

func main() {
	logger.Init(false)
	defer logger.Sync()

	if err := env.LoadEnv(); err != nil {
		logger.Fatal("Failed to load environment", zap.Error(err))
	}
	if env.Value.DebugMode {
		logger.Init(true)
		logger.Info("Debug mode enabled")
	}

	logger.Info("Starting name-picker server", zap.String("version", version.String()))

	db, err := localdb.SetupDB(env.Value.DBPath)
	if err != nil {
		logger.Fatal("Failed to setup database", zap.Error(err))
	}
	defer localdb.Close()

	sm := settings.NewSettingsManager(db)
	if err := sm.MigrateFromEnv(); err != nil {
		logger.Warn("Failed to migrate settings from environment", zap.Error(err))
	}
	if err := sm.InitializeDefaultSettings(); err != nil {
		logger.Fatal("Failed to initialize settings", zap.Error(err))
	}

	tun, err := tuning.Load(env.Value.TuningPath)
	if err != nil {
		logger.Fatal("Failed to load tuning", zap.String("path", env.Value.TuningPath), zap.Error(err))
	}

	hub := webserver.NewHub()
	d := driver.New(driver.Options{
		Pool:          localdb.EntryStore{},
		Renderer:      hub,
		Recorder:      localdb.HistoryRecorder{},
		RNG:           lottery.DefaultRNG(),
		Policy:        reveal.NewPolicy(),
		Tuning:        tun,
		FrameInterval: env.Value.FrameInterval(),
		Weighted:      sm.WeightingEnabled,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	port := env.Value.ServerPort
	srv := &webserver.Server{Driver: d, Settings: sm, Hub: hub, PublicURL: env.Value.PublicURL}
	if err := webserver.StartWebServer(ctx, port, srv); err != nil {
		logger.Fatal("Failed to start web server", zap.Error(err))
	}

	logger.Info("Server started",
		zap.Int("port", port),
		zap.String("api", fmt.Sprintf("http://localhost:%d/api/", port)),
		zap.String("ws", fmt.Sprintf("ws://localhost:%d/ws", port)),
		zap.String("default_mode", string(sm.DrawMode())))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")

	d.Cancel()
	webserver.Shutdown()
	cancel()

	logger.Info("Shutdown complete")
}
