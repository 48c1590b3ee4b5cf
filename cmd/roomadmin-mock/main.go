package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomadmin/internal/config"
	"roomadmin/internal/logger"
	"roomadmin/internal/mockapi"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "roomadmin-mock")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	// 内存后端 + 演示数据，供前端联测
	repo := mockapi.NewMemoryRepo()
	seeded := mockapi.Seed(repo)
	log.Info("Seeded mock backend",
		zap.Int("branches", len(seeded.Branches)),
		zap.Int("levels", len(seeded.Levels)),
		zap.Int("room_types", len(seeded.RoomTypes)),
		zap.Int("utility_types", len(seeded.UtilityTypes)),
	)

	router := mockapi.NewRouter(repo, mockapi.Options{
		Envelope:  mockapi.Envelope(cfg.Mock.Envelope),
		AuthToken: cfg.Mock.AuthToken,
	}, log)
	srv := mockapi.NewServer(cfg.Mock.Addr, router, log)

	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Error("Mock server stopped", zap.Error(err))
		}
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}
