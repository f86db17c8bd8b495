package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/partyhire/internal/config"
	"github.com/mamadbah2/partyhire/internal/receipt"
	"github.com/mamadbah2/partyhire/internal/repository/jsonfile"
	"github.com/mamadbah2/partyhire/internal/server/handlers"
	"github.com/mamadbah2/partyhire/internal/server/router"
	commandsvc "github.com/mamadbah2/partyhire/internal/service/commands"
	"github.com/mamadbah2/partyhire/internal/store"
	"github.com/mamadbah2/partyhire/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	repo, err := jsonfile.NewFileRepository(cfg.Storage.DataFile, logger.Named(baseLogger, "repo.jsonfile"))
	if err != nil {
		baseLogger.Fatal("failed to init data file repository", zap.Error(err))
	}

	recordStore := store.New(repo, receipt.NewGenerator(nil), logger.Named(baseLogger, "store"))
	if err := recordStore.Load(context.Background()); err != nil {
		switch {
		case errors.Is(err, store.ErrMalformedFile) && cfg.Storage.ResetOnMalformed:
			baseLogger.Warn("data file malformed, replacing it with an empty list", zap.Error(err))
			if err := recordStore.Reset(context.Background()); err != nil {
				baseLogger.Fatal("failed to reset data file", zap.Error(err))
			}
		case errors.Is(err, store.ErrMalformedFile):
			baseLogger.Warn("data file malformed, POST /receipts/reset to replace it", zap.Error(err))
		default:
			baseLogger.Fatal("failed to load data file", zap.Error(err))
		}
	}

	commandDispatcher := commandsvc.NewService(recordStore, logger.Named(baseLogger, "svc.commands"))
	receiptHandler := handlers.NewReceiptHandler(commandDispatcher, logger.Named(baseLogger, "handlers.receipts"))
	engine := router.New(receiptHandler, logger.Named(baseLogger, "router"))

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("data_file", repo.Path()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
