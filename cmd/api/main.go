// cmd/api/main.go
// 聯絡表單 API 入口

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contact-relay/internal/api/routes"
	"contact-relay/internal/config"
	"contact-relay/internal/logger"
	"contact-relay/internal/services"
)

// drainTimeout 關機時等待背景寫入的上限
const drainTimeout = 10 * time.Second

func main() {
	// 載入設定
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	log.Info().Str("env", cfg.Env).Msg("starting contact relay API server")

	// 初始化儲存 (選用)
	store, err := services.NewContactStore(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("contact store unavailable, submissions will not be recorded")
		store = nil
	}
	if store != nil {
		log.Info().Str("store", store.Name()).Msg("contact store enabled")
		if closer, ok := store.(interface{ Close() error }); ok {
			defer closer.Close()
		}
	}
	recorder := services.NewContactRecorder(store, cfg.StoreTimeout, log)

	// 初始化 KeyDB (選用，僅供預覽)
	var previews *services.PreviewService
	if cfg.KeyDBURL != "" {
		previews, err = services.NewPreviewService(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("KeyDB unavailable, mail previews disabled")
			previews = nil
		} else {
			defer previews.Close()
		}
	}

	// 初始化通知供應商
	senders, err := services.NewProviderChain(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid provider configuration")
	}
	for _, sender := range senders {
		log.Info().Str("provider", sender.Name()).Bool("configured", sender.IsConfigured()).Msg("notification provider")
	}
	if !cfg.AnyProviderConfigured() {
		log.Warn().Bool("production", cfg.IsProduction()).Msg("no notification provider configured")
	}
	mailRouter := services.NewMailRouter(log, cfg.ProviderTimeout, senders...)

	// 建立路由
	router := routes.NewRouter(&routes.Dependencies{
		Config:     cfg,
		Logger:     log,
		MailRouter: mailRouter,
		Recorder:   recorder,
		Store:      store,
		Previews:   previews,
	})

	// 建立 HTTP Server
	srv := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 優雅關機
	go func() {
		log.Info().Str("port", cfg.APIPort).Msg("API server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down API server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// 等待背景寫入完成
	if !recorder.Wait(drainTimeout) {
		log.Warn().Dur("timeout", drainTimeout).Msg("gave up waiting for pending contact writes")
	}

	log.Info().Msg("API server stopped")
}
