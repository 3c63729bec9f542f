// cmd/mail-sink/main.go
// 開發用 SMTP Sink 入口程式
// 接收 SMTP 郵件並存成 KeyDB 預覽，不會轉寄

package main

import (
	"os"
	"os/signal"
	"syscall"

	"contact-relay/internal/config"
	"contact-relay/internal/logger"
	"contact-relay/internal/services"
	"contact-relay/internal/smtp"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.IsProduction() {
		log.Fatal().Str("env", cfg.Env).Msg("mail sink must not run in production")
	}
	if cfg.KeyDBURL == "" {
		log.Fatal().Msg("KEYDB_URL is required for the mail sink")
	}

	// 初始化 KeyDB
	previews, err := services.NewPreviewService(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to KeyDB")
	}
	defer previews.Close()

	// 建立 SMTP 伺服器
	smtpServer := smtp.NewServer(cfg, previews, log)

	// 啟動 SMTP 伺服器 (非同步)
	go func() {
		if err := smtpServer.Start(); err != nil {
			log.Fatal().Err(err).Msg("mail sink error")
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	if err := smtpServer.Shutdown(); err != nil {
		log.Error().Err(err).Msg("failed to close mail sink")
	}

	log.Info().Msg("mail sink stopped")
}
