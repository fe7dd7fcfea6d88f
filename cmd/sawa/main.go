// Package main запускает HTTP-сервер сервиса SAWA.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HasanDroid18/SAWA-Backend/internal/auth"
	"github.com/HasanDroid18/SAWA-Backend/internal/config"
	"github.com/HasanDroid18/SAWA-Backend/internal/handler"
	"github.com/HasanDroid18/SAWA-Backend/internal/mail"
	"github.com/HasanDroid18/SAWA-Backend/internal/middleware"
	"github.com/HasanDroid18/SAWA-Backend/internal/repository"
	"github.com/HasanDroid18/SAWA-Backend/internal/service"
	"github.com/HasanDroid18/SAWA-Backend/internal/upload"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}
	defer repo.Close()

	tokens, err := auth.NewTokenIssuer(cfg.TokenSecret)
	if err != nil {
		sugar.Fatalw("token issuer error", "error", err.Error())
	}

	codes, err := auth.NewCodeIssuer(cfg.HMACSecret)
	if err != nil {
		sugar.Fatalw("code issuer error", "error", err.Error())
	}

	uploads, err := upload.NewStorage(cfg.UploadDir)
	if err != nil {
		sugar.Fatalw("upload storage error", "error", err.Error())
	}

	mailer := mail.NewSender(mail.Config{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.MailFrom,
	}, logger)

	svc := service.NewService(repo, codes, tokens, mailer, uploads, cfg.BcryptCost, logger)

	if err := svc.EnsureDefaultAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		sugar.Fatalw("default admin bootstrap error", "error", err.Error())
	}

	identifier := middleware.NewIdentifier(tokens)
	h := handler.NewHandler(svc, logger, identifier, uploads)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting sawa server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
