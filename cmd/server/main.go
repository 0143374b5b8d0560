package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CharacterChat/internal/ai"
	"CharacterChat/internal/app/orchestrator"
	"CharacterChat/internal/config"
	"CharacterChat/internal/gatekeeper"
	"CharacterChat/internal/server"
	"CharacterChat/internal/service/character"
	"CharacterChat/internal/service/mode"
	"CharacterChat/internal/service/session"

	"go.uber.org/zap"
)

// HTTP API движка сессий: транспортная граница для браузерного клиента,
// который сам ведёт ленту диалогов и присылает контекст с каждым ходом.
func main() {
	cfg := config.NewConfig()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	sugar.Infow("Starting server", "DebugMode", cfg.DebugMode, "ListenAddr", cfg.ListenAddr)

	gw, err := ai.NewGateway(cfg.AI, sugar)
	if err != nil {
		sugar.Fatalw("Не удалось создать шлюз провайдера", "error", err)
	}

	char := character.Character{
		Slug:              cfg.Character.Slug,
		DisplayName:       cfg.Character.DisplayName,
		ReferenceImageURL: cfg.Character.ReferenceImageURL,
	}
	store := session.NewStore(cfg.DefaultThreadName)
	orch := orchestrator.New(cfg, orchestrator.GatewaysFrom(gw), store, mode.New(), char, nil, sugar)
	gate := gatekeeper.New(cfg.Gatekeeper)

	h := server.NewHandlers(cfg, orch, gate, char, sugar)
	router := server.NewRouter(cfg, h)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Генерация изображений может занимать минуты.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sugar.Infow("API listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) && err != nil {
			sugar.Fatalw("server error", "error", err)
		}
	}()

	// Graceful shutdown on Ctrl+C / SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeoutCause(context.Background(), 5*time.Second, errors.New("shutdown timeout"))
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		sugar.Errorw("graceful shutdown error", "error", err)
		_ = srv.Close()
	}
	sugar.Infow("server stopped")
}
