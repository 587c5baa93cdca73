package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/feelbetter/backend/internal/config"
	"github.com/zhouzirui/feelbetter/backend/internal/handler"
	"github.com/zhouzirui/feelbetter/backend/internal/service/ai"
	"github.com/zhouzirui/feelbetter/backend/internal/service/chat"
	emotionservice "github.com/zhouzirui/feelbetter/backend/internal/service/emotion"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize AI service. Without it every chat turn answers with the missing-config message.
	var generator ai.Generator
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI functionality - 请检查 LLM 相关环境变量")
		} else {
			generator = aiService
			log.Printf("AI service initialized successfully (provider=%s)", aiService.Provider())
		}
	} else {
		log.Printf("%s 凭证未配置，跳过 AI 功能初始化", cfg.AI.Provider)
	}

	emotionSvc := emotionservice.NewService(cfg.Emotion, generator)
	switch {
	case emotionSvc.Enabled():
		log.Printf("Emotion classifier enabled (provider=%s)", emotionSvc.Provider())
	case cfg.Emotion.Enabled:
		log.Printf("Emotion classifier %s requested but not configured, every turn is neutral", cfg.Emotion.Provider)
	default:
		log.Println("Emotion classifier disabled by configuration")
	}

	chatService := chat.NewService(emotionSvc, generator, chat.Options{ErrorDetail: cfg.Chat.ErrorDetail})

	router := handler.NewRouter(cfg.Server.AllowedOrigins, chatService, handler.Health{
		LLMEnabled:      generator != nil,
		EmotionProvider: emotionSvc.Provider(),
		EmotionEnabled:  emotionSvc.Enabled(),
	})

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("FeelBetter backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
