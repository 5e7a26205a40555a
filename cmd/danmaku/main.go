package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go.uber.org/zap"

	"github.com/riverlink/danmaku-go/internal/api"
	"github.com/riverlink/danmaku-go/internal/client"
	"github.com/riverlink/danmaku-go/internal/restapi"
	"github.com/riverlink/danmaku-go/internal/transport"
	"github.com/riverlink/danmaku-go/internal/webhook"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	sugar := logger.Sugar()
	sugar.Info("danmaku watch gateway starting...")

	port := os.Getenv("DANMAKU_PORT")
	if port == "" {
		port = "3200"
	}

	builder, err := restapi.NewClientBuilder(sugar)
	if err != nil {
		sugar.Fatalf("failed to build rest client: %v", err)
	}

	if account := os.Getenv("ACCOUNT"); account != "" {
		if err := builder.Login(context.Background(), account, os.Getenv("PASSWORD")); err != nil {
			sugar.Warnf("login failed, falling back to visitor token: %v", err)
		}
	}

	dispatcher := webhook.NewDispatcher(sugar)
	if secret := os.Getenv("WEBHOOK_SECRET_DEFAULT"); secret != "" {
		dispatcher.SetDefaultSecret(secret)
	}

	dialer := &transport.WebSocketDialer{}
	sessionManager := client.NewSessionManager(sugar, builder, dialer, dispatcher)

	server := api.NewServer(api.ServerConfig{
		Port:              port,
		Logger:            sugar,
		SessionManager:    sessionManager,
		WebhookDispatcher: dispatcher,
	})

	if liverUIDStr := os.Getenv("LIVER_UID"); liverUIDStr != "" {
		liverUID, err := strconv.ParseInt(liverUIDStr, 10, 64)
		if err != nil {
			sugar.Fatalf("invalid LIVER_UID: %v", err)
		}
		if _, err := sessionManager.CreateWatch(context.Background(), liverUID); err != nil {
			sugar.Errorf("failed to start initial watch for liver %d: %v", liverUID, err)
		}
	}

	go func() {
		if err := server.Start(); err != nil {
			sugar.Fatalf("server failed: %v", err)
		}
	}()

	sugar.Infof("danmaku watch gateway running at http://0.0.0.0:%s", port)
	sugar.Info("API docs available at /api/v1/openapi.json")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sugar.Info("shutting down gracefully...")
	sessionManager.StopAll(context.Background())
	server.Stop()
}
