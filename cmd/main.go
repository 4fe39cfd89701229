package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/quick-clinic/realtime-service/config"
	"github.com/quick-clinic/realtime-service/internal/postgres"
	"github.com/quick-clinic/realtime-service/internal/pubsub"
	"github.com/quick-clinic/realtime-service/internal/security"
	"github.com/quick-clinic/realtime-service/internal/service"
	grpcx "github.com/quick-clinic/realtime-service/internal/transport/grpc"
	httpx "github.com/quick-clinic/realtime-service/internal/transport/http"
	"github.com/quick-clinic/realtime-service/internal/transport/ws"
	"github.com/quick-clinic/realtime-service/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.ParseEnv(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting realtime-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- postgres ---
	db, err := postgres.New(ctx, postgres.Config{
		DSN:             cfg.Postgres.DSN,
		MaxConns:        cfg.Postgres.MaxConns,
		MinConns:        cfg.Postgres.MinConns,
		MaxConnLifetime: cfg.Postgres.ConnLifetime(),
		ApplicationName: cfg.Postgres.ApplicationName,
	})
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()
	gw := postgres.NewGateway(db.Pool)

	// --- auth ---
	var verifier service.TokenVerifier
	if cfg.Auth.JWTPublicKeyPath != "" {
		pub, err := security.LoadRSAPublicKeyFromPEM(cfg.Auth.JWTPublicKeyPath)
		if err != nil {
			log.Fatalf("jwt public key: %v", err)
		}
		verifier = security.NewVerifier(pub, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.Skew())
		slog.Info("handshake token verification enabled", "issuer", cfg.Auth.Issuer)
	}

	// --- services ---
	hub := ws.NewHub()
	authSvc := service.NewAuthService(gw, verifier)
	chatSvc := service.NewChatService(gw, cfg.Chat.MaxMessageLength)
	notifier := service.NewNotifier(gw, hub)

	// --- WS ---
	wsServer := ws.NewServer(hub, authSvc, chatSvc, ws.Options{
		PingEvery:      cfg.WS.PingEvery(),
		WriteWait:      cfg.WS.WriteTimeout(),
		MaxMessageSize: cfg.WS.MaxMessageSize,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	// --- HTTP ---
	router := httpx.NewRouter(httpx.NewHandler(notifier), wsServer.HandleWS, httpx.RouterOptions{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		InternalToken:  cfg.Internal.Token,
		Timeout:        cfg.HTTP.Timeout(),
		Ready:          db.Ping,
	})
	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 2)

	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- gRPC health ---
	var grpcSrv *grpcx.Server
	if cfg.GRPC.Addr != "" {
		grpcSrv = grpcx.NewServer()
		go grpcSrv.WatchReadiness(ctx, 10*time.Second, db.Ping)
		go func() {
			lis, err := net.Listen("tcp", cfg.GRPC.Addr)
			if err != nil {
				errCh <- err
				return
			}
			slog.Info("grpc listen", "addr", cfg.GRPC.Addr)
			if err := grpcSrv.GRPC.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	}

	// --- redis bridge ---
	var sub *pubsub.Subscriber
	if cfg.Redis.Addr != "" {
		client, err := pubsub.NewClient(ctx, pubsub.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer client.Close()
		sub = pubsub.NewSubscriber(client, cfg.Redis.Channel, notifier)
		go sub.Run(ctx)
	}

	// --- graceful shutdown ---
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal")
	case err := <-errCh:
		slog.Error("server error", "err", err)
		stop()
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcSrv != nil {
		grpcSrv.Stop()
	}
	_ = httpSrv.Shutdown(ctxShutdown)
	wsServer.Shutdown()
	if sub != nil {
		select {
		case <-sub.Done():
		case <-ctxShutdown.Done():
		}
	}
	slog.Info("stopped")
}
