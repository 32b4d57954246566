package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/syncmiru/server/internal/controller"
	connInmemory "github.com/syncmiru/server/internal/repository/connection/inmemory"
	"github.com/syncmiru/server/internal/repository/mailer"
	"github.com/syncmiru/server/internal/repository/state"
	userRedis "github.com/syncmiru/server/internal/repository/user/redis"
	"github.com/syncmiru/server/internal/repository/wssender"
	"github.com/syncmiru/server/internal/service/room"
	"github.com/syncmiru/server/pkg/clock"
	"github.com/syncmiru/server/pkg/ctxlogger"
	"github.com/syncmiru/server/pkg/redisclient"
)

type AppConfig struct {
	Host              string `json:"host"`
	Port              int    `json:"port"`
	LogLevel          string `json:"log_level"`
	JwtPublicKeyPath  string `json:"jwt_public_key_path"`
	DesyncTickMs      int    `json:"desync_tick_ms"`
	TimestampMaxOldMs int    `json:"timestamp_max_old_ms"`
	PingMaxSeconds    int    `json:"ping_max_seconds"`
	PlaylistLimit     int    `json:"playlist_limit"`
	RoomNameMaxLen    int    `json:"room_name_max_len"`
	RedisPort         int    `json:"redis_port"`
	RedisHost         string `json:"redis_host"`
	RedisPassword     string `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.JwtPublicKeyPath == "" {
		return fmt.Errorf("jwt public key path must be set")
	}
	if cfg.PlaylistLimit < 1 {
		return fmt.Errorf("playlist limit must be greater than 0")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}
	logger := slog.New(&h)

	pemBytes, err := os.ReadFile(cfg.JwtPublicKeyPath)
	if err != nil {
		return fmt.Errorf("failed to read jwt public key: %w", err)
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(pemBytes)
	if err != nil {
		return fmt.Errorf("failed to parse jwt public key: %w", err)
	}

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	userRepo := userRedis.NewRepo(rc, logger)
	connRepo := connInmemory.NewRepo()
	sender := wssender.NewSender(connRepo, logger)
	stateStore := state.NewStore()

	roomService := room.NewService(
		userRepo,
		connRepo,
		mailer.NewMailer(logger),
		sender,
		stateStore,
		clock.System(),
		&room.Config{
			PublicKey:       publicKey,
			DesyncTick:      time.Duration(cfg.DesyncTickMs) * time.Millisecond,
			TimestampMaxAge: time.Duration(cfg.TimestampMaxOldMs) * time.Millisecond,
			PingMax:         float64(cfg.PingMaxSeconds),
			RoomNameMaxLen:  cfg.RoomNameMaxLen,
			PlaylistLimit:   cfg.PlaylistLimit,
		},
		logger,
	)

	ctrl := controller.NewController(roomService, sender, &controller.Config{
		AuthTimeout: 10 * time.Second,
	}, logger)

	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: ctrl.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	go roomService.RunDesyncSupervisor(serverCtx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
