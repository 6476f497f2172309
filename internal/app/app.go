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

	"github.com/alicehocane/watch/internal/controller"
	"github.com/alicehocane/watch/internal/identity"
	"github.com/alicehocane/watch/internal/session"
	"github.com/alicehocane/watch/internal/session/registry"
	storeredis "github.com/alicehocane/watch/internal/store/redis"
	"github.com/alicehocane/watch/pkg/ctxlogger"
	"github.com/alicehocane/watch/pkg/redisclient"
)

type AppConfig struct {
	Host          string        `json:"host"`
	Port          int           `json:"port"`
	LogLevel      string        `json:"log_level"`
	DataDir       string        `json:"data_dir"`
	RoomTTL       time.Duration `json:"room_ttl"`
	PresenceTTL   time.Duration `json:"presence_ttl"`
	RedisHost     string        `json:"redis_host"`
	RedisPort     int           `json:"redis_port"`
	RedisPassword string        `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.DataDir == "" {
		return fmt.Errorf("data dir must be set")
	}
	if cfg.RoomTTL < time.Minute {
		return fmt.Errorf("room ttl must be at least a minute")
	}
	if cfg.PresenceTTL < time.Second {
		return fmt.Errorf("presence ttl must be at least a second")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
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

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	repo := storeredis.NewRepo(rc, logger, &storeredis.Config{
		ExpireDuration: cfg.RoomTTL,
		PresenceTTL:    cfg.PresenceTTL,
	})

	ident, err := identity.Load(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to load identity: %w", err)
	}

	sessions := registry.New()

	newSession := func(notifier session.Notifier, factory session.ControllerFactory) *session.Session {
		return session.New(&session.Deps{
			Store:      repo,
			Identity:   ident,
			Notifier:   notifier,
			Controller: factory,
			Logger:     logger,
		}, nil)
	}

	ctrl := controller.NewController(&controller.Deps{
		Rooms:      repo,
		Identity:   ident,
		Registry:   sessions,
		NewSession: newSession,
		Logger:     logger,
	})

	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: ctrl.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

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

		sessions.CloseAll()
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr, "participant_id", ident.ParticipantID())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
