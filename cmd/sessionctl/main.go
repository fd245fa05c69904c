package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cacheadapter "github.com/smallbiznis/valora-session/internal/adapter/cache"
	"github.com/smallbiznis/valora-session/internal/adapter/securestore"
	"github.com/smallbiznis/valora-session/internal/config"
	"github.com/smallbiznis/valora-session/internal/domain"
	"github.com/smallbiznis/valora-session/internal/repository"
	"github.com/smallbiznis/valora-session/internal/session"
	"github.com/smallbiznis/valora-session/internal/storage"
	"github.com/smallbiznis/valora-session/internal/telemetry"
	"github.com/smallbiznis/valora-session/internal/transport"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newSecureStore,
			newCacheStore,
			newTransport,
			newRepository,
			session.NewManager,
		),
		fx.Invoke(initSentry, runCommand),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newSecureStore(cfg config.Config) (storage.SecureStore, error) {
	return securestore.NewFileStore(cfg.SecureStorePath, []byte(cfg.SecureStoreSecret))
}

func newCacheStore(lc fx.Lifecycle, cfg config.Config) (storage.CacheStore, error) {
	if cfg.RedisAddr == "" {
		return cacheadapter.NewMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return cacheadapter.NewRedisStore(client), nil
}

func newTransport(cfg config.Config, secure storage.SecureStore, provider *telemetry.Provider, logger *zap.Logger) transport.Transport {
	var tracer trace.Tracer
	if provider != nil {
		tracer = provider.Tracer()
	}
	return transport.NewHTTPTransport(cfg.APIBaseURL, secure, tracer, logger,
		transport.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		transport.WithRateLimit(cfg.RateLimitRPM),
	)
}

func newRepository(t transport.Transport, secure storage.SecureStore, cache storage.CacheStore, logger *zap.Logger) repository.UserRepository {
	return repository.New(t, secure, cache, logger)
}

func initSentry(cfg config.Config) error {
	if err := telemetry.InitSentry(cfg); err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	return nil
}

func runCommand(lc fx.Lifecycle, shutdowner fx.Shutdowner, mgr *session.Manager, repo repository.UserRepository, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				exitCode := 0
				if err := execute(context.Background(), os.Args[1:], mgr, repo); err != nil {
					logger.Error("command failed", zap.Error(err))
					if _, ok := domain.AsInfraError(err); ok {
						telemetry.CaptureError(err)
					}
					fmt.Fprintln(os.Stderr, "error:", err)
					exitCode = 1
				}
				telemetry.FlushSentry()
				_ = shutdowner.Shutdown(fx.ExitCode(exitCode))
			}()
			return nil
		},
	})
}

func execute(ctx context.Context, args []string, mgr *session.Manager, repo repository.UserRepository) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: sessionctl <status|login|profile|logout>")
	}

	switch args[0] {
	case "status":
		state := mgr.Resolve(ctx)
		printState(state)
		return nil

	case "login":
		if len(args) < 3 {
			return fmt.Errorf("usage: sessionctl login <username> <password> [device-token]")
		}
		creds := domain.Credentials{
			Username:    args[1],
			Password:    args[2],
			DeviceToken: uuid.NewString(),
		}
		if len(args) > 3 {
			creds.DeviceToken = args[3]
		}
		identity, err := repo.Login(ctx, creds)
		if err != nil {
			return err
		}
		mgr.LoginSuccess(identity)
		fmt.Printf("logged in as %s <%s>\n", identity.Fullname, identity.Email)
		return nil

	case "profile":
		profile, err := repo.GetProfile(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s (@%s)\n", profile.Fullname, profile.Username)
		fmt.Printf("  email:  %s\n", profile.Email)
		fmt.Printf("  phone:  %s\n", profile.Phone)
		fmt.Printf("  points: %d\n", profile.Points)
		if profile.JoinDate != nil {
			fmt.Printf("  joined: %s\n", profile.JoinDate.Format("2006-01-02"))
		}
		return nil

	case "logout":
		if err := mgr.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printState(state session.State) {
	switch {
	case state.IsCheckingAuth:
		fmt.Println("session: checking")
	case state.IsAuthenticated && state.CurrentUser != nil:
		fmt.Printf("session: authenticated as %s <%s>\n", state.CurrentUser.Username, state.CurrentUser.Email)
	default:
		fmt.Println("session: unauthenticated")
	}
}
