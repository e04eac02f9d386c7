package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"deskbook/backend/internal/auth"
	"deskbook/backend/internal/config"
	"deskbook/backend/internal/events"
	"deskbook/backend/internal/seed"
	"deskbook/backend/internal/service/accounts"
	"deskbook/backend/internal/service/bookings"
	"deskbook/backend/internal/service/seats"
	"deskbook/backend/internal/store/postgres"
	grpcTransport "deskbook/backend/internal/transport/grpc"
	"deskbook/backend/internal/transport/httpapi"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "deskbook-server"),
	)
	slog.SetDefault(log)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("dotenv load failed", slog.Any("err", err))
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "deskbook-server"),
	)
	slog.SetDefault(log)

	log.Info("starting",
		slog.String("http_addr", cfg.HTTPAddr),
		slog.String("grpc_addr", cfg.GRPCAddr),
		slog.String("log_level", cfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, cfg); err != nil {
		log.Error("server stopped with error", slog.Any("err", err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger, cfg config.Config) error {
	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}()

	userRepo := postgres.NewUserRepo(db)
	seatRepo := postgres.NewSeatRepo(db)
	bookingRepo := postgres.NewBookingRepo(db)

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.EventsAMQPURL != "" {
		publisher = events.NewAMQPPublisher(cfg.EventsAMQPURL, cfg.EventsQueue)
		log.Info("publishing booking events", slog.String("queue", cfg.EventsQueue))
	}

	accountSvc := accounts.NewService(userRepo, auth.NewHasher(cfg.BcryptCost), issuer)
	seatSvc := seats.NewService(seatRepo)
	bookingSvc := bookings.NewService(bookingRepo, publisher, log)

	if cfg.SeedFile != "" {
		f, err := seed.Load(cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("seed %s: %w", cfg.SeedFile, err)
		}
		if _, err := seed.NewSeeder(userRepo, accountSvc, seatRepo, log).Apply(ctx, f); err != nil {
			return fmt.Errorf("seed %s: %w", cfg.SeedFile, err)
		}
	}

	e := httpapi.NewServer(bookingSvc, seatSvc, accountSvc, issuer, log, httpapi.Options{
		RequestTimeout:     cfg.HTTPRequestTimeout,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	ops := grpcTransport.NewOpsServer(cfg.GRPCRequestTimeout, log)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr))
		return fmt.Errorf("grpc listen: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		if err := e.Start(cfg.HTTPAddr); !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		if err := ops.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	ops.SetServing(true)
	log.Info("servers started", slog.String("http_addr", cfg.HTTPAddr), slog.String("grpc_addr", cfg.GRPCAddr))

	serveErr := waitForShutdown(ctx, log, errCh)

	ops.SetServing(false)
	shutdownHTTP(log, e, cfg.ShutdownTimeout)
	ops.Shutdown(cfg.ShutdownTimeout)
	return serveErr
}

// waitForShutdown blocks until a signal cancels ctx or a server fails. It
// returns the server error, or nil for a signal.
func waitForShutdown(ctx context.Context, log *slog.Logger, errCh <-chan error) error {
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		return nil
	case err := <-errCh:
		if err == nil {
			err = errors.New("server stopped unexpectedly")
		}
		return err
	}
}

func shutdownHTTP(log *slog.Logger, e *echo.Echo, timeout time.Duration) {
	log.Info("shutting down http server", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Warn("http graceful shutdown failed; closing", slog.Any("err", err))
		_ = e.Close()
		return
	}
	log.Info("http server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
