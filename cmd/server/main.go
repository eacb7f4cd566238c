package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/teresa-solution/rental-management-service/internal/api"
	"github.com/teresa-solution/rental-management-service/internal/auth"
	"github.com/teresa-solution/rental-management-service/internal/config"
	"github.com/teresa-solution/rental-management-service/internal/crypto"
	"github.com/teresa-solution/rental-management-service/internal/monitoring"
	"github.com/teresa-solution/rental-management-service/internal/service"
	"github.com/teresa-solution/rental-management-service/internal/store"
)

const serviceName = "rental.v1.RentalService"

func setupLogging(cfg config.LogConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if strings.EqualFold(cfg.Format, "json") {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.DefaultContextLogger = &log.Logger
}

func main() {
	configFile := flag.String("config", os.Getenv("CONFIG_FILE"), "Optional YAML config file")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	setupLogging(cfg.Log)

	key, err := cfg.AddressKey()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load address encryption key")
	}
	cipher, err := crypto.NewCipher(key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create address cipher")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	repo, err := store.Open(ctx, cfg.Database.URL, cipher)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer repo.Close()

	tokens, err := auth.NewTokenService([]byte(cfg.Auth.Secret), cfg.TokenTTL())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create token service")
	}

	var throttle *auth.LoginThrottle
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis unreachable, login throttling fails open")
		}
		throttle = auth.NewLoginThrottle(rdb, cfg.Auth.LoginMaxFailures, cfg.Auth.LoginFailureWindow)
	} else {
		log.Info().Msg("REDIS_ADDR not set, login throttling disabled")
	}

	svc := service.New(repo, crypto.NewPasswordHasher(cfg.Auth.BcryptCost), tokens, throttle)

	monitoring.InitMetrics()

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.Options{
		Services:       svc,
		Guard:          auth.NewGuard(tokens, repo),
		Health:         repo,
		AllowedOrigins: cfg.AllowedOrigins(),
		RateLimit:      cfg.HTTP.RateLimitRPS,
		RateBurst:      cfg.HTTP.RateLimitBurst,
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("HTTP API listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to listen")
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	go func() {
		log.Info().Msgf("gRPC health server listening at %v", lis.Addr())
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to start gRPC server")
		}
	}()

	go watchDatabase(repo, healthServer)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	healthServer.Shutdown()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown error")
	}
	grpcServer.GracefulStop()
	log.Info().Msg("Server exiting")
}

// watchDatabase keeps the gRPC health status in step with the database.
func watchDatabase(repo store.Store, hs *health.Server) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	serving := true
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := repo.Ping(ctx)
		cancel()

		switch {
		case err != nil && serving:
			log.Error().Err(err).Msg("Database unreachable")
			monitoring.Alert("database unreachable", map[string]string{"service": serviceName})
			hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_NOT_SERVING)
			hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
			serving = false
		case err == nil && !serving:
			log.Info().Msg("Database reachable again")
			hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
			hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
			serving = true
		}
	}
}
