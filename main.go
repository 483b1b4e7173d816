package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-seating/internal/auth"
	"ms-seating/internal/config"
	eventdb "ms-seating/internal/events/db"
	eventservice "ms-seating/internal/events/service"
	"ms-seating/internal/events/event_api"
	"ms-seating/internal/kafka"
	"ms-seating/internal/logger"
	"ms-seating/internal/pricing"
	seatdb "ms-seating/internal/seats/db"
	seatredis "ms-seating/internal/seats/redis"
	"ms-seating/internal/seats/seat_api"
	"ms-seating/internal/seats/service"
	"ms-seating/internal/tickets/qr"
)

func connectPostgres(cfg *config.Config, log *logger.Logger) *bun.DB {
	if cfg.Database.DSN == "" {
		log.Fatal("CONFIG", "POSTGRES_DSN not set")
	}

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Connecting to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err == nil {
			err = sqldb.Ping()
		}
		if err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("PostgreSQL not ready: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func connectRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("REDIS", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))
	return client
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting seat inventory service")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	ctx := context.Background()

	bunDB := connectPostgres(cfg, log)
	defer bunDB.Close()

	store := &seatdb.DB{Bun: bunDB}
	eventStore := &eventdb.DB{Bun: bunDB}

	var kafkaProducer *kafka.Producer
	var publisher service.KafkaPublisher
	if cfg.Kafka.Enabled {
		kafkaProducer = kafka.NewProducer(cfg.Kafka.Brokers)
		defer kafkaProducer.Close()
		publisher = kafkaProducer
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{service.SeatStatusTopic}); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		log.Info("KAFKA", "Kafka producer initialized")
	} else {
		log.Warn("KAFKA", "KAFKA_ADDR not set, seat status events disabled")
	}

	var holds *seatredis.Holds
	var holdManager service.HoldManager
	if cfg.Redis.Enabled {
		redisClient := connectRedis(ctx, cfg, log)
		defer redisClient.Close()

		holds = seatredis.NewHolds(redisClient, log, cfg.Reservation.HoldTTL)
		holdManager = holds
		if err := holds.EnableExpiryNotifications(ctx); err != nil {
			log.Warn("REDIS", fmt.Sprintf("Failed to enable keyspace notifications: %v", err))
		}
	} else {
		log.Warn("REDIS", "REDIS_ADDR not set, reservations will not expire")
	}

	seatService := service.NewSeatService(store, holdManager, publisher, log)
	eventService := eventservice.NewEventService(eventStore)
	assigner := pricing.NewAssigner(store)

	if holds != nil {
		holds.ListenExpirations(ctx, seatService)
	}

	seatHandler := &seat_api.Handler{
		SeatService: seatService,
		Pricing:     assigner,
		QR:          qr.NewGenerator(os.Getenv("QR_SECRET_KEY")),
		Logger:      log,
	}
	eventHandler := &event_api.Handler{
		EventService: eventService,
		Logger:       log,
	}

	authed := auth.Middleware(cfg.Auth.OIDCIssuer)
	adminOnly := auth.RequireAdmin(cfg.Auth.AdminRole)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.ListEvents)
		r.Get("/{eventID}", eventHandler.GetEvent)

		r.Group(func(r chi.Router) {
			r.Use(authed)

			r.Get("/{eventID}/availability", seatHandler.Availability)
			r.Put("/{eventID}/seats/{row}/{seatNumber}/reserve", seatHandler.ReserveSeat)
			r.Put("/{eventID}/seats/{row}/{seatNumber}/unreserve", seatHandler.UnreserveSeat)
			r.Post("/{eventID}/purchase", seatHandler.Purchase)
			r.Get("/{eventID}/tickets/{barcode}/qr", seatHandler.TicketQR)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)

				r.Post("/", eventHandler.CreateEvent)
				r.Post("/{eventID}/seats/bulk-create", seatHandler.BulkCreateSeats)
				r.Post("/{eventID}/prices", seatHandler.AssignPrices)
				r.Get("/{eventID}/sales-summary", seatHandler.SalesSummary)
			})
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("Listening on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("Server failed: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("SERVER", "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("SERVER", fmt.Sprintf("Graceful shutdown failed: %v", err))
	}
}
