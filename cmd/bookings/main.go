package main

import (
	authhandler "barberbook/internal/auth/handler"
	authrepository "barberbook/internal/auth/repository"
	authservice "barberbook/internal/auth/service"
	authvalidator "barberbook/internal/auth/validator"
	"barberbook/internal/bookings/events"
	"barberbook/internal/bookings/handler"
	"barberbook/internal/bookings/repository"
	"barberbook/internal/bookings/service"
	"barberbook/internal/bookings/validator"
	"barberbook/internal/dashboard"
	dashboardhandler "barberbook/internal/dashboard/handler"
	"barberbook/pkg/app"
	"barberbook/pkg/auth"
	"barberbook/pkg/config"
	"barberbook/pkg/kafka"
	kafkamiddleware "barberbook/pkg/kafka/middleware"
	"barberbook/pkg/middleware"

	"github.com/shopspring/decimal"
)

const ServiceName = "bookings"

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	cfg := config.Load(ServiceName)
	cfg.RequireJWTSecret()
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication(cfg)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authService := initAuthService(cfg, tokens)
	authenticator := middleware.NewAuthenticator(tokens, authService, cfg.Log)

	bookingService := initBookingService(cfg, serverApp)
	dashboardService := dashboard.NewService(bookingService, cfg.Log)

	serverApp.SetApp(
		handler.NewBookingHandler(bookingService, authenticator, cfg.Log),
		authhandler.NewAuthHandler(authService, authenticator, cfg.Log),
		dashboardhandler.NewDashboardHandler(dashboardService, authenticator, cfg.Log),
	)
	serverApp.Run()
}

func initBookingService(cfg *config.Config, serverApp *app.Application) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	bookingService := service.NewBookingService(
		bookingRepo,
		bookingValidator,
		initPublisher(cfg, serverApp),
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}

func initPublisher(cfg *config.Config, serverApp *app.Application) events.Publisher {
	if !cfg.Kafka.Enabled() {
		cfg.Log.Info("KAFKA_BROKERS not set, booking events disabled")
		return events.NopPublisher{}
	}

	producer, err := kafka.NewProducer(cfg.Kafka, cfg.Kafka.BookingsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if cfg.Kafka.EnableMiddleware {
		producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
	}
	serverApp.OnShutdown(producer)

	cfg.Log.Info("Booking events enabled",
		"brokers", cfg.Kafka.Brokers,
		"topic", cfg.Kafka.BookingsTopic,
	)
	return events.NewKafkaPublisher(producer)
}

func initAuthService(cfg *config.Config, tokens *auth.TokenIssuer) authservice.AuthService {
	userValidator := authvalidator.NewUserValidator(cfg.Log)
	userRepo := authrepository.NewMongoUserRepository(cfg)
	return authservice.NewAuthService(userRepo, userValidator, tokens, cfg)
}
