package main

import (
	assetshandler "sarpras/internal/assets/handler"
	assetsrepository "sarpras/internal/assets/repository"
	assetsservice "sarpras/internal/assets/service"
	assetsvalidator "sarpras/internal/assets/validator"
	drivershandler "sarpras/internal/drivers/handler"
	driversrepository "sarpras/internal/drivers/repository"
	driversservice "sarpras/internal/drivers/service"
	driversvalidator "sarpras/internal/drivers/validator"
	"sarpras/internal/reservations/availability"
	"sarpras/internal/reservations/events"
	"sarpras/internal/reservations/handler"
	"sarpras/internal/reservations/lock"
	"sarpras/internal/reservations/repository"
	"sarpras/internal/reservations/service"
	"sarpras/internal/reservations/validator"
	"sarpras/pkg/app"
	"sarpras/pkg/config"
	kafka_config "sarpras/pkg/kafka/config"

	"github.com/joho/godotenv"
)

const ServiceName = "reservations"

func main() {
	envErr := godotenv.Load()
	cfg := config.Load(ServiceName)
	if envErr != nil {
		cfg.Log.Debug("No .env file loaded", "error", envErr)
	}

	cfg.SetMongo()
	if cfg.UsesRedis() {
		cfg.SetRedis()
	}

	cfg.Log.Info("Starting Reservations service")
	serverApp := app.NewApplication(cfg)

	publisher := initPublisher(cfg)
	serverApp.OnShutdown("reservation-events", publisher)

	assetRepo := assetsrepository.NewMongoAssetRepository(cfg)
	driverRepo := driversrepository.NewMongoDriverRepository(cfg)
	reservationRepo := repository.NewMongoReservationRepository(cfg)

	reservationService := service.NewReservationService(
		reservationRepo,
		assetRepo,
		driverRepo,
		initLocks(cfg),
		publisher,
		validator.NewReservationValidator(cfg.Log),
		cfg,
	)
	assetService := assetsservice.NewAssetService(
		assetRepo,
		availability.NewChecker(reservationRepo, assetRepo),
		assetsvalidator.NewAssetValidator(cfg.Log),
		cfg,
	)
	driverService := driversservice.NewDriverService(
		driverRepo,
		driversvalidator.NewDriverValidator(cfg.Log),
		cfg,
	)
	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	serverApp.SetApp(
		handler.NewReservationHandler(reservationService, cfg.Log),
		assetshandler.NewAssetHandler(assetService, cfg.Log),
		drivershandler.NewDriverHandler(driverService, cfg.Log),
	)
	serverApp.Run()
}

func initLocks(cfg *config.Config) *lock.Manager {
	var backend lock.Backend
	switch cfg.LockBackend {
	case config.LockBackendRedis:
		backend = lock.NewRedisBackend(cfg.Client.Redis)
	default:
		backend = lock.NewMongoBackend(cfg)
	}

	cfg.Log.Info("Reservation lock backend configured", "backend", cfg.LockBackend)
	return lock.NewManager(backend, lock.Options{
		TTL:           cfg.LockTTL,
		WaitTimeout:   cfg.LockWaitTimeout,
		RetryInterval: cfg.LockRetryInterval,
	}, cfg.Log)
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, reservation events will not be published")
		return events.NewNoopPublisher()
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	publisher, err := events.NewKafkaPublisher(kafkaCfg, cfg.ReservationEventsTopic, cfg.ReservationEventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create reservation event publisher", "error", err)
	}
	return publisher
}
