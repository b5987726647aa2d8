package main

import (
	"context"

	"fitbook/internal/bookings/handler"
	"fitbook/internal/bookings/repository"
	"fitbook/internal/bookings/service"
	"fitbook/internal/bookings/validator"
	classrepository "fitbook/internal/classes/repository"
	"fitbook/pkg/app"
	"fitbook/pkg/config"
	"fitbook/pkg/events"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Bookings service")

	serverApp := app.NewApplication(cfg)
	bookingService := initServices(cfg, serverApp)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, serverApp *app.Application) service.BookingService {
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	classRepo := classrepository.NewMongoClassRepository(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()
	if err := bookingRepo.EnsureIndexes(ctx); err != nil {
		cfg.Log.Fatal("Failed to create booking indexes", "error", err)
	}

	var publisher *events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		var err error
		publisher, err = events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaBookingEventTopic, ServiceName, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
		}
		serverApp.OnShutdown(func() {
			if err := publisher.Close(); err != nil {
				cfg.Log.Error("Failed to close event publisher", "error", err)
			}
		})
	}

	bookingService := service.NewBookingService(
		bookingRepo,
		classRepo,
		validator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName, "events_enabled", publisher != nil)
	return bookingService
}
