package main

import (
	"context"

	bookingrepository "fitbook/internal/bookings/repository"
	"fitbook/internal/classes/handler"
	"fitbook/internal/classes/repository"
	"fitbook/internal/classes/service"
	"fitbook/internal/classes/validator"
	"fitbook/pkg/app"
	"fitbook/pkg/config"
)

const ServiceName = "classes"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Classes service")

	classService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewClassHandler(classService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.ClassService {
	classRepo := repository.NewMongoClassRepository(cfg)
	bookingRepo := bookingrepository.NewMongoBookingRepository(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()
	if err := classRepo.EnsureIndexes(ctx); err != nil {
		cfg.Log.Fatal("Failed to create class indexes", "error", err)
	}

	classService := service.NewClassService(
		classRepo,
		bookingRepo,
		validator.NewClassValidator(cfg, cfg.Log),
		cfg,
	)

	cfg.Log.Info("Class service initialized", "database", cfg.MongoDatabaseName)
	return classService
}
