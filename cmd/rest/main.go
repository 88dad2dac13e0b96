package main

import (
	"context"
	"log"

	"emotion-ai-be/internal/bootstrap"
	"emotion-ai-be/internal/config"
	"emotion-ai-be/internal/server"
	"emotion-ai-be/internal/tracer"
	"emotion-ai-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	var gormDB *gorm.DB
	if cfg.Database.Enabled && cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	} else {
		log.Println("[INFO] Running without database, read endpoints serve mock data")
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	if container.ConsumerService != nil {
		go func() {
			log.Println("Background: Starting detection persistence consumer...")
			if err := container.ConsumerService.Consume(context.Background()); err != nil {
				log.Printf("Background Consumer Error: %v", err)
			}
		}()
	}

	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
