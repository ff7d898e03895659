package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/yshino/fleamarket-backend/internal/config"
	"github.com/yshino/fleamarket-backend/internal/db"
	"github.com/yshino/fleamarket-backend/internal/server"
	"github.com/yshino/fleamarket-backend/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment as is")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	var images storage.ImageStore
	if cfg.StorageBucket != "" {
		images, err = storage.NewGCSStore(context.Background(), cfg.StorageBucket)
	} else {
		images, err = storage.NewLocalStore(cfg.UploadDir)
	}
	if err != nil {
		log.Fatalf("failed to set up image store: %v", err)
	}

	srv := server.New(cfg, conn, images)
	log.Fatal(srv.Start(":" + cfg.Port))
}
