package main

import (
	"context"
	"flag"

	"github.com/redis/go-redis/v9"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/piparkaq/hackboard/internal/app"
	"github.com/piparkaq/hackboard/internal/bot"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	cfg, err := bot.ReadConfig(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}

	contestStore, err := app.NewStore(cfg.Database.DSN, cfg.Database.MigrationsDir)
	if err != nil {
		logger.Error.Fatalf("Failed to create store: %v", err)
	}
	defer contestStore.Close()

	var tokens *app.TokenManager
	if cfg.Auth.Enabled {
		opt, err := redis.ParseURL(cfg.Auth.RedisURL)
		if err != nil {
			logger.Error.Fatalf("Failed to parse redis URL: %v", err)
		}
		client := redis.NewClient(opt)
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Error.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()

		tokens = app.NewTokenManager(client)
	}

	b, err := bot.New(cfg, contestStore, tokens)
	if err != nil {
		logger.Error.Fatalf("Failed to create bot: %v", err)
	}

	logger.Info.Println("Bot initialized successfully")
	if err := b.Start(); err != nil {
		logger.Error.Fatalf("Bot error: %v", err)
	}
}
