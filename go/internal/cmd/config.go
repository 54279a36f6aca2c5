package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/souldraw/go/internal/config"
	"github.com/mcdev12/souldraw/go/internal/dbconfig"
)

// loadSettings reads the bot and database settings and configures logging.
func loadSettings(path string) (config.Config, dbconfig.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, dbconfig.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	setupLogging(cfg.LogLevel)

	dbCfg, err := dbconfig.NewConfigFromEnv()
	if err != nil {
		return config.Config{}, dbconfig.Config{}, fmt.Errorf("failed to load database config: %w", err)
	}
	return cfg, dbCfg, nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
