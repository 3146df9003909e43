package main

import (
	"log"
	"os"

	"homeinsight-listings/pkg/config"
	"homeinsight-listings/pkg/logger"

	"github.com/joho/godotenv"
)

// LoadConfiguration reads .env, the YAML config and sets up the global
// logger at the configured level.
func LoadConfiguration() (*config.Config, *logger.Logger) {
	loadEnvironment()
	cfg, err := loadConfigFile()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.InitLogger(os.Stdout, cfg.Log.Level)
	return cfg, logger.GlobalLogger
}

// load environment variables from .env file
func loadEnvironment() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, relying on system environment variables: %v", err)
	}
}

func loadConfigFile() (*config.Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	return config.LoadConfig(configPath)
}
