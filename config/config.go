package config

import (
	"github.com/joho/godotenv"

	"github.com/joy095/boardroom/logger"
)

// LoadEnv loads variables from a local .env file if one exists. In deployed
// environments the variables come from the process environment instead.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.InfoLogger.Info("No .env file found, using process environment")
		return
	}
	logger.InfoLogger.Info("Environment variables loaded from .env")
}
