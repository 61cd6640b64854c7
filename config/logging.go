package config

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// SetupLogging configures the process-wide logrus logger.
func SetupLogging(cfg Config) {
	log.SetOutput(os.Stdout)

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
