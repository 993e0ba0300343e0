package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/Fayeur9/money-manager/internal/app"
)

func init() {
	level := os.Getenv("LOG_LEVEL")
	if level != "" {
		logrusLevel, err := log.ParseLevel(level)
		if err != nil {
			log.Warnf("invalid LOG_LEVEL %q, falling back to info", level)
		} else {
			log.SetLevel(logrusLevel)
		}
	}
}

func main() {
	application, err := app.NewApplication()
	if err != nil {
		log.Fatalf("failed to start application: %v", err)
	}
	if err := application.Run(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
