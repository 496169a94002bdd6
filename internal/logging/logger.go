package logging

import (
	"log"

	"go.uber.org/zap"
)

// New builds the process logger. Development mode gets the human-readable
// encoder, everything else the production JSON one.
func New(development bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if development {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("initialize logger: %v", err)
	}
	return logger
}
