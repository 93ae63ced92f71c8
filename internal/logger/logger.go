package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

func New(environment string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if environment == "production" {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	writer := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(writer).With().Timestamp().Logger().Level(zerolog.DebugLevel)
}
