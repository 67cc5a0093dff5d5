package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

func SetupLogging() *logrus.Logger {
	return SetupLoggingWithLevel("info")
}

// SetupLoggingWithLevel falls back to info when level does not parse.
func SetupLoggingWithLevel(level string) *logrus.Logger {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}

	logger := logrus.Logger{
		Formatter: &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyLevel: "loglevel",
			},
		},
		Out:   os.Stdout,
		Level: parsed,
		Hooks: make(logrus.LevelHooks),
	}

	return &logger
}
