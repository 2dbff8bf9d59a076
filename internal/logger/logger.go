// Package logger builds the process logger.
package logger

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// New returns a JSON logger writing to out. An unknown level falls back to
// info and is reported once the logger exists.
func New(level string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	log.Out = out

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.Level = logrus.InfoLevel
		log.WithError(err).Warn("unknown log level, using info")
		return log
	}
	log.Level = lvl
	return log
}
