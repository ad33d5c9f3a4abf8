package logger

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the service logger: JSON lines to logs/<name>.log through
// an async buffered writer, mirrored to the console through an async hook.
func NewLogger(name string) *logrus.Logger {
	logger := logrus.New()

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})

	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(level)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	if name == "" {
		name = "moderationd"
	}
	if err := os.MkdirAll("logs", 0750); err != nil {
		log.Fatalf("failed to create logs directory: %v", err)
	}

	fileWriter, err := NewAsyncFileWriter(filepath.Join("logs", name+".log"), 32*1024)
	if err != nil {
		log.Fatalf("failed to initialize log writer: %v", err)
	}
	logger.SetOutput(fileWriter)
	logger.AddHook(NewAsyncConsoleHook(256))

	return logger
}
