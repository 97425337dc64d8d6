package config

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	logg *logrus.Logger
)

func GetLogger() *logrus.Logger {
	return logg
}

func init() {
	logg = logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{})
	logg.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if err != nil {
		level = logrus.InfoLevel
	}
	logg.SetLevel(level)
}

func logFields(moduleName string, funcName string, context string, data any) logrus.Fields {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	return fields
}

func LogError(logger *logrus.Logger, moduleName string, funcName string, context string, data any, err error) {
	logger.WithFields(logFields(moduleName, funcName, context, data)).Error(err.Error())
}

// LogWarn records a recovered failure: a fallback was used or a value was corrected.
func LogWarn(logger *logrus.Logger, moduleName string, funcName string, context string, data any, err error) {
	msg := context
	if err != nil {
		msg = err.Error()
	}
	logger.WithFields(logFields(moduleName, funcName, context, data)).Warn(msg)
}
