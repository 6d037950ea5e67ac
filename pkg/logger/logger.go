package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetOutput(os.Stdout)
	Configure(os.Getenv("ENVIRONMENT"))
}

// Configure switches formatter and level for the given environment. Debug
// output is only emitted in development.
func Configure(environment string) {
	if environment == "development" || environment == "" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		log.SetLevel(logrus.DebugLevel)
		if environment == "" {
			log.SetLevel(logrus.InfoLevel)
		}
		return
	}
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

func Info(format string, v ...interface{}) {
	log.Infof(format, v...)
}

func Error(format string, v ...interface{}) {
	log.Errorf(format, v...)
}

func Debug(format string, v ...interface{}) {
	log.Debugf(format, v...)
}

func Warn(format string, v ...interface{}) {
	log.Warnf(format, v...)
}

// WithFields returns an entry for structured logging.
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return log.WithFields(logrus.Fields(fields))
}

// Logger exposes the underlying logrus logger.
func Logger() *logrus.Logger {
	return log
}
