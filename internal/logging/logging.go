// Package logging sets up the logrus logger used for everything that is not
// the line-oriented replay output.
package logging

import (
	"io"

	log "github.com/sirupsen/logrus"
)

const DefaultLevel = log.WarnLevel

// New returns a logger writing plain text to w. An unparsable level falls
// back to DefaultLevel and is reported at warn level.
func New(w io.Writer, level string) *log.Logger {
	logger := log.New()
	logger.SetFormatter(&log.TextFormatter{
		ForceColors:      false,
		DisableColors:    true,
		DisableTimestamp: true,
	})
	logger.SetOutput(w)

	ll, err := log.ParseLevel(level)
	if err != nil {
		ll = DefaultLevel
		logger.SetLevel(ll)
		logger.WithField("level", level).Warn("Unknown log level, using default")
		return logger
	}
	logger.SetLevel(ll)
	logger.WithFields(log.Fields{
		"level": ll,
	}).Debug("Logger has been initialized")
	return logger
}
