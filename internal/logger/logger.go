package logger

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Initialize configures the process-wide logrus logger.
func Initialize(level, format string) {
	configure(log.StandardLogger(), os.Stdout, level, format)
}

// New returns an independent logger, mainly for tests and libraries that
// want their own output.
func New(w io.Writer, level, format string) *log.Logger {
	l := log.New()
	configure(l, w, level, format)
	return l
}

func configure(l *log.Logger, w io.Writer, level, format string) {
	l.SetOutput(w)
	l.SetLevel(parseLevel(level))
	if strings.EqualFold(format, "json") {
		l.SetFormatter(&log.JSONFormatter{})
	} else {
		l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func parseLevel(level string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
