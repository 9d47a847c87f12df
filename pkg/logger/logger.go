package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus so that services receive it as an explicit
// dependency instead of reaching for a package-level instance.
type Logger struct {
	*logrus.Logger
}

func New(level string) *Logger {
	l := logrus.New()

	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)

	return &Logger{l}
}

// NewNop returns a logger that discards everything. Handy in tests.
func NewNop() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return &Logger{l}
}
