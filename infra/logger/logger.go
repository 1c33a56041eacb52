package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	corelogger "github.com/kilianp07/energyadvisor/core/logger"
)

type Logger = corelogger.Logger

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

var (
	outOnce sync.Once
	out     io.Writer
)

// New returns the process logger for component. The shared output is chosen
// from the environment on first use:
//
//	APP_ENV=dev   human readable console output
//	LOG_FILE=path JSON lines also written to a rotated file
//	LOG_LEVEL     debug, info (default), warn or error
func New(component string) Logger {
	outOnce.Do(func() { out = outputFromEnv() })
	return NewZerologLoggerWithWriter(component, out)
}

func outputFromEnv() io.Writer {
	var console io.Writer = os.Stdout
	if strings.EqualFold(os.Getenv("APP_ENV"), "dev") {
		console = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	path := os.Getenv("LOG_FILE")
	if path == "" {
		return console
	}
	return zerolog.MultiLevelWriter(console, &lumberjack.Logger{
		Filename:   path,
		MaxSize:    20,
		MaxBackups: 5,
		MaxAge:     14,
	})
}
