package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts a zerolog.Logger to Logger. Every entry carries the
// component field and a timestamp.
type ZerologLogger struct {
	z zerolog.Logger
}

func NewZerologLoggerWithWriter(component string, w io.Writer) *ZerologLogger {
	z := zerolog.New(w).
		Level(envLevel()).
		With().
		Timestamp().
		Str("component", component).
		Logger()
	return &ZerologLogger{z: z}
}

func envLevel() zerolog.Level {
	switch lvl, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL"))); {
	case err != nil, lvl == zerolog.NoLevel:
		return zerolog.InfoLevel
	default:
		return lvl
	}
}

// With returns a child logger that adds fields to each entry, e.g. a run id.
func (l *ZerologLogger) With(fields map[string]any) *ZerologLogger {
	return &ZerologLogger{z: l.z.With().Fields(fields).Logger()}
}

func (l *ZerologLogger) Debugf(format string, args ...any) { l.z.Debug().Msgf(format, args...) }

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	l.z.Debug().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any)  { l.z.Info().Msgf(format, args...) }
func (l *ZerologLogger) Warnf(format string, args ...any)  { l.z.Warn().Msgf(format, args...) }
func (l *ZerologLogger) Errorf(format string, args ...any) { l.z.Error().Msgf(format, args...) }
