package commands

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

// Logger implements figma.Logger on top of zerolog.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger writes human-readable lines to w. Debug lines are dropped unless
// verbose is set.
func NewLogger(w io.Writer, verbose bool) *Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	zl := zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    noColor(w),
	}).Level(level).With().Timestamp().Logger()

	return &Logger{logger: zl}
}

func noColor(w io.Writer) bool {
	file, ok := w.(*os.File)

	return !ok || !isTerminal(file)
}

// Debug implements figma.Logger.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug().Fields(fields).Msg(msg)
}

// Info implements figma.Logger.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info().Fields(fields).Msg(msg)
}

// Warn implements figma.Logger.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn().Fields(fields).Msg(msg)
}

// Error implements figma.Logger.
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error().Fields(fields).Msg(msg)
}

var _ figma.Logger = (*Logger)(nil)
