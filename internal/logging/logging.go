package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// thin wrapper so packages depend on one logger type
type Logger struct {
	*zap.SugaredLogger
}

// console logger; verbose switches to debug level with caller info
func NewLogger(verbose bool) *Logger {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.DisableCaller = true
		cfg.DisableStacktrace = true
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.OutputPaths = []string{"stderr"}

	base, err := cfg.Build()
	if err != nil {
		base = zap.NewNop()
	}
	return &Logger{SugaredLogger: base.Sugar()}
}

// wraps an existing zap core, mostly for tests using zaptest/observer
func New(core zapcore.Core) *Logger {
	return &Logger{SugaredLogger: zap.New(core).Sugar()}
}

// discards everything
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// nil-safe accessor for optional loggers held by library types
func OrNop(l *Logger) *Logger {
	if l == nil {
		return Nop()
	}
	return l
}
