package logger

import (
  "fmt"
  "os"
  "strings"

  "go.uber.org/zap"
  "go.uber.org/zap/zapcore"
)

// Logger is a structured key/value logger. Every call takes a message followed by
// alternating keys and values, e.g. log.Info("OTP sent", "phone", phone).
type Logger struct {
  sugar *zap.SugaredLogger
}

// New builds a logger for the given mode. "production" writes JSON with ISO8601
// timestamps; anything else writes colored console output at debug level.
func New(mode string) (*Logger, error) {
  var cfg zap.Config
  switch strings.ToLower(strings.TrimSpace(mode)) {
  case "production", "prod":
    cfg = zap.NewProductionConfig()
    cfg.EncoderConfig.TimeKey = "timestamp"
    cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
    cfg.DisableStacktrace = true
  default:
    cfg = zap.NewDevelopmentConfig()
    cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
  }
  if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
    cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
  }
  cfg.OutputPaths = []string{"stdout"}
  cfg.ErrorOutputPaths = []string{"stderr"}

  base, err := cfg.Build(zap.AddCaller(), zap.AddCallerSkip(1))
  if err != nil {
    return nil, fmt.Errorf("failed to build zap logger: %w", err)
  }
  return &Logger{sugar: base.Sugar()}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
  return &Logger{sugar: zap.NewNop().Sugar()}
}

func (l *Logger) With(keysAndValues ...interface{}) *Logger {
  return &Logger{sugar: l.sugar.With(keysAndValues...)}
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
  l.sugar.Debugw(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
  l.sugar.Infow(msg, keysAndValues...)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
  l.sugar.Warnw(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
  l.sugar.Errorw(msg, keysAndValues...)
}

// Sync flushes buffered entries. Errors from syncing stdout on some platforms are ignored.
func (l *Logger) Sync() {
  _ = l.sugar.Sync()
}

func parseLevel(level string) zapcore.Level {
  switch strings.ToLower(level) {
  case "debug":
    return zapcore.DebugLevel
  case "info":
    return zapcore.InfoLevel
  case "warn", "warning":
    return zapcore.WarnLevel
  case "error":
    return zapcore.ErrorLevel
  default:
    return zapcore.InfoLevel
  }
}
