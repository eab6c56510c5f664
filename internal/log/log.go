package log

import (
	"context"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps a zap logger with context-aware hooks.
type Logger struct {
	zap   *zap.Logger
	level zap.AtomicLevel

	mu    sync.RWMutex
	hooks []Hook
}

// New builds a Logger from config. Invalid levels fall back to info,
// invalid formats fall back to json.
func New(cfg Config) *Logger {
	level := zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if strings.EqualFold(cfg.Format, "console") {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	sinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	if cfg.File.Enabled && cfg.File.Path != "" {
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		}))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)

	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))
	if cfg.Name != "" {
		zl = zl.With(zap.String("logger", cfg.Name))
	}

	logger := &Logger{zap: zl, level: level}
	logger.AddHook(HookFunc(traceFields))

	return logger
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info", "":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// AddHook registers a context hook applied to every entry.
func (l *Logger) AddHook(hook Hook) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.hooks = append(l.hooks, hook)
}

func (l *Logger) applyHooks(ctx context.Context, msg string, fields []Field) []Field {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, hook := range l.hooks {
		fields = hook.Apply(ctx, msg, fields...)
	}

	return fields
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...Field) {
	if !l.level.Enabled(zapcore.DebugLevel) {
		return
	}

	l.zap.Debug(msg, l.applyHooks(ctx, msg, fields)...)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...Field) {
	l.zap.Info(msg, l.applyHooks(ctx, msg, fields)...)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.zap.Warn(msg, l.applyHooks(ctx, msg, fields)...)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...Field) {
	l.zap.Error(msg, l.applyHooks(ctx, msg, fields)...)
}

func (l *Logger) DebugEnabled(ctx context.Context) bool {
	return l.level.Enabled(zapcore.DebugLevel)
}

func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// global is the process-wide logger used by the package-level helpers.
var (
	globalMu sync.RWMutex
	global   = New(Config{Level: "info"})
)

// SetLogger replaces the process-wide logger.
func SetLogger(logger *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()

	global = logger
}

// GetLogger returns the process-wide logger.
func GetLogger() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()

	return global
}

func Debug(ctx context.Context, msg string, fields ...Field) {
	GetLogger().Debug(ctx, msg, fields...)
}

func Info(ctx context.Context, msg string, fields ...Field) {
	GetLogger().Info(ctx, msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...Field) {
	GetLogger().Warn(ctx, msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...Field) {
	GetLogger().Error(ctx, msg, fields...)
}

func DebugEnabled(ctx context.Context) bool {
	return GetLogger().DebugEnabled(ctx)
}
