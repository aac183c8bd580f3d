package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	global *zap.Logger
	once   sync.Once
)

// Options controls where and how much the engine logs.
type Options struct {
	Level    string // debug, info, warn, error
	FilePath string // rotated JSON log file; empty means console only
	Console  bool
}

// Init builds the global logger. Safe to call more than once; only the
// first call wins.
func Init(opts Options) {
	once.Do(func() {
		global = build(opts)
	})
}

// L returns the global logger, initializing a console logger if Init was
// never called.
func L() *zap.Logger {
	if global == nil {
		Init(Options{Level: "info", Console: true})
	}
	return global
}

func Sync() {
	if global != nil {
		_ = global.Sync()
	}
}

func Info(msg string, fields ...zap.Field)  { L().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { L().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }
func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { L().Fatal(msg, fields...) }

func build(opts Options) *zap.Logger {
	level := zapcore.InfoLevel
	if err := level.Set(opts.Level); err != nil {
		level = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder

	var cores []zapcore.Core
	if opts.Console {
		consoleEnc := zapcore.NewConsoleEncoder(encCfg)
		cores = append(cores, zapcore.NewCore(consoleEnc, zapcore.AddSync(os.Stdout), level))
	}
	if opts.FilePath != "" {
		rotated := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    20, // MB
			MaxBackups: 10,
			MaxAge:     28, // days
			Compress:   true,
		}
		jsonEnc := zapcore.NewJSONEncoder(encCfg)
		cores = append(cores, zapcore.NewCore(jsonEnc, zapcore.AddSync(rotated), level))
	}
	if len(cores) == 0 {
		return zap.NewNop()
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}
