package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It is a no-op until Init is called so
// packages can log from tests without setup.
var Log = zap.NewNop().Sugar()

// Init replaces the global logger. JSON output uses the zap production
// encoder; otherwise a compact console encoder writes to stderr.
func Init(jsonOutput bool, debug bool) error {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	if jsonOutput {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		cfg.OutputPaths = []string{"stderr"}
		l, err := cfg.Build()
		if err != nil {
			return err
		}
		Log = l.Sugar()
		return nil
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encCfg.EncodeCaller = nil
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(os.Stderr), level)
	Log = zap.New(core).Sugar()
	return nil
}

// Set installs l as the global logger.
func Set(l *zap.Logger) {
	Log = l.Sugar()
}

func Sync() {
	_ = Log.Sync()
}

func Infof(format string, v ...interface{}) {
	Log.Infof(format, v...)
}

func Infow(msg string, kv ...interface{}) {
	Log.Infow(msg, kv...)
}

func Debugw(msg string, kv ...interface{}) {
	Log.Debugw(msg, kv...)
}

func Warnw(msg string, kv ...interface{}) {
	Log.Warnw(msg, kv...)
}

func Errorw(msg string, kv ...interface{}) {
	Log.Errorw(msg, kv...)
}
