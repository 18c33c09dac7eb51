// logger/logger.go - Structured logging (zap)
package logger

import (
	"log"
	"strings"

	"go.uber.org/zap"
)

var sugar *zap.SugaredLogger

// Init builds the global logger. Mode "prod"/"production" selects the JSON
// production config, anything else the developer console config.
func Init(mode string) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}

	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	sugar = zl.Sugar()
}

// Sync flushes buffered log entries. Call on shutdown.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}

func get() *zap.SugaredLogger {
	if sugar == nil {
		Init("dev")
	}
	return sugar
}

func Debug(msg string, keysAndValues ...interface{}) { get().Debugw(msg, keysAndValues...) }
func Info(msg string, keysAndValues ...interface{})  { get().Infow(msg, keysAndValues...) }
func Warn(msg string, keysAndValues ...interface{})  { get().Warnw(msg, keysAndValues...) }
func Error(msg string, keysAndValues ...interface{}) { get().Errorw(msg, keysAndValues...) }
func Fatal(msg string, keysAndValues ...interface{}) { get().Fatalw(msg, keysAndValues...) }
