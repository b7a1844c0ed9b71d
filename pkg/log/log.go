package log

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var globalLogger atomic.Value

const (
	DurationMSKey  = "durationMs"
	AssetIDKey     = "assetId"
	AttributeIDKey = "attributeId"
	ResourceIDKey  = "resourceId"
	ErrorKey       = "error"
)

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

func DurationToMilliseconds(duration time.Duration) float32 {
	return float32(duration.Nanoseconds()/1000) / float32(1000)
}

// Logger is the logging facade used by all components.
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	// With adds key-value pairs to the logging context.
	With(args ...interface{}) Logger
	Check(lvl zapcore.Level) bool
}

type wrapSuggarLogger struct {
	*zap.SugaredLogger
	level zap.AtomicLevel
}

func (l *wrapSuggarLogger) With(args ...interface{}) Logger {
	return &wrapSuggarLogger{SugaredLogger: l.SugaredLogger.With(args...), level: l.level}
}

func (l *wrapSuggarLogger) Check(lvl zapcore.Level) bool {
	return l.level.Enabled(lvl)
}

// Config configuration for setup logging.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level zapcore.Level `yaml:"level" json:"level" description:"log level"`
	// Encoding is either json or console.
	Encoding string `yaml:"encoding" json:"encoding" description:"json or console"`
	// Stacktrace enables stacktraces for errors.
	Stacktrace bool `yaml:"stacktrace" json:"stacktrace"`
}

func MakeDefaultConfig() Config {
	return Config{
		Level:    zapcore.InfoLevel,
		Encoding: "json",
	}
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Encoding) {
	case "":
		c.Encoding = "json"
	case "json", "console":
	default:
		return fmt.Errorf("encoding('%v') - only json or console are supported", c.Encoding)
	}
	if c.Level < zapcore.DebugLevel || c.Level > zapcore.FatalLevel {
		return fmt.Errorf("level('%v')", c.Level)
	}
	return nil
}

func init() {
	Set(NewLogger(MakeDefaultConfig()))
}

// NewLogger creates logger. An invalid configuration falls back to zap production defaults.
func NewLogger(config Config) Logger {
	var cfg zap.Config
	if config.Encoding == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(config.Level)
	cfg.DisableStacktrace = !config.Stacktrace
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	return &wrapSuggarLogger{SugaredLogger: logger.Sugar(), level: cfg.Level}
}

// NewNopLogger returns a logger which discards all records.
func NewNopLogger() Logger {
	return &wrapSuggarLogger{SugaredLogger: zap.NewNop().Sugar(), level: zap.NewAtomicLevelAt(zapcore.FatalLevel)}
}

// Setup changes log configuration for the application.
// Call ASAP in main after parse args/env.
func Setup(config Config) {
	Set(NewLogger(config))
}

// Set logger for global log fuctions
func Set(logger Logger) {
	globalLogger.Store(logger)
}

func Get() Logger {
	return globalLogger.Load().(Logger)
}

// Debug uses fmt.Sprint to construct and log a message.
func Debug(args ...interface{}) {
	Get().Debug(args...)
}

// Info uses fmt.Sprint to construct and log a message.
func Info(args ...interface{}) {
	Get().Info(args...)
}

// Warn uses fmt.Sprint to construct and log a message.
func Warn(args ...interface{}) {
	Get().Warn(args...)
}

// Error uses fmt.Sprint to construct and log a message.
func Error(args ...interface{}) {
	Get().Error(args...)
}

// Debugf uses fmt.Sprintf to log a templated message.
func Debugf(template string, args ...interface{}) {
	Get().Debugf(template, args...)
}

// Infof uses fmt.Sprintf to log a templated message.
func Infof(template string, args ...interface{}) {
	Get().Infof(template, args...)
}

// Warnf uses fmt.Sprintf to log a templated message.
func Warnf(template string, args ...interface{}) {
	Get().Warnf(template, args...)
}

// Errorf uses fmt.Sprintf to log a templated message.
func Errorf(template string, args ...interface{}) {
	Get().Errorf(template, args...)
}

// Fatalf logs a templated message at error level and exits the process.
func Fatalf(template string, args ...interface{}) {
	Get().Errorf(template, args...)
	_ = zap.L().Sync()
	os.Exit(1)
}
