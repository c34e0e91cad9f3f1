package logging

import (
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Component logger names
const (
	Session = "session"
	Persist = "persist"
	Bridge  = "bridge"
	WS      = "ws"
	HTTP    = "http"
	Catalog = "catalog"
)

// Service is attached to every production log line
const Service = "phoneshell"

// Logger is the process logger. Its level can change at runtime.
type Logger struct {
	*zap.Logger
	level zap.AtomicLevel
}

// Config defines logger configuration.
type Config struct {
	Level       string // "debug", "info", "warn", "error"
	Development bool
	OutputPaths []string
	// Sampled thins repeated entries; gesture traffic logs the same message
	// many times per second while a player drags.
	Sampled bool
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{Level: "info", OutputPaths: []string{"stdout"}, Sampled: true}
}

// DevelopmentConfig returns the console configuration used with -dev.
func DevelopmentConfig() Config {
	return Config{Level: "debug", Development: true, OutputPaths: []string{"stdout"}}
}

// New builds a logger from cfg.
func New(cfg Config) (*Logger, error) {
	lvl, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	atomic := zap.NewAtomicLevelAt(lvl)
	zc := zap.Config{
		Level:             atomic,
		Development:       cfg.Development,
		Encoding:          "json",
		EncoderConfig:     jsonEncoder(),
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: !cfg.Development,
	}
	if cfg.Development {
		zc.Encoding = "console"
		zc.EncoderConfig = consoleEncoder()
	} else {
		zc.InitialFields = map[string]any{"service": Service}
	}
	if cfg.Sampled {
		zc.Sampling = &zap.SamplingConfig{Initial: 100, Thereafter: 100}
	}

	z, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: z, level: atomic}, nil
}

// NewOrNop builds a logger, falling back to a no-op logger on bad configuration.
func NewOrNop(cfg Config) *Logger {
	l, err := New(cfg)
	if err != nil {
		return NewNop()
	}
	return l
}

// NewDefault creates a logger with DefaultConfig.
func NewDefault() *Logger {
	return NewOrNop(DefaultConfig())
}

// NewDevelopment creates a logger with DevelopmentConfig.
func NewDevelopment() *Logger {
	return NewOrNop(DevelopmentConfig())
}

// NewNop creates a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop(), level: zap.NewAtomicLevelAt(zapcore.FatalLevel + 1)}
}

// Component returns a named child logger for one subsystem.
func (l *Logger) Component(name string) *zap.Logger {
	return l.Named(name)
}

// Level reports the current minimum level.
func (l *Logger) Level() zapcore.Level {
	return l.level.Level()
}

// SetLevel changes the minimum level of this logger and every child.
func (l *Logger) SetLevel(level string) error {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	l.level.SetLevel(parsed)
	return nil
}

// LevelHandler serves the current level on GET and changes it on PUT with a
// body like {"level":"debug"}.
func (l *Logger) LevelHandler() http.Handler {
	return l.level
}

func consoleEncoder() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey, cfg.LevelKey, cfg.NameKey, cfg.CallerKey = "T", "L", "N", "C"
	cfg.MessageKey, cfg.StacktraceKey = "M", "S"
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}

func jsonEncoder() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}
