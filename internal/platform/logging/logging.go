// Package logging builds the structured diagnostic logger used by the
// arena processes.
package logging

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the level, encoding and sinks of a logger.
type Config struct {
	Level    string   `env:"FUSION_ARENA_LOG_LEVEL" envDefault:"info"`
	Encoding string   `env:"FUSION_ARENA_LOG_ENCODING" envDefault:"console"`
	Outputs  []string `env:"FUSION_ARENA_LOG_OUTPUTS" envDefault:"stderr" envSeparator:","`
}

var encoderConfig = zapcore.EncoderConfig{
	TimeKey:        "ts",
	LevelKey:       "level",
	NameKey:        "logger",
	CallerKey:      "caller",
	MessageKey:     "msg",
	StacktraceKey:  "stacktrace",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.LowercaseLevelEncoder,
	EncodeTime:     zapcore.ISO8601TimeEncoder,
	EncodeDuration: zapcore.SecondsDurationEncoder,
	EncodeCaller:   zapcore.ShortCallerEncoder,
}

func (cfg Config) parse() (zap.AtomicLevel, string, error) {
	level, err := zap.ParseAtomicLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		return zap.AtomicLevel{}, "", fmt.Errorf("log level: %w", err)
	}
	encoding := strings.TrimSpace(cfg.Encoding)
	switch encoding {
	case "":
		encoding = "console"
	case "json", "console":
	default:
		return zap.AtomicLevel{}, "", fmt.Errorf("log encoding %q: want json or console", cfg.Encoding)
	}
	return level, encoding, nil
}

// New builds a logger from cfg. Encoding is "json" or "console".
func New(cfg Config) (*zap.Logger, error) {
	level, encoding, err := cfg.parse()
	if err != nil {
		return nil, err
	}
	outputs := cfg.Outputs
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	zc := zap.Config{
		Level:            level,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// NewWriter is New writing to w instead of cfg.Outputs.
func NewWriter(cfg Config, w io.Writer) (*zap.Logger, error) {
	level, encoding, err := cfg.parse()
	if err != nil {
		return nil, err
	}
	var enc zapcore.Encoder
	if encoding == "json" {
		enc = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		enc = zapcore.NewConsoleEncoder(encoderConfig)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level)), nil
}
