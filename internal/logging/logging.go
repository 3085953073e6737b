// Package logging builds the zap loggers used by the check daemon.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON logger at the given level. An empty path logs to
// stderr. If the log file cannot be created the logger falls back to
// stderr and reports the problem there.
func New(path, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	output := "stderr"
	if path != "" {
		file, err := os.Create(path)
		if err == nil {
			file.Close()
			output = path
		} else {
			fmt.Fprintf(os.Stderr, "error creating log file: %s\n", err)
		}
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Development:      lvl == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{output},
	}
	return config.Build()
}
