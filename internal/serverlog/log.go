// Package serverlog builds the zap logger the rest of the server uses,
// mapping the config file's five loglevel values onto zap's levels and
// logfile "" onto stdout, matching spec.md §6.
package serverlog

import (
	"os"

	"github.com/lexidb/lexid/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.Logger for the given level and destination file path
// ("" means stdout).
func New(level config.LogLevel, logfile string) (*zap.Logger, error) {
	if level == config.LogNothing {
		return zap.NewNop(), nil
	}

	var out zapcore.WriteSyncer
	if logfile == "" {
		out = zapcore.AddSync(os.Stdout)
	} else {
		f, err := os.OpenFile(logfile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		out = zapcore.AddSync(f)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), out, zapLevel(level))
	logger := zap.New(core)
	if level == config.LogVerbose {
		logger = logger.With(zap.String("verbosity", "verbose"))
	}
	return logger, nil
}

func zapLevel(level config.LogLevel) zapcore.Level {
	switch level {
	case config.LogWarning:
		return zapcore.WarnLevel
	case config.LogVerbose, config.LogDebug:
		return zapcore.DebugLevel
	case config.LogInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.InfoLevel
	}
}
