package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/connectfood/core/internal/infrastructure/config"
)

const serviceName = "connectfood-core"

// NewLogger builds the process logger. Every entry carries the service name
// and environment so logs from several deployments can share a sink.
func NewLogger(cfg config.LogConfig, environment string) (*zap.Logger, error) {
	var zcfg zap.Config

	switch cfg.Format {
	case "console":
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case "json":
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "ts"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.Format)
	}

	lvl, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.InitialFields = map[string]any{
		"service": serviceName,
		"env":     environment,
	}

	logger, err := zcfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	return logger, nil
}
