package config

import (
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger: JSON at info level in production,
// colored console at debug level everywhere else.  LOG_LEVEL overrides the
// level in both modes.
func NewLogger(cfg Config) (*zap.Logger, error) {
    var zc zap.Config
    if cfg.IsProduction() {
        zc = zap.NewProductionConfig()
        zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
    } else {
        zc = zap.NewDevelopmentConfig()
        zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
        zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
    }
    if lvl := envStr("LOG_LEVEL", ""); lvl != "" {
        if l, err := zapcore.ParseLevel(lvl); err == nil {
            zc.Level = zap.NewAtomicLevelAt(l)
        }
    }
    log, err := zc.Build()
    if err != nil {
        return nil, err
    }
    return log.With(zap.String("env", cfg.Env)), nil
}
