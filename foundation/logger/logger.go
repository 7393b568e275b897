// Package logger provides a thin wrapper around zap to standardize the
// fields every log line carries.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New constructs a zap.SugaredLogger that writes structured JSON to
// stdout, tagging every entry with a fixed service name.
func New(service string) (*zap.SugaredLogger, error) {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stdout"}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := config.Build(zap.Fields(zap.String("service", service)))
	if err != nil {
		return nil, err
	}

	return log.Sugar(), nil
}
