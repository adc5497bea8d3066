package config

import (
	"go.uber.org/zap"

	"github.com/linesmerrill/case-diary-api/logging"
)

// setLogger builds the zap logger matching the running environment
func setLogger(env string) (*zap.Logger, error) {
	return logging.New(env)
}
