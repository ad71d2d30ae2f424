package helpers

import (
	"time"

	"github.com/yigit/studentregistry/internal/pkg/logger"
)

// ParseDuration parses value as a time.Duration, logging and returning fallback when it is malformed.
func ParseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn().Err(err).Str("value", value).Dur("fallback", fallback).Msg("Invalid duration, using fallback")
		return fallback
	}
	return d
}
