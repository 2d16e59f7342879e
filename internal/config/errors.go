package config

import (
	"errors"
)

// Error kinds returned by Load and Validate, and by callers that reject a
// config value only they can interpret (timezone names, driver names).
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
