package config

import (
	"errors"
)

// ErrInvalidConfig wraps host settings or event configs that fail validation.
// ErrLoadConfig wraps failures reading or parsing a config source.
var (
	ErrInvalidConfig = errors.New("race config invalid")
	ErrLoadConfig    = errors.New("race config load failed")
)
