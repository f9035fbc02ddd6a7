// Package config provides configuration types and defaults for vidmark.
package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrNoWatermarkText indicates both watermark lines are empty.
	ErrNoWatermarkText = errors.New("at least one line of watermark text is required")

	// ErrInvalidCoverage indicates a width coverage outside 1-100 percent.
	ErrInvalidCoverage = errors.New("coverage out of range")

	// ErrInvalidOpacity indicates an opacity outside 0-100 percent.
	ErrInvalidOpacity = errors.New("opacity out of range")

	// ErrInvalidStrength indicates a negative or non-finite blend strength.
	ErrInvalidStrength = errors.New("strength out of range")

	// ErrInvalidEnv indicates an environment override that does not parse.
	ErrInvalidEnv = errors.New("invalid environment value")
)
