package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrInvalidStyle indicates an unknown SEO style.
	ErrInvalidStyle = errors.New("invalid SEO style")

	// ErrInvalidProvider indicates an unknown language model provider.
	ErrInvalidProvider = errors.New("invalid LLM provider")

	// ErrInvalidThreshold indicates a silence threshold above 0 dBFS.
	ErrInvalidThreshold = errors.New("silence threshold out of range")

	// ErrInvalidSilence indicates a non-positive window, step or negative padding.
	ErrInvalidSilence = errors.New("silence parameters invalid")

	// ErrInvalidPosition indicates an unknown picture-in-picture position.
	ErrInvalidPosition = errors.New("invalid pip position")

	// ErrInvalidScale indicates a picture-in-picture scale outside (0, 1].
	ErrInvalidScale = errors.New("pip scale out of range")

	// ErrInvalidCRF indicates a CRF value outside the valid 0-51 range.
	ErrInvalidCRF = errors.New("CRF value out of range")

	// ErrInvalidLimit indicates a non-positive size or length limit.
	ErrInvalidLimit = errors.New("limit must be positive")
)
