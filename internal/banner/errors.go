package banner

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrConfigNotFound = errors.New("banner config not found")
	ErrInvalidConfig  = errors.New("invalid banner config")
	ErrNoPath         = errors.New("banner config has no file path")
)
