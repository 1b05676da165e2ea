package otel

import "errors"

// ErrInvalidSampleRate 采样率超出 [0, 1]
var ErrInvalidSampleRate = errors.New("sample rate must be between 0.0 and 1.0")
