package logger

import (
	"github.com/rs/zerolog"
)

// NewNop returns a logger that discards everything. Useful in tests
// where log output would only add noise.
func NewNop() Logger {
	zlog := zerolog.Nop()
	return &zerologLogger{
		logger: &zlog,
		fields: make(map[string]interface{}),
	}
}
