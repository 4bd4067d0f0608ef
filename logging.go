package archetypedb

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap.Logger for a Database, honoring cfg's
// encoding/level/output selection. Grounded on the same zap.Config
// shape used for structured logging elsewhere in the reference stack:
// JSON encoding, no sampling by default, caller info disabled to keep
// the hot path cheap when logging is actually enabled.
func NewLogger(cfg LoggerConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.levelOrDefault())
	if err != nil {
		return nil, err
	}
	zc := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      false,
		Encoding:         cfg.encodingOrDefault(),
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      cfg.outputPathsOrDefault(),
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	return zc.Build()
}

// WithLogger sets db's logger, replacing whatever was configured at
// construction (zap.NewNop() by default).
func (db *Database) WithLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db.logger = logger
}
