package schemagen

import "go.uber.org/zap"

// Option configures a Generator.
type Option func(*Generator)

// WithLogger routes generator diagnostics (definition registration, name
// collisions) to l at debug level. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l == nil {
			l = zap.NewNop()
		}
		g.log = l
	}
}
