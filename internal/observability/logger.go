package observability

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component returns the global logger tagged with a component name. The
// global logger is configured by the logging package; call this after it.
func Component(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}
