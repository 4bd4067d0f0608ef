package archetypedb

import "github.com/google/wire"

// ProviderSet chains the constructors a host application's own
// wire-generated injector needs to assemble a *Database: engine config,
// logger config and logger, resource registry, and finally the Database
// itself. Unlike the reference injector, which only exists behind a
// wireinject build tag feeding a stub nothing else in that repo calls,
// this set is a plain package value so it compiles and is directly
// usable by a host's injector without a codegen stub.
var ProviderSet = wire.NewSet(
	LoadEngineConfig,
	provideDefaultLoggerConfig,
	NewLogger,
	NewResources,
	NewDatabase,
)

// provideDefaultLoggerConfig supplies the zero-value LoggerConfig (which
// NewLogger interprets as its info/json/stderr defaults) as a wire
// provider, for host applications that have no YAML document to parse
// via ParseLoggerConfig.
func provideDefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{}
}
