package logger

import "context"

// Config defines the logging configuration for the context it is attached to.
type Config struct {
	Active             SystemConfig
	Main               *SystemConfig
	IncludedSubSystems map[string]bool          // If true, log in main log
	SubSystems         map[string]*SystemConfig // SubSystem specific loggers
}

// NewProductionConfig creates a new config with default production values.
//   Logs info level and above to stderr.
func NewProductionConfig() *Config {
	result := Config{
		IncludedSubSystems: make(map[string]bool),
		SubSystems:         make(map[string]*SystemConfig),
	}

	result.Main, _ = NewProductionLogger()
	result.Active = *result.Main
	return &result
}

// NewProductionTextConfig creates a new config with default production values.
//   Logs info level and above to stderr.
func NewProductionTextConfig() *Config {
	result := Config{
		IncludedSubSystems: make(map[string]bool),
		SubSystems:         make(map[string]*SystemConfig),
	}

	result.Main, _ = NewProductionTextLogger()
	result.Active = *result.Main
	return &result
}

// NewDevelopmentConfig creates a new config with default development values.
//   Logs verbose level and above to stderr.
func NewDevelopmentConfig() *Config {
	result := Config{
		IncludedSubSystems: make(map[string]bool),
		SubSystems:         make(map[string]*SystemConfig),
	}

	result.Main, _ = NewDevelopmentLogger()
	result.Active = *result.Main
	return &result
}

// NewDevelopmentTextConfig creates a new config with default development values.
//   Logs verbose level and above to stderr.
func NewDevelopmentTextConfig() *Config {
	result := Config{
		IncludedSubSystems: make(map[string]bool),
		SubSystems:         make(map[string]*SystemConfig),
	}

	result.Main, _ = NewDevelopmentTextLogger()
	result.Active = *result.Main
	return &result
}

// NewEmptyConfig creates a new config that doesn't log.
//   Every entry written to it is discarded.
func NewEmptyConfig() *Config {
	result := Config{
		IncludedSubSystems: make(map[string]bool),
		SubSystems:         make(map[string]*SystemConfig),
	}

	result.Main, _ = NewEmptyLogger()
	result.Active = *result.Main
	return &result
}

// EnableSubSystem enables a subsytem to log to the main log
func (config *Config) EnableSubSystem(subsystem string) {
	config.IncludedSubSystems[subsystem] = true
}

// NewConfig builds a Config from the isDevelopment/isText/filePath combination that the rest of
// the codebase historically passed around as three loose arguments. filePath, when non-empty,
// sends the main log to that file instead of stderr; entries are then not written to stderr.
func NewConfig(isDevelopment, isText bool, filePath string) *Config {
	var config *Config
	switch {
	case isDevelopment && isText:
		config = NewDevelopmentTextConfig()
	case isDevelopment && !isText:
		config = NewDevelopmentConfig()
	case !isDevelopment && isText:
		config = NewProductionTextConfig()
	default:
		config = NewProductionConfig()
	}

	if len(filePath) > 0 {
		config.Main.AddFile(filePath)
		config.Active = *config.Main
	}

	return config
}

// ContextWithLogger is a convenience wrapper combining NewConfig and ContextWithLogConfig.
func ContextWithLogger(ctx context.Context, isDevelopment, isText bool, filePath string) context.Context {
	return ContextWithLogConfig(ctx, NewConfig(isDevelopment, isText, filePath))
}

// DefaultConfig is used by LogDepthWithFields when a context carries no
// Config of its own, so code can log through the package level functions
// before a Config is wired in.
var DefaultConfig = *NewDevelopmentTextConfig()

// emptyConfig is attached to a context by ContextWithNoLogger, and is
// checked by identity in LogDepthWithFields to skip logging entirely.
var emptyConfig = *NewEmptyConfig()
