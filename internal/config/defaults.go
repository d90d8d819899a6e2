package config

// Default values for configuration options. These are "layer 0" of the
// override chain and work against a locally running API without any config
// file.
const (
	defaultBaseURL      = "http://localhost:8080"
	defaultLoginPath    = "/log-in"
	defaultLogoutPath   = "/log-out"
	defaultRegisterPath = "/register"
	defaultVerifyPath   = "/verify"
	defaultMealsPath    = "/meals"
	defaultValidatePath = "/test-auth"
	defaultUserAgent    = "stolu/0.1"
	defaultTimeout      = "30s"
	defaultProbeTimeout = "10s"
	defaultBackend      = "file"
	defaultStorageKey   = "token"
	defaultRedisAddr    = "localhost:6379"
	defaultLogLevel     = "warn"
	defaultLogFormat    = "auto"
	defaultBurst        = 1
	defaultLanguage     = "en"
	defaultColor        = "auto"
	defaultOutput       = "table"
)

// DefaultConfig returns a Config populated with all default values.
// This is used both as the starting point for TOML decoding (so unset
// fields retain defaults) and as the fallback when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		API:     defaultAPIConfig(),
		Storage: defaultStorageConfig(),
		Logging: LoggingConfig{LogLevel: defaultLogLevel, LogFormat: defaultLogFormat},
		Network: NetworkConfig{Burst: defaultBurst},
		UI:      UIConfig{Language: defaultLanguage, Color: defaultColor, Output: defaultOutput},
	}
}

func defaultAPIConfig() APIConfig {
	return APIConfig{
		BaseURL:      defaultBaseURL,
		LoginPath:    defaultLoginPath,
		LogoutPath:   defaultLogoutPath,
		RegisterPath: defaultRegisterPath,
		VerifyPath:   defaultVerifyPath,
		MealsPath:    defaultMealsPath,
		ValidatePath: defaultValidatePath,
		UserAgent:    defaultUserAgent,
		Timeout:      defaultTimeout,
		ProbeTimeout: defaultProbeTimeout,
	}
}

// Dir is left empty; Resolve fills in the platform data directory so the
// default follows XDG_DATA_HOME at run time.
func defaultStorageConfig() StorageConfig {
	return StorageConfig{
		Backend:   defaultBackend,
		Key:       defaultStorageKey,
		RedisAddr: defaultRedisAddr,
	}
}
