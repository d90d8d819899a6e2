// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for stolu. It supports a layered
// override chain (defaults -> config file -> .env -> environment -> CLI
// flags). Every setting has a default, so no config file is required.
package config

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	API     APIConfig     `toml:"api" json:"api" yaml:"api"`
	Storage StorageConfig `toml:"storage" json:"storage" yaml:"storage"`
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
	Network NetworkConfig `toml:"network" json:"network" yaml:"network"`
	UI      UIConfig      `toml:"ui" json:"ui" yaml:"ui"`
}

// APIConfig locates the server and its fixed endpoints.
type APIConfig struct {
	BaseURL      string `toml:"base_url" json:"base_url" yaml:"base_url" validate:"required,http_url"`
	LoginPath    string `toml:"login_path" json:"login_path" yaml:"login_path" validate:"required,startswith=/"`
	LogoutPath   string `toml:"logout_path" json:"logout_path" yaml:"logout_path" validate:"required,startswith=/"`
	RegisterPath string `toml:"register_path" json:"register_path" yaml:"register_path" validate:"required,startswith=/"`
	VerifyPath   string `toml:"verify_path" json:"verify_path" yaml:"verify_path" validate:"required,startswith=/"`
	MealsPath    string `toml:"meals_path" json:"meals_path" yaml:"meals_path" validate:"required,startswith=/"`

	// ValidatePath is the side-effect-free endpoint used to confirm a
	// stored credential.
	ValidatePath string `toml:"validate_path" json:"validate_path" yaml:"validate_path" validate:"required,startswith=/"`

	UserAgent    string `toml:"user_agent" json:"user_agent" yaml:"user_agent"`
	Timeout      string `toml:"timeout" json:"timeout" yaml:"timeout"`
	ProbeTimeout string `toml:"probe_timeout" json:"probe_timeout" yaml:"probe_timeout"`
}

// StorageConfig selects where the session credential is persisted.
type StorageConfig struct {
	Backend   string `toml:"backend" json:"backend" yaml:"backend" validate:"oneof=file sqlite badger redis memory"`
	Dir       string `toml:"dir" json:"dir" yaml:"dir"`
	Key       string `toml:"key" json:"key" yaml:"key" validate:"required,excludesall=/\\"`
	RedisAddr string `toml:"redis_addr" json:"redis_addr" yaml:"redis_addr" validate:"omitempty,hostname_port"`
	RedisDB   int    `toml:"redis_db" json:"redis_db" yaml:"redis_db" validate:"gte=0,lte=15"`
}

// LoggingConfig controls log output: level and format.
type LoggingConfig struct {
	LogLevel  string `toml:"log_level" json:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `toml:"log_format" json:"log_format" yaml:"log_format" validate:"oneof=auto text json"`
}

// NetworkConfig controls client-side request pacing. A zero rate_limit
// disables limiting.
type NetworkConfig struct {
	RateLimit float64 `toml:"rate_limit" json:"rate_limit" yaml:"rate_limit" validate:"gte=0"`
	Burst     int     `toml:"burst" json:"burst" yaml:"burst" validate:"gte=0"`
}

// UIConfig controls how results and errors are shown.
type UIConfig struct {
	Language string `toml:"language" json:"language" yaml:"language" validate:"required"`
	Color    string `toml:"color" json:"color" yaml:"color" validate:"oneof=auto always never"`
	Output   string `toml:"output" json:"output" yaml:"output" validate:"oneof=table json yaml"`
}

// CLIOverrides holds values from CLI flags that override config file and
// environment settings. Empty strings mean "not specified".
type CLIOverrides struct {
	ConfigPath string // --config
	BaseURL    string // --api
	Backend    string // --store
	Output     string // --output
}
