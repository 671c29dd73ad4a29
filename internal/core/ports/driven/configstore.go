package driven

// ConfigStore provides access to persisted configuration.
// Keys use dot notation ("prepare.data_folder"); implementations handle
// persistence (e.g. TOML files) and type conversion.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string value, or "" if absent or mistyped.
	GetString(key string) string

	// GetInt retrieves an integer value, or 0 if absent or mistyped.
	GetInt(key string) int

	// GetBool retrieves a boolean value, or false if absent or mistyped.
	GetBool(key string) bool

	// GetStringSlice retrieves a string slice, or nil if absent or mistyped.
	GetStringSlice(key string) []string

	// Set stores a value and persists immediately.
	Set(key string, value any) error

	// Save persists the current configuration.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
