// Package env overlays environment variables on another configuration store.
//
// A key such as "prepare.data_folder" is overridden by STOPPREP_PREPARE_DATA_FOLDER.
// Overrides are read-only: Set and Save always go to the wrapped store.
package env

import (
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/stopprep/internal/core/ports/driven"
)

// Prefix starts every overriding variable name.
const Prefix = "STOPPREP_"

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore reads environment overrides before falling back to base.
type ConfigStore struct {
	base   driven.ConfigStore
	lookup func(string) (string, bool)
}

// NewConfigStore wraps base with overrides from the process environment.
func NewConfigStore(base driven.ConfigStore) *ConfigStore {
	return NewConfigStoreWithLookup(base, os.LookupEnv)
}

// NewConfigStoreWithLookup wraps base with overrides from lookup.
func NewConfigStoreWithLookup(base driven.ConfigStore, lookup func(string) (string, bool)) *ConfigStore {
	return &ConfigStore{base: base, lookup: lookup}
}

// VarName returns the environment variable that overrides key.
func VarName(key string) string {
	r := strings.NewReplacer(".", "_", "-", "_")
	return Prefix + strings.ToUpper(r.Replace(key))
}

func (s *ConfigStore) override(key string) (string, bool) {
	v, ok := s.lookup(VarName(key))
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// Get returns the raw override string, or the base value.
func (s *ConfigStore) Get(key string) (any, bool) {
	if v, ok := s.override(key); ok {
		return v, true
	}
	return s.base.Get(key)
}

// GetString returns the override or the base value.
func (s *ConfigStore) GetString(key string) string {
	if v, ok := s.override(key); ok {
		return v
	}
	return s.base.GetString(key)
}

// GetInt parses the override as an integer; unparsable overrides read as 0.
func (s *ConfigStore) GetInt(key string) int {
	if v, ok := s.override(key); ok {
		n, _ := strconv.Atoi(v)
		return n
	}
	return s.base.GetInt(key)
}

// GetBool parses the override with strconv.ParseBool.
func (s *ConfigStore) GetBool(key string) bool {
	if v, ok := s.override(key); ok {
		b, _ := strconv.ParseBool(v)
		return b
	}
	return s.base.GetBool(key)
}

// GetStringSlice splits the override on commas.
func (s *ConfigStore) GetStringSlice(key string) []string {
	if v, ok := s.override(key); ok {
		if v == "" {
			return nil
		}
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return s.base.GetStringSlice(key)
}

// Set writes to the base store.
func (s *ConfigStore) Set(key string, value any) error {
	return s.base.Set(key, value)
}

// Save persists the base store.
func (s *ConfigStore) Save() error {
	return s.base.Save()
}

// Load reloads the base store.
func (s *ConfigStore) Load() error {
	return s.base.Load()
}

// Path returns the base store's path.
func (s *ConfigStore) Path() string {
	return s.base.Path()
}
