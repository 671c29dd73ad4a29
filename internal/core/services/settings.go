package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/stopprep/internal/core/domain"
	"github.com/custodia-labs/stopprep/internal/core/ports/driven"
	"github.com/custodia-labs/stopprep/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyDataFolder       = "prepare.data_folder"
	KeySaveFolder       = "prepare.save_folder"
	KeyManifestDir      = "prepare.manifest_dir"
	KeyType             = "prepare.type"
	KeyTrainDomains     = "prepare.train_domains"
	KeyFlatIntents      = "prepare.flat_intents"
	KeySkipPrep         = "prepare.skip_prep"
	KeyDomainPartitions = "prepare.domain_partitions"
	KeyKeepDomain       = "prepare.keep_domain"
	KeyRenumber         = "prepare.renumber"
	KeyStrictCache      = "prepare.strict_cache"
	KeyCorpusURL        = "corpus.url"
	KeyCorpusRateLimit  = "corpus.rate_limit_kbps"
)

type settingKind int

const (
	kindString settingKind = iota
	kindBool
	kindInt
	kindDomains
)

var settingKinds = map[string]settingKind{
	KeyDataFolder:       kindString,
	KeySaveFolder:       kindString,
	KeyManifestDir:      kindString,
	KeyType:             kindString,
	KeyTrainDomains:     kindDomains,
	KeyFlatIntents:      kindBool,
	KeySkipPrep:         kindBool,
	KeyDomainPartitions: kindBool,
	KeyKeepDomain:       kindBool,
	KeyRenumber:         kindBool,
	KeyStrictCache:      kindBool,
	KeyCorpusURL:        kindString,
	KeyCorpusRateLimit:  kindInt,
}

// SettingsService resolves preparation settings from a ConfigStore.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get resolves the stored configuration over the defaults.
// Unknown domains are an error rather than silently dropped.
func (s *SettingsService) Get() (*domain.PrepareConfig, error) {
	defaults := domain.DefaultPrepareConfig()

	domains, err := domain.ParseDomains(s.configStore.GetStringSlice(KeyTrainDomains))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyTrainDomains, err)
	}
	if len(domains) == 0 {
		domains = nil
	}

	cfg := &domain.PrepareConfig{
		DataFolder:       s.configStore.GetString(KeyDataFolder),
		SaveFolder:       s.configStore.GetString(KeySaveFolder),
		ManifestDir:      s.configStore.GetString(KeyManifestDir),
		Type:             s.getString(KeyType, defaults.Type),
		TrainDomains:     domains,
		FlatIntents:      s.getBool(KeyFlatIntents, defaults.FlatIntents),
		SkipPrep:         s.getBool(KeySkipPrep, defaults.SkipPrep),
		DomainPartitions: s.getBool(KeyDomainPartitions, defaults.DomainPartitions),
		KeepDomain:       s.getBool(KeyKeepDomain, defaults.KeepDomain),
		Renumber:         s.getBool(KeyRenumber, defaults.Renumber),
		StrictCache:      s.getBool(KeyStrictCache, defaults.StrictCache),
		Corpus: domain.CorpusSettings{
			URL:           s.getString(KeyCorpusURL, defaults.Corpus.URL),
			RateLimitKBps: s.getInt(KeyCorpusRateLimit, defaults.Corpus.RateLimitKBps),
		},
	}

	return cfg, nil
}

// Set validates and persists a single setting.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var stored any
	switch kind {
	case kindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false", domain.ErrInvalidInput, key)
		}
		stored = b
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s expects a non-negative integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case kindDomains:
		domains, err := domain.ParseDomains(strings.Split(value, ","))
		if err != nil {
			return err
		}
		names := make([]string, len(domains))
		for i, d := range domains {
			names[i] = d.String()
		}
		stored = names
	default:
		stored = strings.TrimSpace(value)
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns the recognised setting keys in display order.
func (s *SettingsService) Keys() []string {
	return []string{
		KeyDataFolder,
		KeySaveFolder,
		KeyManifestDir,
		KeyType,
		KeyTrainDomains,
		KeyFlatIntents,
		KeySkipPrep,
		KeyDomainPartitions,
		KeyKeepDomain,
		KeyRenumber,
		KeyStrictCache,
		KeyCorpusURL,
		KeyCorpusRateLimit,
	}
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.PrepareConfig {
	return domain.DefaultPrepareConfig()
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}
