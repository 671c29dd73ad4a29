package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stopprep/internal/core/domain"
	"github.com/custodia-labs/stopprep/internal/core/services"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage preparation settings",
	Long: `View and configure preparation settings.

Settings are stored in config.toml inside the configuration directory.
STOPPREP_* environment variables (and a .env file) override stored values,
for example STOPPREP_PREPARE_DATA_FOLDER for prepare.data_folder.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a setting",
	Long: `Set a single setting. Domain lists are comma separated, for example:

  stopprep settings set prepare.train_domains timer,alarm`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cfg, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(theme.Title.Render("Current Settings"))
	cmd.Println()

	section := ""
	for _, key := range settingsService.Keys() {
		if s, _, _ := strings.Cut(key, "."); s != section {
			if section != "" {
				cmd.Println()
			}
			section = s
			cmd.Println(theme.Subtitle.Render("[" + section + "]"))
		}
		cmd.Printf("  %s%s\n", theme.Label.Render(key), settingValue(cfg, key))
	}
	cmd.Println()

	if err := cfg.Validate(); err != nil {
		cmd.Println(theme.Warning.Render(fmt.Sprintf("Warning: %v", err)))
		cmd.Println("Run 'stopprep settings set <key> <value>' to fix it.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

// settingValue renders the resolved value of key.
func settingValue(cfg *domain.PrepareConfig, key string) string {
	switch key {
	case services.KeyDataFolder:
		return orUnset(cfg.DataFolder)
	case services.KeySaveFolder:
		return orUnset(cfg.SaveFolder)
	case services.KeyManifestDir:
		if cfg.ManifestDir == "" {
			return theme.Muted.Render("(<data_folder>/stop/manifests/speechbrain)")
		}
		return cfg.ManifestDir
	case services.KeyType:
		return cfg.Type
	case services.KeyTrainDomains:
		if len(cfg.TrainDomains) == 0 {
			return theme.Muted.Render("(all)")
		}
		names := make([]string, len(cfg.TrainDomains))
		for i, d := range cfg.TrainDomains {
			names[i] = d.String()
		}
		return strings.Join(names, ",")
	case services.KeyFlatIntents:
		return strconv.FormatBool(cfg.FlatIntents)
	case services.KeySkipPrep:
		return strconv.FormatBool(cfg.SkipPrep)
	case services.KeyDomainPartitions:
		return strconv.FormatBool(cfg.DomainPartitions)
	case services.KeyKeepDomain:
		return strconv.FormatBool(cfg.KeepDomain)
	case services.KeyRenumber:
		return strconv.FormatBool(cfg.Renumber)
	case services.KeyStrictCache:
		return strconv.FormatBool(cfg.StrictCache)
	case services.KeyCorpusURL:
		return cfg.Corpus.URL
	case services.KeyCorpusRateLimit:
		if cfg.Corpus.RateLimitKBps == 0 {
			return theme.Muted.Render("(unlimited)")
		}
		return strconv.Itoa(cfg.Corpus.RateLimitKBps)
	default:
		return ""
	}
}

func orUnset(v string) string {
	if v == "" {
		return theme.Muted.Render("(not set)")
	}
	return v
}
