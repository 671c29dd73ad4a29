// Package cli provides the stopprep command-line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stopprep/internal/adapters/driving/cli/styles"
	"github.com/custodia-labs/stopprep/internal/core/ports/driving"
	"github.com/custodia-labs/stopprep/internal/logger"
)

// ManifestOpener opens the manifest service for the ledger kept in dir.
// The returned function releases the ledger.
type ManifestOpener func(dir string) (driving.ManifestService, func() error, error)

// Services are the driving ports the commands call.
type Services struct {
	Prepare   driving.PrepareService
	Settings  driving.SettingsService
	Manifests ManifestOpener
}

// Wiring builds Services once the global flags are parsed.
type Wiring func(configDir string) (*Services, error)

var (
	version = "dev"

	verbose   bool
	configDir string

	wiring          Wiring
	prepareService  driving.PrepareService
	settingsService driving.SettingsService
	openManifests   ManifestOpener

	theme = styles.DefaultStyles()
)

var rootCmd = &cobra.Command{
	Use:   "stopprep",
	Short: "Prepare STOP corpus manifests",
	Long: `stopprep downloads the STOP spoken language understanding corpus and
prepares train, eval and test manifests for downstream training.

Manifests are cached beside the corpus and reused by later runs; a ledger
records a digest for each so edited or truncated files are rebuilt.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print progress and cache decisions")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "configuration directory (default ~/.stopprep)")
}

// Execute runs the root command. w is called once flags are parsed.
func Execute(ctx context.Context, v string, w Wiring) error {
	version = v
	wiring = w
	return rootCmd.ExecuteContext(ctx)
}

// SetServices installs the driving ports used by the commands.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	prepareService = s.Prepare
	settingsService = s.Settings
	openManifests = s.Manifests
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	if wiring == nil || cmd == versionCmd {
		return nil
	}
	s, err := wiring(configDir)
	if err != nil {
		return err
	}
	SetServices(s)
	return nil
}
