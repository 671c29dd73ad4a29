package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stopprep/internal/core/domain"
	"github.com/custodia-labs/stopprep/internal/core/ports/driving"
)

var manifestsDir string

var manifestsCmd = &cobra.Command{
	Use:   "manifests",
	Short: "Inspect prepared manifests",
	Long: `Inspect the manifest ledger kept beside the cached manifests.

The ledger records a SHA-256 digest for every manifest a run wrote, so
edited, truncated or deleted files can be found before training.`,
	RunE: runManifestsList,
}

var manifestsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stamped manifests",
	RunE:  runManifestsList,
}

var manifestsVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Re-hash manifests and report stale or missing ones",
	RunE:  runManifestsVerify,
}

var manifestsForgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Drop ledger stamps for missing manifests",
	RunE:  runManifestsForget,
}

func init() {
	manifestsCmd.PersistentFlags().StringVar(&manifestsDir, "manifest-dir", "",
		"manifest cache folder (default from settings)")
	manifestsCmd.AddCommand(manifestsListCmd)
	manifestsCmd.AddCommand(manifestsVerifyCmd)
	manifestsCmd.AddCommand(manifestsForgetCmd)
	rootCmd.AddCommand(manifestsCmd)
}

func runManifestsList(cmd *cobra.Command, _ []string) error {
	return withManifests(cmd, func(ctx context.Context, svc driving.ManifestService) error {
		stamps, err := svc.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list manifests: %w", err)
		}
		if len(stamps) == 0 {
			cmd.Println("No manifests prepared yet.")
			return nil
		}

		cmd.Println(theme.Title.Render("Manifests"))
		for i := range stamps {
			s := &stamps[i]
			cmd.Printf("  %s %6d rows  %s  %s\n",
				theme.Label.Render(filepath.Base(s.Path)),
				s.Rows,
				theme.Muted.Render(s.CreatedAt.Local().Format("2006-01-02 15:04")),
				theme.Muted.Render(s.RunID))
		}
		return nil
	})
}

func runManifestsVerify(cmd *cobra.Command, _ []string) error {
	return withManifests(cmd, func(ctx context.Context, svc driving.ManifestService) error {
		checks, err := svc.Verify(ctx)
		if err != nil {
			return fmt.Errorf("failed to verify manifests: %w", err)
		}
		if len(checks) == 0 {
			cmd.Println("No manifests prepared yet.")
			return nil
		}

		counts := make(map[driving.ManifestState]int)
		for _, c := range checks {
			counts[c.State]++
			cmd.Printf("  %s %s\n", renderState(c.State), filepath.Base(c.Stamp.Path))
		}
		cmd.Println()
		cmd.Printf("%d fresh, %d stale, %d missing\n",
			counts[driving.ManifestFresh], counts[driving.ManifestStale], counts[driving.ManifestMissing])

		if bad := counts[driving.ManifestStale] + counts[driving.ManifestMissing]; bad > 0 {
			return fmt.Errorf("%d manifest(s) will be rebuilt by the next prepare run", bad)
		}
		return nil
	})
}

func runManifestsForget(cmd *cobra.Command, _ []string) error {
	return withManifests(cmd, func(ctx context.Context, svc driving.ManifestService) error {
		n, err := svc.Forget(ctx)
		if err != nil {
			return fmt.Errorf("failed to forget manifests: %w", err)
		}
		cmd.Printf("Dropped %d stamp(s) for missing manifests.\n", n)
		return nil
	})
}

func renderState(state driving.ManifestState) string {
	label := fmt.Sprintf("%-8s", state)
	switch state {
	case driving.ManifestFresh:
		return theme.Success.Render(label)
	case driving.ManifestStale:
		return theme.Warning.Render(label)
	default:
		return theme.Error.Render(label)
	}
}

// withManifests opens the ledger for the configured manifest folder and
// runs fn against it.
func withManifests(cmd *cobra.Command, fn func(context.Context, driving.ManifestService) error) (err error) {
	if openManifests == nil || settingsService == nil {
		return errors.New("manifest service not configured")
	}

	dir, err := resolveManifestDir()
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(dir); os.IsNotExist(statErr) {
		cmd.Println("No manifests prepared yet.")
		return nil
	}

	svc, closeFn, err := openManifests(dir)
	if err != nil {
		return fmt.Errorf("failed to open manifest ledger: %w", err)
	}
	defer func() {
		if cerr := closeFn(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close ledger: %w", cerr))
		}
	}()

	return fn(cmd.Context(), svc)
}

func resolveManifestDir() (string, error) {
	if manifestsDir != "" {
		return filepath.Abs(manifestsDir)
	}

	cfg, err := settingsService.Get()
	if err != nil {
		return "", fmt.Errorf("failed to load settings: %w", err)
	}
	if cfg.ManifestDir == "" && cfg.DataFolder == "" {
		return "", fmt.Errorf("%w: set prepare.data_folder or pass --manifest-dir", domain.ErrInvalidInput)
	}
	return filepath.Abs(cfg.ManifestPath())
}
