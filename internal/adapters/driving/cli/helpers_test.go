package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/stopprep/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/stopprep/internal/core/domain"
	"github.com/custodia-labs/stopprep/internal/core/services"
)

// fakePrepareService records the configurations it was asked to prepare.
type fakePrepareService struct {
	calls  []domain.PrepareConfig
	report *domain.PrepareReport
	err    error
}

func (f *fakePrepareService) Prepare(_ context.Context, cfg domain.PrepareConfig) (*domain.PrepareReport, error) {
	f.calls = append(f.calls, cfg)
	if f.err != nil {
		return nil, f.err
	}
	if cfg.SkipPrep {
		return &domain.PrepareReport{RunID: "run-1", Skipped: true}, nil
	}
	if f.report != nil {
		return f.report, nil
	}
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.PrepareReport{
		RunID:  "run-1",
		Built:  []domain.ManifestKey{{Split: domain.SplitTrain, Scope: domain.AllScope(), Type: cfg.Type}},
		Published: map[domain.Split]string{
			domain.SplitTrain: cfg.SaveFolder + "/train-type=" + cfg.Type + ".csv",
		},
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
	}, nil
}

// setupServices installs a fake prepare service and a settings service over
// an in-memory config store. Everything is restored on cleanup.
func setupServices(t *testing.T) (*fakePrepareService, *memory.ConfigStore) {
	t.Helper()

	oldPrepare, oldSettings, oldManifests, oldWiring := prepareService, settingsService, openManifests, wiring
	t.Cleanup(func() {
		prepareService, settingsService, openManifests, wiring = oldPrepare, oldSettings, oldManifests, oldWiring
	})

	prep := &fakePrepareService{}
	cfgStore := memory.NewConfigStore()
	prepareService = prep
	settingsService = services.NewSettingsService(cfgStore)
	openManifests = nil
	wiring = nil

	return prep, cfgStore
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default so commands can be run
// repeatedly within one test binary.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
