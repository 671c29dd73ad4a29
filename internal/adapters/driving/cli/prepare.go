package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stopprep/internal/adapters/driven/barrier"
	"github.com/custodia-labs/stopprep/internal/core/domain"
)

// Environment variables read when the matching flag is not set.
const (
	envRank       = "RANK"
	envWorldSize  = "WORLD_SIZE"
	envRunToken   = "STOPPREP_RUN_TOKEN"
	envElasticRun = "TORCHELASTIC_RUN_ID"
)

var (
	prepDataFolder       string
	prepSaveFolder       string
	prepManifestDir      string
	prepType             string
	prepTrainDomains     []string
	prepFlatIntents      bool
	prepSkip             bool
	prepDomainPartitions bool
	prepKeepDomain       bool
	prepRenumber         bool
	prepStrictCache      bool
	prepCorpusURL        string
	prepRateLimit        int

	prepRank           int
	prepWorldSize      int
	prepRunToken       string
	prepBarrierTimeout time.Duration
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Prepare train, eval and test manifests",
	Long: `Downloads and extracts the corpus if needed, builds one manifest per split,
partitions it by domain and intent structure, and publishes the merged
train/eval/test manifests to the save folder.

Flags override the configuration file and STOPPREP_* environment variables.
In multi-process jobs only rank 0 prepares; the other ranks wait for it.`,
	RunE: runPrepare,
}

func init() {
	f := prepareCmd.Flags()
	f.StringVar(&prepDataFolder, "data-folder", "", "folder holding stop.tar.gz and the extracted corpus")
	f.StringVar(&prepSaveFolder, "save-folder", "", "folder receiving the published manifests")
	f.StringVar(&prepManifestDir, "manifest-dir", "", "cache folder for split and partition manifests")
	f.StringVar(&prepType, "type", domain.DefaultType, "manifest type tag")
	f.StringSliceVar(&prepTrainDomains, "train-domains", nil, "domains to publish (default all)")
	f.BoolVar(&prepFlatIntents, "flat-intents", false, "publish flat intents only")
	f.BoolVar(&prepSkip, "skip-prep", false, "do nothing")
	f.BoolVar(&prepDomainPartitions, "domain-partitions", true, "write per-domain partition manifests")
	f.BoolVar(&prepKeepDomain, "keep-domain", true, "keep the domain column in published manifests")
	f.BoolVar(&prepRenumber, "renumber", true, "renumber published rows from 0")
	f.BoolVar(&prepStrictCache, "strict-cache", false, "rebuild cached manifests that have no ledger stamp")
	f.StringVar(&prepCorpusURL, "corpus-url", domain.DefaultCorpusURL, "corpus archive URL")
	f.IntVar(&prepRateLimit, "rate-limit", 0, "download bandwidth limit in KiB/s (0 = unlimited)")

	f.IntVar(&prepRank, "rank", 0, "process rank (default $RANK)")
	f.IntVar(&prepWorldSize, "world-size", 1, "number of processes (default $WORLD_SIZE)")
	f.StringVar(&prepRunToken, "run-token", "", "token shared by every process of the job (default $STOPPREP_RUN_TOKEN)")
	f.DurationVar(&prepBarrierTimeout, "barrier-timeout", barrier.DefaultTimeout, "how long non-main processes wait")

	rootCmd.AddCommand(prepareCmd)
}

func runPrepare(cmd *cobra.Command, _ []string) error {
	if prepareService == nil || settingsService == nil {
		return errors.New("prepare service not configured")
	}

	cfg, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := applyPrepareFlags(cmd, cfg); err != nil {
		return err
	}

	rank, worldSize, err := processGroup(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	// A skipped run touches nothing, not even the barrier marker.
	if worldSize <= 1 || cfg.SkipPrep {
		report, err := prepareService.Prepare(ctx, *cfg)
		if err != nil {
			return fmt.Errorf("preparation failed: %w", err)
		}
		printReport(cmd, report)
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	b, err := barrier.New(cfg.SaveFolder, runToken(cmd), prepBarrierTimeout)
	if err != nil {
		return err
	}

	if rank != 0 {
		res, err := b.Wait(ctx)
		if err != nil {
			return fmt.Errorf("rank %d: %w", rank, err)
		}
		cmd.Printf("Rank %d: preparation finished by the main process (run %s)\n", rank, res.RunID)
		return nil
	}

	if err := b.Reset(); err != nil {
		return err
	}
	report, prepErr := prepareService.Prepare(ctx, *cfg)
	runID := ""
	if report != nil {
		runID = report.RunID
	}
	if err := b.Signal(runID, prepErr); err != nil {
		prepErr = errors.Join(prepErr, fmt.Errorf("signal waiting processes: %w", err))
	}
	if prepErr != nil {
		return fmt.Errorf("preparation failed: %w", prepErr)
	}
	printReport(cmd, report)
	return nil
}

// applyPrepareFlags overrides cfg with every flag set on the command line.
func applyPrepareFlags(cmd *cobra.Command, cfg *domain.PrepareConfig) error {
	f := cmd.Flags()
	if f.Changed("data-folder") {
		cfg.DataFolder = prepDataFolder
	}
	if f.Changed("save-folder") {
		cfg.SaveFolder = prepSaveFolder
	}
	if f.Changed("manifest-dir") {
		cfg.ManifestDir = prepManifestDir
	}
	if f.Changed("type") {
		cfg.Type = prepType
	}
	if f.Changed("train-domains") {
		domains, err := domain.ParseDomains(prepTrainDomains)
		if err != nil {
			return err
		}
		if len(domains) == 0 {
			domains = nil
		}
		cfg.TrainDomains = domains
	}
	if f.Changed("flat-intents") {
		cfg.FlatIntents = prepFlatIntents
	}
	if f.Changed("skip-prep") {
		cfg.SkipPrep = prepSkip
	}
	if f.Changed("domain-partitions") {
		cfg.DomainPartitions = prepDomainPartitions
	}
	if f.Changed("keep-domain") {
		cfg.KeepDomain = prepKeepDomain
	}
	if f.Changed("renumber") {
		cfg.Renumber = prepRenumber
	}
	if f.Changed("strict-cache") {
		cfg.StrictCache = prepStrictCache
	}
	if f.Changed("corpus-url") {
		cfg.Corpus.URL = prepCorpusURL
	}
	if f.Changed("rate-limit") {
		cfg.Corpus.RateLimitKBps = prepRateLimit
	}
	return nil
}

// processGroup returns the rank and world size from flags or the
// launcher's environment.
func processGroup(cmd *cobra.Command) (rank, worldSize int, err error) {
	rank, worldSize = prepRank, prepWorldSize

	if !cmd.Flags().Changed("rank") {
		if rank, err = envInt(envRank, 0); err != nil {
			return 0, 0, err
		}
	}
	if !cmd.Flags().Changed("world-size") {
		if worldSize, err = envInt(envWorldSize, 1); err != nil {
			return 0, 0, err
		}
	}

	if worldSize < 1 {
		return 0, 0, fmt.Errorf("%w: world size must be at least 1", domain.ErrInvalidInput)
	}
	if rank < 0 || rank >= worldSize {
		return 0, 0, fmt.Errorf("%w: rank %d outside world size %d", domain.ErrInvalidInput, rank, worldSize)
	}
	return rank, worldSize, nil
}

func runToken(cmd *cobra.Command) string {
	if cmd.Flags().Changed("run-token") {
		return prepRunToken
	}
	for _, name := range []string{envRunToken, envElasticRun} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return prepRunToken
}

func envInt(name string, defaultVal int) (int, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", domain.ErrInvalidInput, name, v)
	}
	return n, nil
}

func printReport(cmd *cobra.Command, r *domain.PrepareReport) {
	if r.Skipped {
		cmd.Println(theme.Muted.Render("Data preparation skipped."))
		return
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render("Preparation complete") + "\n")
	fmt.Fprintf(&b, "%s%s\n", theme.Label.Render("Run"), r.RunID)
	fmt.Fprintf(&b, "%s%d\n", theme.Label.Render("Manifests built"), len(r.Built))
	fmt.Fprintf(&b, "%s%d\n", theme.Label.Render("Manifests reused"), len(r.Cached))
	fmt.Fprintf(&b, "%s%s\n", theme.Label.Render("Elapsed"), r.Elapsed().Round(time.Millisecond))
	for _, split := range domain.AllSplits() {
		if p, ok := r.Published[split]; ok {
			fmt.Fprintf(&b, "%s%s\n", theme.Label.Render(split.String()), theme.Success.Render(p))
		}
	}

	cmd.Println(theme.Box.Render(strings.TrimRight(b.String(), "\n")))
}
