// Command stopprep prepares STOP corpus manifests.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mdobak/go-xerrors"
	"golang.org/x/term"

	"github.com/custodia-labs/stopprep/internal/adapters/driven/audio/wavfile"
	"github.com/custodia-labs/stopprep/internal/adapters/driven/config/env"
	"github.com/custodia-labs/stopprep/internal/adapters/driven/config/file"
	"github.com/custodia-labs/stopprep/internal/adapters/driven/corpus/httpfetch"
	"github.com/custodia-labs/stopprep/internal/adapters/driven/corpus/targz"
	"github.com/custodia-labs/stopprep/internal/adapters/driven/localfs"
	"github.com/custodia-labs/stopprep/internal/adapters/driven/manifest/csvfile"
	"github.com/custodia-labs/stopprep/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/stopprep/internal/adapters/driving/cli"
	"github.com/custodia-labs/stopprep/internal/core/ports/driving"
	"github.com/custodia-labs/stopprep/internal/core/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, version, wire)
	stop()

	if err != nil {
		fmt.Fprint(os.Stderr, xerrors.Sprint(xerrors.New(err)))
		os.Exit(1)
	}
}

// wire builds the services from the configuration in configDir.
func wire(configDir string) (*cli.Services, error) {
	fileStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	settings := services.NewSettingsService(env.NewConfigStore(fileStore))

	manifests := csvfile.NewStore()
	prepare := services.NewPrepareService(
		localfs.NewWorkspace(),
		httpfetch.NewDownloader(http.DefaultClient, 0, progressOutput(os.Stderr)),
		targz.NewExtractor(),
		csvfile.NewRawReader(),
		wavfile.NewReader(),
		manifests,
		sqlite.Open,
		uuid.NewString,
	)

	return &cli.Services{
		Prepare:  prepare,
		Settings: settings,
		Manifests: func(dir string) (driving.ManifestService, func() error, error) {
			ledger, closeFn, err := sqlite.Open(dir)
			if err != nil {
				return nil, nil, err
			}
			return services.NewManifestService(ledger, manifests), closeFn, nil
		},
	}, nil
}

// progressOutput returns f when it is a terminal, otherwise nil so that
// redirected logs are not flooded with carriage-return progress lines.
func progressOutput(f *os.File) io.Writer {
	if term.IsTerminal(int(f.Fd())) {
		return f
	}
	return nil
}
