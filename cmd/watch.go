package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	grovelogging "github.com/grovetools/core/logging"
	"github.com/grovetools/speechprep/internal/pipeline"
	"github.com/grovetools/speechprep/internal/watch"
	"github.com/spf13/cobra"
)

var ulogWatch = grovelogging.NewUnifiedLogger("speechprep.cmd.watch")

func newWatchCmd() *cobra.Command {
	var flags configFlags
	var outputDir string
	var settle time.Duration
	var processExisting bool

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Process every manifest dropped into a directory",
		Long: `Watches a directory and runs the process pipeline on each *.csv manifest
created or rewritten in it. Outputs for a manifest named batch.csv go to
<output-dir>/batch. Stops on interrupt.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			handle := func(ctx context.Context, path string) error {
				summary, err := runManifest(ctx, cfg, path, watch.OutputDir(outputDir, path))
				if err != nil && !errors.Is(err, pipeline.ErrNoValidSamples) {
					return err
				}
				if err != nil {
					ulogWatch.Info("No valid samples").
						Field("manifest", path).
						Pretty(fmt.Sprintf("%s: no valid samples\n", path)).
						PrettyOnly().
						Emit()
				}
				printSummary(summary)
				return nil
			}

			if processExisting {
				existing, err := filepath.Glob(filepath.Join(dir, "*.csv"))
				if err != nil {
					return fmt.Errorf("failed to list manifests: %w", err)
				}
				for _, path := range existing {
					if strings.HasPrefix(filepath.Base(path), ".") {
						continue
					}
					if err := handle(ctx, path); err != nil {
						return err
					}
				}
			}

			w := watch.New(dir, settle, handle)
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()

			ulogWatch.Info("Watching directory").
				Field("dir", dir).
				Field("output_dir", outputDir).
				Pretty(fmt.Sprintf("Watching %s for manifests (Ctrl+C to stop)\n", dir)).
				PrettyOnly().
				Emit()

			<-ctx.Done()
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&outputDir, "output-dir", "./output", "Root directory for per-manifest outputs")
	cmd.Flags().DurationVar(&settle, "settle", watch.DefaultSettle, "How long a manifest must stay unchanged before processing")
	cmd.Flags().BoolVar(&processExisting, "process-existing", false, "Process manifests already in the directory before watching")

	return cmd
}
