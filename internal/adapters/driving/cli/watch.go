package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rfqx/internal/connectors/filesystem"
	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driving"
	"github.com/custodia-labs/rfqx/internal/core/services"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Process documents as they arrive in a directory",
	Long: `Watch a directory tree and run the extraction cascade on every supported
document that is created or changed. Results are stored as usual.

Stop with Ctrl+C; documents in flight are finished first.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	flags := watchCmd.Flags()
	flags.IntP("workers", "w", DefaultWorkers, "documents processed concurrently")
	flags.Bool("existing", false, "also process documents already in the directory")
	flags.Float64("threshold", domain.DefaultThreshold, "confidence at which the cascade stops")
	flags.Int("char-budget", domain.DefaultCharBudget, "maximum runes sent to the analyzer")
	flags.Int("page-cap", domain.DefaultVisionPageCap, "maximum PDF pages sent to the vision model")
	flags.Bool("no-fallback", false, "disable the analyzer-only fallback")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cfg, err := extractionConfig(cmd)
	if err != nil {
		return err
	}
	workers, _ := cmd.Flags().GetInt("workers")
	existing, _ := cmd.Flags().GetBool("existing")

	root := filesystem.ResolvePath(args[0])
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, root)
	}

	docs, cleanup, err := openDocuments(runOptions{cfg: cfg})
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	watcher := filesystem.New(root)
	defer watcher.Close()

	events, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}

	var initial []string
	if existing {
		initial, err = watcher.Scan(ctx)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	var mu sync.Mutex
	inbox := services.NewInbox(docs, workers, services.WithOutcomeHandler(func(o driving.ProcessOutcome) {
		mu.Lock()
		defer mu.Unlock()
		printOutcome(out, o, cfg.Threshold)
	}))

	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", root)

	err = inbox.Start(ctx, feed(ctx, initial, events))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// feed yields initial first and then every watcher event. The returned
// channel closes when events closes or ctx is done.
func feed(ctx context.Context, initial []string, events <-chan string) <-chan string {
	paths := make(chan string)
	go func() {
		defer close(paths)
		for _, p := range initial {
			select {
			case paths <- p:
			case <-ctx.Done():
				return
			}
		}
		for {
			select {
			case p, ok := <-events:
				if !ok {
					return
				}
				select {
				case paths <- p:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return paths
}
