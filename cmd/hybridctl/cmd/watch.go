package cmd

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchDebounce coalesces rapid filesystem events into a single
// re-index pass, since editors commonly emit several write/rename
// events per save.
const watchDebounce = 300 * time.Millisecond

func newWatchCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Re-index a directory of JSON documents whenever it changes",
		Long: `Watches a directory of *.json documents and runs the equivalent of
"hybridctl index <dir>" every time a file inside it is created, written,
renamed or removed. Runs until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, configDir, args[0])
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "directory to load .hybridctl.yaml from (default: current directory)")
	return cmd
}

func runWatch(cmd *cobra.Command, configDir, dir string) error {
	if configDir == "" {
		configDir = workingDir()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "watching %s for changes (ctrl-c to stop)\n", dir)

	if err := runIndex(cmd, configDir, dir); err != nil {
		slog.Warn("initial index failed", "error", err)
	}

	ctx := cmd.Context()
	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			timer.Reset(watchDebounce)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", werr)
		case <-timer.C:
			if err := runIndex(cmd, configDir, dir); err != nil {
				slog.Warn("re-index failed", "error", err)
			}
		}
	}
}
