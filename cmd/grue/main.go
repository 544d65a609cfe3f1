// grue is a deterministic, data-driven turn engine for text adventures.
// Usage: grue <game_directory> [save_file] [flags]
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/loomwright/grue/cli"
	"github.com/loomwright/grue/engine"
	"github.com/loomwright/grue/engine/audit"
	"github.com/loomwright/grue/engine/save"
	"github.com/loomwright/grue/loader"
	"github.com/loomwright/grue/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	noBanner   bool
	verbose    bool
	scriptPath string
	transcript string
	historyDB  string
	watch      bool
)

// saveError marks an error that should exit 3 (save/load failure) rather
// than cobra's usual 2 (usage error) or a bare 1.
type saveError struct{ err error }

func (e *saveError) Error() string { return e.err.Error() }
func (e *saveError) Unwrap() error { return e.err }

func main() {
	root := &cobra.Command{
		Use:     "grue <game_directory> [save_file]",
		Short:   "Run an interactive-fiction game built on the grue Turn Engine",
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:    cobra.RangeArgs(1, 2),
		RunE:    runGame,
	}

	root.Flags().BoolVar(&noBanner, "no-banner", false, "suppress the title banner")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging and full transcript detail")
	root.Flags().StringVar(&scriptPath, "script", "", "read commands from a file instead of stdin")
	root.Flags().StringVar(&transcript, "transcript", "", "tee all output to this file")
	root.Flags().StringVar(&historyDB, "history-db", "", "path to a SQLite audit log of committed state changes")
	root.Flags().BoolVar(&watch, "watch", false, "log a restart notice when the game directory changes (development use)")

	root.SilenceUsage = true
	err := root.Execute()
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, err)
	var se *saveError
	if errors.As(err, &se) {
		os.Exit(3)
	}
	os.Exit(2)
}

func runGame(cmd *cobra.Command, args []string) error {
	gameDir := args[0]
	var resumePath string
	if len(args) > 1 {
		resumePath = args[1]
	}

	logger := zap.NewNop()
	if verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("logger setup: %w", err)
		}
	}
	defer logger.Sync() //nolint:errcheck

	defs, err := loader.Load(gameDir)
	if err != nil {
		return fmt.Errorf("loading game: %w", err)
	}

	cfg := engine.Config{Logger: logger}
	if historyDB != "" {
		auditLog, err := audit.Open(historyDB)
		if err != nil {
			return &saveError{fmt.Errorf("opening history db: %w", err)}
		}
		defer auditLog.Close()
		cfg.Audit = auditLog
	}

	eng := engine.New(defs, cfg)

	if resumePath != "" {
		if err := resumeFromSave(eng, resumePath); err != nil {
			return &saveError{err}
		}
	}

	if watch {
		stop, err := watchGameDir(gameDir, logger)
		if err != nil {
			logger.Warn("watch disabled", zap.Error(err))
		} else {
			defer stop()
		}
	}

	if !noBanner {
		fmt.Printf("%s (%s) by %s\n\n", defs.Title, defs.Release, defs.Author)
	}

	c := cli.New(eng, defs)
	c.Trace = verbose

	if transcript != "" {
		f, err := os.Create(transcript)
		if err != nil {
			return fmt.Errorf("opening transcript: %w", err)
		}
		defer f.Close()
		c.Out = &teeWriter{primary: os.Stdout, tee: f}
	}

	if scriptPath != "" {
		f, err := os.Open(scriptPath)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c.In = f
		c.EchoInput = true
		c.Run()
		return nil
	}

	if isTerminal(os.Stdout) {
		return tui.Run(eng, defs)
	}
	c.Run()
	return nil
}

// resumeFromSave loads a save file and swaps the fresh Engine's World/RNG
// for the restored ones, ahead of the first prompt.
func resumeFromSave(eng *engine.Engine, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading save: %w", err)
	}
	sd, err := save.Load(data)
	if err != nil {
		return fmt.Errorf("parsing save: %w", err)
	}
	world, rng := save.Restore(eng.Defs, sd)
	eng.World = world
	eng.RNG = rng
	return nil
}

// watchGameDir watches the game directory during development: on any
// write or create event under gameDir, it logs that a restart is needed; it
// does not reload the game (the running
// World and RNG state cannot be swapped out mid-session without discarding
// the player's progress, so --watch notifies rather than reloads live).
func watchGameDir(gameDir string, logger *zap.Logger) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(gameDir); err != nil {
		w.Close()
		return nil, err
	}
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					logger.Info("game source changed, restart to reload", zap.String("file", ev.Name))
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("watch error", zap.Error(err))
			}
		}
	}()
	return func() { w.Close() }, nil
}

// isTerminal returns true if the given file is a terminal (not piped/redirected).
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// teeWriter duplicates every write to both the primary destination and a
// transcript file.
type teeWriter struct {
	primary *os.File
	tee     *os.File
}

func (t *teeWriter) Write(p []byte) (int, error) {
	n, err := t.primary.Write(p)
	if err != nil {
		return n, err
	}
	_, _ = t.tee.Write(p)
	return n, nil
}
