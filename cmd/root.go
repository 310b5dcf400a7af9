package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/RamXX/tclone/internal/config"
)

var (
	configFile string
	serverName string
	backend    string
	vaultDir   string
	dryRun     bool
	debug      bool
	jsonOut    bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "tclone",
	Short: "Clone JIRA template trees",
	Long: "tclone -- clones template tickets with their sub-tasks and links from a template\n" +
		"project into a target project, filling in <PAV>, <KEYWORD>, <MILESTONE> and\n" +
		"<CUSTOM_TEXT> placeholders on the way.",
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&serverName, "server", "", "JIRA server: stage or prod")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "ticket backend: jira or vault")
	rootCmd.PersistentFlags().StringVar(&vaultDir, "vault", "", "vault directory for the vault backend (default: .tclone)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "do not change anything, just report what would happen")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "print debug messages")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress non-essential output")
}

// loadConfig reads the config file and applies the persistent flags on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if serverName != "" {
		cfg.Server = serverName
	}
	if backend != "" {
		cfg.Backend = backend
	}
	if vaultDir != "" {
		cfg.Vault = vaultDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger returns the stderr logger of a run. --debug lowers the level to
// Debug, --quiet raises it to Warn.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch {
	case debug:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// resolveVaultDir returns the vault directory. An explicit setting wins;
// otherwise the tree is walked up to find .tclone.
func resolveVaultDir(configured string) string {
	if configured != "" {
		return configured
	}
	dir, _ := os.Getwd()
	for {
		candidate := dir + "/.tclone"
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := parentDir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ".tclone"
}

func parentDir(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			if i == 0 {
				return "/"
			}
			return s[:i]
		}
	}
	return s
}

func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "tclone: "+format+"\n", args...)
}
