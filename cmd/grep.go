package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/RamXX/vlt"
	"github.com/spf13/cobra"

	"github.com/RamXX/tclone/internal/config"
	"github.com/RamXX/tclone/internal/store"
	"github.com/RamXX/tclone/internal/ui"
)

var grepCmd = &cobra.Command{
	Use:   "grep <text>",
	Short: "Full-text search across the templates of a vault",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Backend != config.BackendVault {
			return errors.New("grep needs the vault backend (--backend vault)")
		}
		s, err := store.Open(resolveVaultDir(cfg.Vault))
		if err != nil {
			return err
		}

		results, err := s.Vault().SearchWithContext(vlt.SearchOptions{
			Query:    query,
			Path:     "issues",
			ContextN: 2,
		})
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("No matches.")
			return nil
		}

		for _, m := range results {
			key := strings.TrimSuffix(filepath.Base(m.File), ".md")
			fmt.Printf("%s:%d\n", ui.RenderID(key), m.Line)
			for _, line := range m.Context {
				fmt.Printf("  %s\n", line)
			}
			fmt.Println()
		}
		fmt.Printf("%d match(es)\n", len(results))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(grepCmd)
}
