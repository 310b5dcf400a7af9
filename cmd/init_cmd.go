package cmd

import (
	"fmt"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/RamXX/tclone/internal/config"
	"github.com/RamXX/tclone/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a local template vault",
	Long: "Creates a vault for the vault backend: one markdown note per ticket,\n" +
		"keyed by the template project prefix.",
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix, _ := cmd.Flags().GetString("prefix")
		author, _ := cmd.Flags().GetString("author")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if prefix == "" {
			prefix = cfg.TemplateProject
		}
		if author == "" {
			u, err := user.Current()
			if err == nil {
				author = u.Username
			} else {
				author = "unknown"
			}
		}

		dir := cfg.Vault
		if dir == "" {
			dir = ".tclone"
		}
		if _, err := os.Stat(dir + "/" + store.ConfigFile); err == nil {
			return fmt.Errorf("vault already initialized at %s", dir)
		}

		s, err := store.Init(dir, prefix, author)
		if err != nil {
			return err
		}
		if !quiet {
			fmt.Printf("Initialized tclone vault at %s (prefix: %s)\n", s.Dir(), prefix)
			if cfg.Backend != config.BackendVault {
				fmt.Println("Use --backend vault (or backend: vault in the config) to work with it.")
			}
		}
		return nil
	},
}

func init() {
	initCmd.Flags().String("prefix", "", "template project key (default from config)")
	initCmd.Flags().String("author", "", "user recorded as reporter of clones (defaults to OS user)")
	rootCmd.AddCommand(initCmd)
}
