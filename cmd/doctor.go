package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RamXX/tclone/internal/config"
	"github.com/RamXX/tclone/internal/format"
	"github.com/RamXX/tclone/internal/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Validate the integrity of a template vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		fix, _ := cmd.Flags().GetBool("fix")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Backend != config.BackendVault {
			return errors.New("doctor needs the vault backend (--backend vault)")
		}
		s, err := store.Open(resolveVaultDir(cfg.Vault))
		if err != nil {
			return err
		}
		s.WithLogger(newLogger())

		problems, err := s.Check(fix)
		if err != nil {
			return err
		}
		if jsonOut {
			return format.JSON(os.Stdout, problems)
		}

		fixed := 0
		for _, p := range problems {
			fmt.Println(p)
			if p.Fixed {
				fmt.Printf("  -> fixed\n")
				fixed++
			}
		}
		if len(problems) == 0 {
			fmt.Println("All tickets passed validation.")
			return nil
		}
		fmt.Printf("\n%d problem(s) found, %d fixed.\n", len(problems), fixed)
		return nil
	},
}

func init() {
	doctorCmd.Flags().Bool("fix", false, "attempt to fix problems")
	rootCmd.AddCommand(doctorCmd)
}
