package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RamXX/tclone/internal/model"
)

var pavAppendCmd = &cobra.Command{
	Use:   "pav-append",
	Short: "Append a PAV to every template ticket carrying another PAV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pav, _ := cmd.Flags().GetString("pav")
		appendPAV, _ := cmd.Flags().GetString("pav-append")
		if pav == "" || appendPAV == "" {
			return errors.New("--pav and --pav-append are required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger()
		t, err := openTracker(cfg, logger)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		ids, err := t.Search(ctx, model.Query{Project: cfg.TemplateProject, PAV: pav})
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return fmt.Errorf("no tickets match PAV %q", pav)
		}

		var errs []error
		for _, id := range ids {
			logger.Debug("appending PAV", "id", id, "pav", appendPAV)
			if dryRun {
				continue
			}
			if err := t.AppendPAV(ctx, id, appendPAV); err != nil {
				logger.Error("append PAV failed", "id", id, "err", err)
				errs = append(errs, fmt.Errorf("%s: %w", id, err))
			}
		}
		if !quiet {
			verb := "Appended"
			if dryRun {
				verb = "Would append"
			}
			fmt.Printf("%s %s to %d ticket(s)\n", verb, appendPAV, len(ids)-len(errs))
		}
		return errors.Join(errs...)
	},
}

func init() {
	pavAppendCmd.Flags().String("pav", "", "find all template tickets with this PAV (required)")
	pavAppendCmd.Flags().String("pav-append", "", "PAV appended to every ticket found (required)")
	rootCmd.AddCommand(pavAppendCmd)
}
