package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RamXX/tclone/internal/format"
	"github.com/RamXX/tclone/internal/store"
)

var showCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show ticket detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.ToUpper(strings.TrimSpace(args[0]))

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		t, err := openTracker(cfg, newLogger())
		if err != nil {
			return err
		}

		ticket, err := t.Fetch(cmd.Context(), key)
		if err != nil {
			return fmt.Errorf("ticket %s: %w", key, err)
		}
		// The vault keeps web links and comments locally; JIRA shows them
		// on the issue page.
		var remote []store.RemoteLink
		var comments string
		if s, ok := t.(*store.Store); ok {
			if remote, err = s.RemoteLinks(key); err != nil {
				return err
			}
			if comments, err = s.Comments(key); err != nil {
				return err
			}
		}

		if jsonOut {
			return format.JSON(os.Stdout, ticketRecord{Ticket: *ticket, RemoteLinks: remote})
		}
		format.Detail(os.Stdout, ticket, cfg.Schema())
		format.Notes(os.Stdout, remote, comments)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
