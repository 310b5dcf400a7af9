package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/RamXX/tclone/internal/format"
	"github.com/RamXX/tclone/internal/model"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "List template tickets matching a PAV and keywords",
	Long: "Prints the number of matching template tickets, then the key, summary,\n" +
		"PAVs and labels of each.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pav, _ := cmd.Flags().GetString("pav")
		keywords, _ := cmd.Flags().GetString("keywords")

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
		q := model.Query{Project: cfg.TemplateProject, PAV: pav, Keywords: splitList(keywords)}
		logger.Debug("searching", "query", q.String())
		ids, err := t.Search(ctx, q)
		if err != nil {
			return err
		}
		tickets, err := fetchAll(ctx, t, ids)
		if err != nil {
			return err
		}

		if jsonOut {
			return format.JSON(os.Stdout, tickets)
		}
		format.SearchResults(os.Stdout, tickets, cfg.Schema())
		return nil
	},
}

func init() {
	searchCmd.Flags().String("pav", "", "Product Affects Version to search for")
	searchCmd.Flags().String("keywords", "", "comma separated keywords to search for")
	rootCmd.AddCommand(searchCmd)
}
