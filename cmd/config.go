package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/RamXX/tclone/internal/config"
	"github.com/RamXX/tclone/internal/format"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long:  "Prints the configuration after defaults, the config file, TCLONE_* variables and flags. The token is masked.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		red := cfg.Redacted()
		if jsonOut {
			return format.JSON(os.Stdout, configView(red))
		}
		data, err := yaml.Marshal(configView(red))
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.File == "" {
			fmt.Printf("%s (not present, using defaults)\n", config.DefaultPath())
			return nil
		}
		fmt.Println(cfg.File)
		return nil
	},
}

// configView lays the config out with the same keys the file uses.
func configView(c config.Config) map[string]any {
	servers := map[string]any{}
	for name, s := range c.Servers {
		servers[name] = map[string]any{"url": s.URL, "keywords_field": s.KeywordsField}
	}
	return map[string]any{
		"server":           c.Server,
		"backend":          c.Backend,
		"vault":            c.Vault,
		"template_project": c.TemplateProject,
		"project":          c.Project,
		"projects":         c.Projects,
		"jira": map[string]any{
			"username": c.Jira.Username,
			"token":    c.Jira.Token,
		},
		"servers": servers,
		"fields": map[string]any{
			"pav":          c.Fields.PAV,
			"milestone":    c.Fields.Milestone,
			"valid_custom": c.Fields.ValidCustom,
			"unwanted":     c.Fields.Unwanted,
		},
		"excluded_link_types": c.ExcludedLinkTypes,
	}
}

func init() {
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}
