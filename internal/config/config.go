// Package config loads tclone settings from a YAML file and TCLONE_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/RamXX/tclone/internal/fields"
	"github.com/RamXX/tclone/internal/model"
)

// Servers and backends.
const (
	ServerStage = "stage"
	ServerProd  = "prod"

	BackendJira  = "jira"
	BackendVault = "vault"
)

// Default server URLs.
const (
	StageURL = "https://projects.stage.engineering.redhat.com"
	ProdURL  = "https://projects.engineering.redhat.com"
)

// EnvPrefix prefixes every environment override, e.g. TCLONE_JIRA_TOKEN.
const EnvPrefix = "TCLONE"

// Server is one JIRA instance. The keywords custom field differs per server.
type Server struct {
	URL           string `mapstructure:"url"`
	KeywordsField string `mapstructure:"keywords_field"`
}

// Config is the effective configuration of a run.
type Config struct {
	Server  string `mapstructure:"server"`
	Backend string `mapstructure:"backend"`
	Vault   string `mapstructure:"vault"`

	TemplateProject string   `mapstructure:"template_project"`
	Project         string   `mapstructure:"project"`
	Projects        []string `mapstructure:"projects"`

	Jira struct {
		Username string `mapstructure:"username"`
		Token    string `mapstructure:"token"`
	} `mapstructure:"jira"`

	Servers map[string]Server `mapstructure:"servers"`

	Fields struct {
		PAV         string   `mapstructure:"pav"`
		Milestone   string   `mapstructure:"milestone"`
		ValidCustom []string `mapstructure:"valid_custom"`
		Unwanted    []string `mapstructure:"unwanted"`
	} `mapstructure:"fields"`

	ExcludedLinkTypes []string `mapstructure:"excluded_link_types"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// DefaultPath returns $XDG_CONFIG_HOME/tclone/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tclone", "config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server", ServerStage)
	v.SetDefault("backend", BackendJira)
	v.SetDefault("vault", "")
	v.SetDefault("template_project", "RCMTEMPL")
	v.SetDefault("project", "RCM")
	v.SetDefault("projects", []string{"RCM", "RCMWORK"})
	v.SetDefault("jira.username", "")
	v.SetDefault("jira.token", "")
	v.SetDefault("servers.stage.url", StageURL)
	v.SetDefault("servers.stage.keywords_field", fields.StageKeywordsField)
	v.SetDefault("servers.prod.url", ProdURL)
	v.SetDefault("servers.prod.keywords_field", fields.ProdKeywordsField)
	v.SetDefault("fields.pav", fields.DefaultPAVField)
	v.SetDefault("fields.milestone", fields.DefaultMilestoneField)
	v.SetDefault("fields.valid_custom", fields.DefaultValidCustomFields)
	v.SetDefault("fields.unwanted", fields.DefaultUnwantedFields)
	v.SetDefault("excluded_link_types", model.DefaultExcludedLinkTypes)
}

// Load reads the config file at path. An empty path reads DefaultPath when
// it exists; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	file := path
	if file == "" {
		if p := DefaultPath(); p != "" {
			if _, err := os.Stat(p); err == nil {
				file = p
			}
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.File = file
	return &c, nil
}

// Validate checks the values a run depends on.
func (c *Config) Validate() error {
	var errs []error
	if _, ok := c.Servers[c.Server]; !ok {
		errs = append(errs, fmt.Errorf("unknown server %q", c.Server))
	}
	if c.Backend != BackendJira && c.Backend != BackendVault {
		errs = append(errs, fmt.Errorf("backend must be %s or %s, got %q", BackendJira, BackendVault, c.Backend))
	}
	if c.TemplateProject == "" {
		errs = append(errs, errors.New("template_project is required"))
	}
	if c.Project != "" && !c.AllowedProject(c.Project) {
		errs = append(errs, fmt.Errorf("project %q is not one of %s", c.Project, strings.Join(c.Projects, ", ")))
	}
	return errors.Join(errs...)
}

// AllowedProject reports whether clones may be created in project. An empty
// allow-list allows every project.
func (c *Config) AllowedProject(project string) bool {
	return len(c.Projects) == 0 || slices.Contains(c.Projects, project)
}

// ServerURL returns the URL of the selected server.
func (c *Config) ServerURL() string {
	return c.Servers[c.Server].URL
}

// Schema returns the field schema of the selected server.
func (c *Config) Schema() fields.Schema {
	s := fields.DefaultSchema(c.Servers[c.Server].KeywordsField)
	if c.Fields.PAV != "" {
		s.PAVField = c.Fields.PAV
	}
	if c.Fields.Milestone != "" {
		s.MilestoneField = c.Fields.Milestone
	}
	if len(c.Fields.ValidCustom) > 0 {
		s.ValidCustomFields = append([]string(nil), c.Fields.ValidCustom...)
	}
	if len(c.Fields.Unwanted) > 0 {
		s.UnwantedFields = append([]string(nil), c.Fields.Unwanted...)
	}
	return s
}

// Namespace returns the clonable namespace of the template project.
func (c *Config) Namespace() model.Namespace {
	return model.Namespace{
		Prefix:            c.TemplateProject,
		ExcludedLinkTypes: append([]string(nil), c.ExcludedLinkTypes...),
	}
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	out := *c
	if out.Jira.Token != "" {
		out.Jira.Token = "********"
	}
	return out
}
