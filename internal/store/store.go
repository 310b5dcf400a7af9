// Package store is a local, file-based tracker on a vlt vault. Every ticket
// is a markdown note under issues/ with its fields in YAML frontmatter. It
// implements clone.TicketStore so templates can be authored, searched and
// cloned without a JIRA server.
package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/RamXX/vlt"
	"gopkg.in/yaml.v3"

	"github.com/RamXX/tclone/internal/fields"
	"github.com/RamXX/tclone/internal/model"
)

// ConfigFile is the vault-level configuration file.
const ConfigFile = ".tclone.yaml"

// Config holds vault-level settings stored in .tclone.yaml.
type Config struct {
	Version string `yaml:"version"`
	// Prefix is the key of the template project.
	Prefix    string `yaml:"prefix"`
	CreatedBy string `yaml:"created_by"`
}

// Store wraps a vlt.Vault with tracker operations.
type Store struct {
	vault  *vlt.Vault
	config Config
	dir    string

	ns     model.Namespace
	schema fields.Schema
	log    *slog.Logger
}

// Open opens an existing vault at dir.
func Open(dir string) (*Store, error) {
	v, err := vlt.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}
	s := &Store{vault: v, dir: dir}
	if err := s.loadConfig(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	s.setDefaults()
	return s, nil
}

// Init creates a new vault at dir. prefix is the template project key and
// author answers CurrentUser.
func Init(dir, prefix, author string) (*Store, error) {
	for _, sub := range []string{"issues", ".trash"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", sub, err)
		}
	}

	cfg := Config{
		Version:   "1",
		Prefix:    prefix,
		CreatedBy: author,
	}
	s := &Store{config: cfg, dir: dir}
	if err := s.SaveConfig(); err != nil {
		return nil, err
	}

	v, err := vlt.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open vault after init: %w", err)
	}
	s.vault = v
	s.setDefaults()
	return s, nil
}

func (s *Store) setDefaults() {
	s.ns = model.Namespace{Prefix: s.config.Prefix, ExcludedLinkTypes: model.DefaultExcludedLinkTypes}
	s.schema = fields.DefaultSchema(fields.StageKeywordsField)
	s.log = slog.New(slog.DiscardHandler)
}

func (s *Store) loadConfig() error {
	data, err := os.ReadFile(filepath.Join(s.dir, ConfigFile))
	if err != nil {
		return fmt.Errorf("read %s: %w", ConfigFile, err)
	}
	return yaml.Unmarshal(data, &s.config)
}

// SaveConfig writes the current config back to .tclone.yaml.
func (s *Store) SaveConfig() error {
	data, err := yaml.Marshal(s.config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, ConfigFile), data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// WithNamespace sets the namespace fetched tickets are filtered through.
func (s *Store) WithNamespace(ns model.Namespace) *Store {
	s.ns = ns
	return s
}

// WithSchema sets the field ids Search matches PAV and keywords against.
func (s *Store) WithSchema(schema fields.Schema) *Store {
	s.schema = schema
	return s
}

// WithLogger sets the logger.
func (s *Store) WithLogger(logger *slog.Logger) *Store {
	if logger != nil {
		s.log = logger
	}
	return s
}

// Vault returns the underlying vlt.Vault for direct operations.
func (s *Store) Vault() *vlt.Vault { return s.vault }

// Config returns the vault configuration.
func (s *Store) Config() Config { return s.config }

// Dir returns the vault root directory.
func (s *Store) Dir() string { return s.dir }

// Prefix returns the template project key.
func (s *Store) Prefix() string { return s.config.Prefix }

func (s *Store) ticketPath(id string) string {
	return filepath.Join(s.dir, "issues", id+".md")
}

// TicketExists checks whether a ticket with the given key exists.
func (s *Store) TicketExists(id string) bool {
	_, err := os.Stat(s.ticketPath(id))
	return err == nil
}
