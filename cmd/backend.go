package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/RamXX/tclone/internal/clone"
	"github.com/RamXX/tclone/internal/config"
	"github.com/RamXX/tclone/internal/fields"
	"github.com/RamXX/tclone/internal/jira"
	"github.com/RamXX/tclone/internal/model"
	"github.com/RamXX/tclone/internal/store"
)

// tracker is what the commands need from a backend: the clone store plus
// PAV maintenance.
type tracker interface {
	clone.TicketStore
	AppendPAV(ctx context.Context, id, pav string) error
}

// openTracker connects the backend selected in cfg.
func openTracker(cfg *config.Config, logger *slog.Logger) (tracker, error) {
	schema := cfg.Schema()
	switch cfg.Backend {
	case config.BackendVault:
		s, err := store.Open(resolveVaultDir(cfg.Vault))
		if err != nil {
			return nil, err
		}
		return s.WithNamespace(cfg.Namespace()).WithSchema(schema).WithLogger(logger), nil
	case config.BackendJira:
		if cfg.Jira.Token == "" {
			return nil, fmt.Errorf("no JIRA token: set jira.token in %s or %s_JIRA_TOKEN", config.DefaultPath(), config.EnvPrefix)
		}
		c := jira.NewClient(cfg.ServerURL(), cfg.Jira.Username, cfg.Jira.Token, cfg.Namespace(), logger)
		c.PAVField = schema.PAVField
		return c, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// fetchAll reads tickets in order, stopping at the first failure.
func fetchAll(ctx context.Context, t tracker, ids []string) ([]*model.Ticket, error) {
	tickets := make([]*model.Ticket, 0, len(ids))
	for _, id := range ids {
		tk, err := t.Fetch(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", id, err)
		}
		tickets = append(tickets, tk)
	}
	return tickets, nil
}

// newTransformer returns the field transformer for cfg.
func newTransformer(cfg *config.Config, logger *slog.Logger) *fields.Transformer {
	return fields.NewTransformer(cfg.Schema(), logger)
}
