package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RamXX/tclone/internal/config"
	"github.com/RamXX/tclone/internal/model"
	"github.com/RamXX/tclone/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import template tickets into a vault",
	Long: "Reads tickets as written by 'tclone search --json' or 'tclone show --json'\n" +
		"(a JSON array, one JSON object per line, or a single object) and stores\n" +
		"them in the vault under their own keys. Existing keys are skipped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		if from == "" {
			return errors.New("--from is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Backend != config.BackendVault {
			return errors.New("import needs the vault backend (--backend vault)")
		}
		s, err := store.Open(resolveVaultDir(cfg.Vault))
		if err != nil {
			return err
		}

		f, err := os.Open(from)
		if err != nil {
			return fmt.Errorf("open %s: %w", from, err)
		}
		defer f.Close()

		tickets, err := decodeTickets(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", from, err)
		}

		imported, skipped := importTickets(s, tickets)
		if !quiet {
			fmt.Printf("Imported %d ticket(s), skipped %d\n", imported, skipped)
			if imported > 0 {
				fmt.Println("Run 'tclone doctor' to check references to tickets that were not imported.")
			}
		}
		return nil
	},
}

// ticketRecord is the exchange form of a vault ticket: the ticket as
// 'show --json' prints it plus its web links.
type ticketRecord struct {
	model.Ticket
	RemoteLinks []store.RemoteLink `json:"remote_links,omitempty"`
}

// importTickets adds every record whose key is free. A ticket that is
// stored keeps it even when one of its web links fails.
func importTickets(s *store.Store, records []*ticketRecord) (imported, skipped int) {
	for _, r := range records {
		r.ID = strings.ToUpper(strings.TrimSpace(r.ID))
		if s.TicketExists(r.ID) {
			skipped++
			continue
		}
		if err := s.AddTicket(&r.Ticket); err != nil {
			if !quiet {
				errorf("skip %s: %v", r.ID, err)
			}
			skipped++
			continue
		}
		for _, l := range r.RemoteLinks {
			if err := s.AddRemoteLink(r.ID, l); err != nil {
				errorf("remote link %s on %s: %v", l.URL, r.ID, err)
			}
		}
		imported++
	}
	return imported, skipped
}

// decodeTickets accepts a JSON array, a single object, or JSON lines.
func decodeTickets(r io.Reader) ([]*ticketRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var tickets []*ticketRecord
		if err := json.Unmarshal(trimmed, &tickets); err != nil {
			return nil, err
		}
		return tickets, nil
	}

	var tickets []*ticketRecord
	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	buf := make([]byte, 0, 256*1024)
	scanner.Buffer(buf, 4*1024*1024)
	var pending bytes.Buffer
	for scanner.Scan() {
		pending.Write(scanner.Bytes())
		pending.WriteByte('\n')
		var t ticketRecord
		if err := json.Unmarshal(pending.Bytes(), &t); err != nil {
			// An indented object spans several lines.
			continue
		}
		pending.Reset()
		if t.ID != "" {
			tickets = append(tickets, &t)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(pending.String()) != "" {
		return nil, errors.New("trailing data is not a complete ticket")
	}
	return tickets, nil
}

func init() {
	importCmd.Flags().String("from", "", "file with tickets in JSON (required)")
	rootCmd.AddCommand(importCmd)
}
