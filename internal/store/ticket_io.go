package store

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/RamXX/vlt"
	"gopkg.in/yaml.v3"

	"github.com/RamXX/tclone/internal/clone"
	"github.com/RamXX/tclone/internal/enforce"
	"github.com/RamXX/tclone/internal/idgen"
	"github.com/RamXX/tclone/internal/model"
)

var _ clone.TicketStore = (*Store)(nil)

// RemoteLink is a web link attached to a ticket.
type RemoteLink struct {
	URL   string `yaml:"url" json:"url"`
	Title string `yaml:"title,omitempty" json:"title,omitempty"`
}

// document is the frontmatter of a ticket note. Relationship data is kept
// unfiltered; the namespace is applied when a ticket is fetched.
type document struct {
	ID          string       `yaml:"id"`
	Project     string       `yaml:"project"`
	Summary     string       `yaml:"summary"`
	Status      string       `yaml:"status"`
	Type        string       `yaml:"type"`
	Parent      string       `yaml:"parent,omitempty"`
	Subtasks    []string     `yaml:"subtasks,omitempty"`
	Links       []model.Link `yaml:"links,omitempty"`
	RemoteLinks []RemoteLink `yaml:"remote_links,omitempty"`
	InternalID  string       `yaml:"internal_id"`
	Fields      model.Fields `yaml:"fields,omitempty"`
	ContentHash string       `yaml:"content_hash"`
}

// relationKeys are fields held in dedicated frontmatter keys, never in the
// free-form field bag.
var relationKeys = []string{"project", "summary", "status", "issuetype", "parent", "subtasks", "issuelinks"}

func newDocument(id string, f model.Fields) *document {
	d := &document{
		ID:      id,
		Project: projectOf(id),
		Summary: f.String("summary"),
		Status:  model.StatusOpen,
		Type:    model.TypeTask,
		Fields:  f.Clone(),
	}
	if it, ok := f["issuetype"].(map[string]any); ok {
		if name, _ := it["name"].(string); name != "" {
			d.Type = name
		}
	}
	if p, ok := f["parent"].(map[string]any); ok {
		d.Parent, _ = p["key"].(string)
	}
	if d.Parent != "" {
		d.Type = model.TypeSubTask
	}
	for _, k := range relationKeys {
		delete(d.Fields, k)
	}
	if n, ok := idgen.KeyNumber(id); ok {
		d.InternalID = fmt.Sprintf("%d", 10000+n)
	}
	d.ContentHash = enforce.ComputeContentHash(d.Summary, d.Fields.String("description"))
	return d
}

func projectOf(id string) string {
	if i := strings.LastIndex(id, "-"); i > 0 {
		return id[:i]
	}
	return ""
}

// ticket returns the tracker view of d, relationships filtered through ns.
func (d *document) ticket(ns model.Namespace) *model.Ticket {
	f := d.Fields.Clone()
	if f == nil {
		f = model.Fields{}
	}
	f["summary"] = d.Summary
	f["project"] = map[string]any{"key": d.Project}
	f["issuetype"] = map[string]any{"name": d.Type}
	f["status"] = map[string]any{"name": d.Status}

	t := &model.Ticket{
		ID:         d.ID,
		InternalID: d.InternalID,
		Status:     d.Status,
		IssueType:  d.Type,
		Fields:     f,
	}
	ns.Apply(t, model.Relations{
		Parent:   d.Parent,
		Subtasks: d.Subtasks,
		Links:    d.Links,
	})
	return t
}

// unfiltered returns d as a ticket with every relationship, for validation.
func (d *document) unfiltered() *model.Ticket {
	return &model.Ticket{
		ID:         d.ID,
		Status:     d.Status,
		IssueType:  d.Type,
		ParentID:   d.Parent,
		SubtaskIDs: d.Subtasks,
		Links:      d.Links,
	}
}

func buildBody(description string) string {
	var sb strings.Builder
	sb.WriteString("\n## Description\n")
	if description != "" {
		sb.WriteString(description)
		sb.WriteString("\n")
	}
	sb.WriteString("\n" + commentsHeading + "\n")
	return sb.String()
}

// serialize converts a document and body to frontmatter + body markdown.
func serialize(d *document, body string) (string, error) {
	fm, err := yaml.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	return fmt.Sprintf("---\n%s---\n%s", fm, body), nil
}

// deserialize parses frontmatter + body markdown.
func deserialize(content string) (*document, string, error) {
	yamlStr, bodyStart, found := vlt.ExtractFrontmatter(content)
	if !found {
		return nil, "", fmt.Errorf("no frontmatter found")
	}
	var d document
	if err := yaml.Unmarshal([]byte(yamlStr), &d); err != nil {
		return nil, "", fmt.Errorf("unmarshal frontmatter: %w", err)
	}
	for k, v := range d.Fields {
		d.Fields[k] = plainValue(v)
	}
	var body string
	lines := strings.SplitAfter(content, "\n")
	if bodyStart < len(lines) {
		body = strings.Join(lines[bodyStart:], "")
	}
	return &d, body, nil
}

// plainValue turns the nested mappings yaml decodes as model.Fields back
// into map[string]any, the shape the REST backend hands out.
func plainValue(v any) any {
	switch x := v.(type) {
	case model.Fields:
		return plainMap(x)
	case map[string]any:
		return plainMap(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plainValue(e)
		}
		return out
	default:
		return v
	}
}

func plainMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = plainValue(v)
	}
	return out
}

func (s *Store) read(id string) (*document, string, error) {
	if !s.TicketExists(id) {
		return nil, "", fmt.Errorf("read %s: %w", id, clone.ErrNotFound)
	}
	content, err := s.vault.Read(id, "")
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", id, err)
	}
	d, body, err := deserialize(content)
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", id, err)
	}
	return d, body, nil
}

func (s *Store) write(d *document, body string) error {
	if err := enforce.ValidateTicket(d.unfiltered()); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	content, err := serialize(d, body)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.ticketPath(d.ID), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", d.ID, err)
	}
	return nil
}

// update applies fn to the frontmatter of id and writes it back. The body
// is kept as it is.
func (s *Store) update(id string, fn func(d *document) error) error {
	d, body, err := s.read(id)
	if err != nil {
		return err
	}
	if err := fn(d); err != nil {
		return err
	}
	return s.write(d, body)
}

// AddTicket writes a ticket under its own key. Relationships are stored as
// given and are not mirrored onto the other tickets; it is meant for
// authoring templates and importing fixtures.
func (s *Store) AddTicket(t *model.Ticket) error {
	if s.TicketExists(t.ID) {
		return fmt.Errorf("ticket %s already exists", t.ID)
	}
	d := newDocument(t.ID, t.Fields)
	if t.Status != "" {
		d.Status = t.Status
	}
	d.Type = t.IssueType
	d.Parent = t.ParentID
	d.Subtasks = append([]string(nil), t.SubtaskIDs...)
	d.Links = append([]model.Link(nil), t.Links...)
	if t.InternalID != "" {
		d.InternalID = t.InternalID
	}
	return s.create(d)
}

func (s *Store) create(d *document) error {
	if err := enforce.ValidateTicket(d.unfiltered()); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	content, err := serialize(d, buildBody(d.Fields.String("description")))
	if err != nil {
		return err
	}
	path := fmt.Sprintf("issues/%s.md", d.ID)
	if err := s.vault.Create(d.ID, path, content, true, false); err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

// Fetch reads a ticket. A missing ticket wraps clone.ErrNotFound.
func (s *Store) Fetch(_ context.Context, id string) (*model.Ticket, error) {
	d, _, err := s.read(id)
	if err != nil {
		return nil, err
	}
	return d.ticket(s.ns), nil
}

// Create writes a new ticket from a clone field bag and returns its key.
// The key is the next free number in the project named by the bag. A
// parent in the vault gets the new ticket appended to its sub-tasks.
func (s *Store) Create(_ context.Context, f model.Fields) (string, error) {
	if err := enforce.ValidateFields(f); err != nil {
		return "", err
	}
	p, _ := f["project"].(map[string]any)
	project, _ := p["key"].(string)
	id, err := idgen.NextKey(project, 1, s.TicketExists)
	if err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}

	d := newDocument(id, f)
	if d.Parent != "" && !s.TicketExists(d.Parent) {
		return "", fmt.Errorf("parent %s: %w", d.Parent, clone.ErrNotFound)
	}
	if err := s.create(d); err != nil {
		return "", err
	}
	if d.Parent != "" {
		err := s.update(d.Parent, func(p *document) error {
			p.Subtasks = append(p.Subtasks, id)
			return nil
		})
		if err != nil {
			return id, fmt.Errorf("attach %s to %s: %w", id, d.Parent, err)
		}
	}
	s.log.Debug("created ticket", "id", id, "parent", d.Parent)
	return id, nil
}

// CurrentUser returns the vault author.
func (s *Store) CurrentUser(context.Context) (string, error) {
	if s.config.CreatedBy == "" {
		return "", fmt.Errorf("vault has no created_by in %s", ConfigFile)
	}
	return s.config.CreatedBy, nil
}
