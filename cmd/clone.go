package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RamXX/tclone/internal/clone"
	"github.com/RamXX/tclone/internal/fields"
	"github.com/RamXX/tclone/internal/format"
	"github.com/RamXX/tclone/internal/graph"
	"github.com/RamXX/tclone/internal/model"
	"github.com/RamXX/tclone/internal/ui"
)

// cloneMode is picked from the flag combination.
type cloneMode int

const (
	modeInvalid cloneMode = iota
	// modeRoots clones the --parent tickets with everything they reach.
	modeRoots
	// modeSubtask clones --subtask into the existing ticket --parent.
	modeSubtask
	// modeSearch clones the tickets matching --pav and --keywords.
	modeSearch
)

// selectMode picks the mode from the parsed --parent keys. Separators
// without keys count as no parent.
func selectMode(parents []string, subtask, pav string) (cloneMode, error) {
	subtask = strings.TrimSpace(subtask)
	pav = strings.TrimSpace(pav)
	switch {
	case len(parents) == 0 && pav != "":
		return modeSearch, nil
	case subtask != "" && len(parents) == 1:
		return modeSubtask, nil
	case subtask != "" && len(parents) > 1:
		return modeInvalid, fmt.Errorf("--subtask takes exactly one --parent, got %d", len(parents))
	case len(parents) > 0:
		return modeRoots, nil
	default:
		return modeInvalid, errors.New("invalid combination of arguments: use --parent, --subtask with --parent, or --pav")
	}
}

// cloneRequest is the parsed command line of a clone run.
type cloneRequest struct {
	Mode     cloneMode
	Parents  []string
	Subtask  string
	Position *int // zero-based
	PAV      string
	Keywords []string
}

var cloneCmd = &cobra.Command{
	Use:   "clone",
	Short: "Clone template tickets into the target project",
	Long: `Clone template tickets with their sub-tasks and links.

  tclone clone --parent RCMTEMPL-1,RCMTEMPL-7       clone these tickets and everything they reach
  tclone clone --subtask RCMTEMPL-3 --parent RCM-42 clone one sub-task into an existing ticket
  tclone clone --pav spam-1.0 --keywords beta       clone the tickets matching PAV and keywords

With --parent, --pav and --keywords override the fields of every clone.
Keywords never restrict sub-tasks when searching.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		parent, _ := flags.GetString("parent")
		subtask, _ := flags.GetString("subtask")
		position, _ := flags.GetString("position")
		project, _ := flags.GetString("project")
		pav, _ := flags.GetString("pav")
		keywords, _ := flags.GetString("keywords")
		labels, _ := flags.GetString("label")
		milestone, _ := flags.GetString("milestone")
		assignee, _ := flags.GetString("assignee")
		reporter, _ := flags.GetString("reporter")
		customText, _ := flags.GetString("custom-text")
		yes, _ := flags.GetBool("yes")

		req := cloneRequest{
			Parents:  parseKeys(parent),
			Subtask:  strings.ToUpper(strings.TrimSpace(subtask)),
			PAV:      pav,
			Keywords: splitList(keywords),
		}
		mode, err := selectMode(req.Parents, req.Subtask, pav)
		if err != nil {
			return err
		}
		req.Mode = mode
		pos, err := parsePosition(position)
		if err != nil {
			return err
		}
		req.Position = pos

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if project == "" {
			project = cfg.Project
		}
		if !cfg.AllowedProject(project) {
			return fmt.Errorf("project %q is not one of %s", project, strings.Join(cfg.Projects, ", "))
		}

		logger := newLogger()
		t, err := openTracker(cfg, logger)
		if err != nil {
			return err
		}

		schema := cfg.Schema()
		opts := clone.Options{
			Project: project,
			Inject: fields.Inject(fields.Overrides{
				PAV:       pav,
				Keywords:  req.Keywords,
				Labels:    splitList(labels),
				Milestone: milestone,
				Assignee:  assignee,
				Reporter:  reporter,
			}, schema),
			Substitutions: substitutions(customText),
			DryRun:        dryRun,
			Confirm:       confirmer(yes),
			Logger:        logger,
		}
		logger.Debug("clone options", "mode", req.Mode, "project", project, "substitutions", opts.Substitutions)

		eng, err := runClone(cmd.Context(), t, newTransformer(cfg, logger), opts, req, cfg.TemplateProject)
		if errors.Is(err, clone.ErrCancelled) {
			if !quiet {
				fmt.Println("Cancelled, no changes were made.")
			}
			return nil
		}
		if err != nil {
			// Failures are per root or per link; what succeeded is still reported.
			errorf("%v", err)
		}
		if eng == nil {
			return nil
		}
		return reportClone(eng)
	},
}

func init() {
	f := cloneCmd.Flags()
	f.String("parent", "", "comma separated template keys to clone, or with --subtask the existing parent")
	f.String("subtask", "", "template sub-task to clone into the existing ticket --parent")
	f.String("position", "", "1-based position of the cloned sub-task under --parent")
	f.String("project", "", "project the clones are created in (default from config)")
	f.String("pav", "", "Product Affects Version: search key without --parent, override with it")
	f.String("keywords", "", "comma separated keywords: search filter without --parent, override with it")
	f.String("label", "", "comma separated labels set on every clone")
	f.String("milestone", "", "target milestone set on every clone")
	f.String("assignee", "", "assignee of every clone (default: current user)")
	f.String("reporter", "", "reporter of every clone (default: current user)")
	f.String("custom-text", "", "value substituted for <CUSTOM_TEXT>")
	f.BoolP("yes", "y", false, "answer yes to confirmation prompts")
	rootCmd.AddCommand(cloneCmd)
}

// runClone performs one clone run and replays the collected links. The
// engine is returned whenever one was built, also on error, so that the
// caller can report the partial result.
func runClone(ctx context.Context, t tracker, tf clone.Transformer, opts clone.Options, req cloneRequest, templateProject string) (*clone.Engine, error) {
	switch req.Mode {
	case modeSearch:
		q := model.Query{
			Project:              templateProject,
			PAV:                  req.PAV,
			Keywords:             req.Keywords,
			KeywordsSkipSubTasks: true,
		}
		ids, err := t.Search(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", q, err)
		}
		opts.Matched = ids
		opts.RestrictToMatched = true
		eng := clone.New(t, tf, opts)
		roots, err := fetchAll(ctx, t, ids)
		if err != nil {
			return eng, err
		}
		return eng, cloneAndLink(ctx, eng, roots)

	case modeSubtask:
		if len(req.Parents) != 1 {
			return nil, fmt.Errorf("--subtask takes exactly one --parent, got %d", len(req.Parents))
		}
		eng := clone.New(t, tf, opts)
		sub, err := t.Fetch(ctx, req.Subtask)
		if err != nil {
			return eng, fmt.Errorf("fetch %s: %w", req.Subtask, err)
		}
		if err := eng.CloneSubtaskIntoParent(ctx, sub, req.Parents[0], req.Position); err != nil {
			return eng, err
		}
		return eng, eng.ReplayLinks(ctx)

	case modeRoots:
		eng := clone.New(t, tf, opts)
		var errs []error
		var roots []*model.Ticket
		for _, id := range req.Parents {
			tk, err := t.Fetch(ctx, id)
			if err != nil {
				errs = append(errs, fmt.Errorf("fetch %s: %w", id, err))
				continue
			}
			roots = append(roots, tk)
		}
		errs = append(errs, cloneAndLink(ctx, eng, roots))
		return eng, errors.Join(errs...)

	default:
		return nil, errors.New("invalid clone mode")
	}
}

func cloneAndLink(ctx context.Context, eng *clone.Engine, roots []*model.Ticket) error {
	err := eng.CloneAll(ctx, roots)
	return errors.Join(err, eng.ReplayLinks(ctx))
}

// reportClone prints what a run created, or would create in dry-run.
func reportClone(eng *clone.Engine) error {
	records := eng.Records()
	if jsonOut {
		return format.JSON(os.Stdout, records)
	}
	if quiet {
		return nil
	}
	var edges []graph.Edge
	for _, p := range eng.Pending() {
		edges = append(edges, graph.Edge{A: p.SourceA, B: p.SourceB, Type: p.Type})
	}
	format.Plan(os.Stdout, graph.Build(records, edges), dryRun)
	return nil
}

// parsePosition converts a 1-based --position to a zero-based index. An
// empty value means no position.
func parsePosition(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --position %q: must be a number", s)
	}
	n--
	return &n, nil
}

// splitList splits a comma separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseKeys is splitList for ticket keys, which are upper-cased.
func parseKeys(s string) []string {
	keys := splitList(s)
	for i, k := range keys {
		keys[i] = strings.ToUpper(k)
	}
	return keys
}

func substitutions(customText string) map[string]string {
	subs := map[string]string{}
	if customText != "" {
		subs[fields.VarCustomText] = customText
	}
	return subs
}

// confirmer picks how position prompts are answered: --yes accepts, a
// terminal asks, anything else declines.
func confirmer(yes bool) clone.Confirmer {
	switch {
	case yes:
		return clone.AutoAccept
	case ui.IsInteractive():
		return huhConfirmer{}
	default:
		return clone.AutoDecline
	}
}
