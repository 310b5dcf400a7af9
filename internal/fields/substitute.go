package fields

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/RamXX/tclone/internal/model"
)

// Variable names recognized in summary and description as <NAME>.
const (
	VarPAV        = "PAV"
	VarKeyword    = "KEYWORD"
	VarMilestone  = "MILESTONE"
	VarCustomText = "CUSTOM_TEXT"
)

type resolver func(f model.Fields) string

type variable struct {
	name    string
	pattern *regexp.Regexp
	resolve resolver
}

// Substituter replaces <VAR> placeholders with values taken from the clone's
// fields or from user supplied substitutions.
type Substituter struct {
	vars   []variable
	logger *slog.Logger
}

// NewSubstituter builds the variable table. Built-in variables come first;
// user supplied names are appended in sorted order.
func NewSubstituter(schema Schema, custom map[string]string, logger *slog.Logger) *Substituter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	joined := func(field string) resolver {
		return func(f model.Fields) string { return strings.Join(f.Values(field), ", ") }
	}
	s := &Substituter{logger: logger}
	s.add(VarPAV, joined(schema.PAVField))
	s.add(VarKeyword, joined(schema.KeywordsField))
	s.add(VarMilestone, joined(schema.MilestoneField))
	s.add(VarCustomText, func(model.Fields) string { return custom[VarCustomText] })

	names := make([]string, 0, len(custom))
	for name := range custom {
		if name != VarCustomText {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		value := custom[name]
		s.add(name, func(model.Fields) string { return value })
	}
	return s
}

func (s *Substituter) add(name string, r resolver) {
	s.vars = append(s.vars, variable{
		name:    name,
		pattern: regexp.MustCompile(regexp.QuoteMeta("<" + name + ">")),
		resolve: r,
	})
}

// Apply returns text with every resolvable placeholder replaced. A
// placeholder whose value is empty is left in place and logged.
func (s *Substituter) Apply(text string, f model.Fields) string {
	result := text
	for _, v := range s.vars {
		if !v.pattern.MatchString(result) {
			continue
		}
		value := v.resolve(f)
		if value == "" {
			s.logger.Warn("not substituting placeholder: no value", "var", v.name)
			continue
		}
		s.logger.Debug("substituting placeholder", "var", v.name, "value", value)
		result = v.pattern.ReplaceAllLiteralString(result, value)
	}
	return result
}
