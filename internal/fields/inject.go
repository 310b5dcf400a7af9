package fields

import "github.com/RamXX/tclone/internal/model"

// Overrides are the field values a user forces onto every clone.
type Overrides struct {
	PAV       string
	Keywords  []string
	Labels    []string
	Milestone string
	Assignee  string
	Reporter  string
}

// Inject converts overrides into tracker-shaped fields. Unset overrides are
// omitted.
func Inject(o Overrides, schema Schema) model.Fields {
	f := model.Fields{}
	if o.PAV != "" {
		f[schema.PAVField] = []any{map[string]any{"value": o.PAV}}
	}
	if len(o.Keywords) > 0 && schema.KeywordsField != "" {
		f[schema.KeywordsField] = reduceList(o.Keywords, "value")
	}
	if len(o.Labels) > 0 {
		labels := make([]any, len(o.Labels))
		for i, l := range o.Labels {
			labels[i] = l
		}
		f["labels"] = labels
	}
	if o.Milestone != "" {
		f[schema.MilestoneField] = []any{map[string]any{"value": o.Milestone}}
	}
	if o.Assignee != "" {
		f["assignee"] = map[string]any{"name": o.Assignee}
	}
	if o.Reporter != "" {
		f["reporter"] = map[string]any{"name": o.Reporter}
	}
	return f
}
