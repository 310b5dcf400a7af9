package fields

import (
	"log/slog"
	"reflect"
	"strings"

	"github.com/RamXX/tclone/internal/model"
)

// Options are the per-clone inputs of a transform.
type Options struct {
	Project string
	// User becomes reporter and assignee unless Inject overrides them.
	User string
	// ParentID makes the clone a sub-task of an existing ticket.
	ParentID string
	// Inject overrides fields after cleanup and before substitution.
	Inject model.Fields
	// Substitutions holds user supplied variables such as CUSTOM_TEXT.
	Substitutions map[string]string
}

// Transformer builds clone field bags according to a Schema.
type Transformer struct {
	Schema Schema
	Logger *slog.Logger
}

// NewTransformer returns a Transformer for schema. A nil logger discards.
func NewTransformer(schema Schema, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Transformer{Schema: schema, Logger: logger}
}

// Transform returns the field bag for a new ticket cloned from src. src is
// not modified.
func (tr *Transformer) Transform(src *model.Ticket, opts Options) model.Fields {
	out := src.Fields.Clone()
	tr.removeUnwanted(out)
	tr.removeCustomFields(out)
	tr.fixShapes(out)

	if opts.Project != "" {
		out["project"] = map[string]any{"key": opts.Project}
	}
	if opts.User != "" {
		out["reporter"] = map[string]any{"name": opts.User}
		out["assignee"] = map[string]any{"name": opts.User}
	}
	if opts.ParentID != "" {
		out["parent"] = map[string]any{"key": opts.ParentID}
	}
	for k, v := range opts.Inject {
		out[k] = v
	}

	// Substitution reads PAV, keywords and milestone from the final bag, so
	// it has to run after injection.
	sub := NewSubstituter(tr.Schema, opts.Substitutions, tr.Logger)
	for _, key := range []string{"summary", "description"} {
		if s, ok := out[key].(string); ok {
			out[key] = sub.Apply(s, out)
		}
	}
	return out
}

func (tr *Transformer) removeUnwanted(f model.Fields) {
	unwanted := make(map[string]bool, len(tr.Schema.UnwantedFields))
	for _, k := range tr.Schema.UnwantedFields {
		unwanted[k] = true
	}
	for k, v := range f {
		if unwanted[k] || isEmpty(v) {
			delete(f, k)
		}
	}
}

func (tr *Transformer) removeCustomFields(f model.Fields) {
	valid := make(map[string]bool, len(tr.Schema.ValidCustomFields)+1)
	for _, k := range tr.Schema.ValidCustomFields {
		valid[k] = true
	}
	if tr.Schema.KeywordsField != "" {
		valid[tr.Schema.KeywordsField] = true
	}
	for k := range f {
		if strings.HasPrefix(k, "customfield_") && !valid[k] {
			delete(f, k)
		}
	}
}

// fixShapes strips tracker-internal ids from nested objects. Copying them
// verbatim makes the create call fail.
func (tr *Transformer) fixShapes(f model.Fields) {
	for _, k := range tr.Schema.NameFields {
		if m, ok := f[k].(map[string]any); ok {
			f[k] = map[string]any{"name": m["name"]}
		}
	}
	for _, k := range tr.Schema.NameListFields {
		if _, ok := f[k]; ok {
			f[k] = reduceList(f.Names(k), "name")
		}
	}
	valueLists := append([]string{tr.Schema.KeywordsField}, tr.Schema.ValueListFields...)
	for _, k := range valueLists {
		if _, ok := f[k]; ok && k != "" {
			f[k] = reduceList(f.Values(k), "value")
		}
	}
}

func reduceList(vals []string, key string) []any {
	out := make([]any, 0, len(vals))
	for _, v := range vals {
		out = append(out, map[string]any{key: v})
	}
	return out
}

// isEmpty mirrors what the tracker treats as unset: nil, zero scalars and
// empty collections.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
