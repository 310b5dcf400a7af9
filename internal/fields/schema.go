// Package fields turns a template ticket's field bag into the field bag of
// its clone. Everything here is a pure function of its inputs.
package fields

// Field ids of the template tracker. Keywords live in a different custom
// field on each server, so they are configured per server.
const (
	DefaultPAVField       = "customfield_11911"
	DefaultMilestoneField = "customfield_12000"
	StageKeywordsField    = "customfield_12700"
	ProdKeywordsField     = "customfield_12407"
)

// Schema describes which fields survive a clone and how nested values are
// reduced so the tracker accepts them on create.
type Schema struct {
	PAVField       string
	KeywordsField  string
	MilestoneField string

	// UnwantedFields are dropped because they are owned by the tracker
	// (timestamps, progress, status) or by the relationship model.
	UnwantedFields []string
	// ValidCustomFields is the allow-list of customfield_* keys; every other
	// custom field is removed. The keywords field is always allowed.
	ValidCustomFields []string
	// NameFields are objects reduced to {"name": ...}.
	NameFields []string
	// NameListFields are lists of objects reduced to [{"name": ...}].
	NameListFields []string
	// ValueListFields are lists of objects reduced to [{"value": ...}]. The
	// keywords field is always treated as one.
	ValueListFields []string
}

// DefaultUnwantedFields are the fields the tracker computes itself.
var DefaultUnwantedFields = []string{
	"aggregatetimeoriginalestimate", "timetracking", "timeestimate", "progress",
	"aggregateprogress", "timeoriginalestimate", "aggregatetimeestimate",
	"worklog", "workratio", "updated", "created", "creator", "watches", "votes",
	"issuelinks", "comment", "status", "lastViewed", "reporter", "parent",
	"subtasks", "aggregatetimespent", "timespent",
}

// DefaultValidCustomFields are the custom fields configured on the target projects.
var DefaultValidCustomFields = []string{
	"customfield_12200", "customfield_10006", "customfield_11911",
	"customfield_11910", "customfield_12000", "customfield_12001",
	"customfield_12002", "customfield_10400", "customfield_10005",
	"customfield_10002",
}

// DefaultSchema returns the schema of the template project with the given
// keywords field.
func DefaultSchema(keywordsField string) Schema {
	return Schema{
		PAVField:          DefaultPAVField,
		KeywordsField:     keywordsField,
		MilestoneField:    DefaultMilestoneField,
		UnwantedFields:    append([]string(nil), DefaultUnwantedFields...),
		ValidCustomFields: append([]string(nil), DefaultValidCustomFields...),
		NameFields:        []string{"issuetype", "priority"},
		NameListFields:    []string{"components"},
	}
}
