package jira

import (
	"encoding/json"
	"fmt"

	"github.com/RamXX/tclone/internal/model"
)

// issue is the part of a REST issue payload the cloner reads. Fields keeps
// every field so it can be copied into a clone.
type issue struct {
	ID     string         `json:"id"`
	Key    string         `json:"key"`
	Fields map[string]any `json:"fields"`
}

type keyRef struct {
	Key string `json:"key"`
}

type nameRef struct {
	Name string `json:"name"`
}

// relations is the typed view of the relationship fields.
type relations struct {
	Status     *nameRef `json:"status"`
	IssueType  *nameRef `json:"issuetype"`
	Parent     *keyRef  `json:"parent"`
	Subtasks   []keyRef `json:"subtasks"`
	IssueLinks []struct {
		Type         nameRef `json:"type"`
		InwardIssue  *keyRef `json:"inwardIssue"`
		OutwardIssue *keyRef `json:"outwardIssue"`
	} `json:"issuelinks"`
}

// decodeTicket turns an issue payload into a Ticket whose relationships are
// filtered through ns.
func decodeTicket(body []byte, ns model.Namespace) (*model.Ticket, error) {
	var raw issue
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse issue response: %w", err)
	}
	var wrapper struct {
		Fields relations `json:"fields"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, fmt.Errorf("parse issue relations: %w", err)
	}
	rel := wrapper.Fields

	t := &model.Ticket{
		ID:         raw.Key,
		InternalID: raw.ID,
		Fields:     model.Fields(raw.Fields),
	}
	if t.Fields == nil {
		t.Fields = model.Fields{}
	}
	if rel.Status != nil {
		t.Status = rel.Status.Name
	}
	if rel.IssueType != nil {
		t.IssueType = rel.IssueType.Name
	}

	var r model.Relations
	if rel.Parent != nil {
		r.Parent = rel.Parent.Key
	}
	for _, s := range rel.Subtasks {
		r.Subtasks = append(r.Subtasks, s.Key)
	}
	for _, l := range rel.IssueLinks {
		switch {
		case l.InwardIssue != nil:
			r.Links = append(r.Links, model.Link{OtherID: l.InwardIssue.Key, Type: l.Type.Name, Direction: model.DirectionInward})
		case l.OutwardIssue != nil:
			r.Links = append(r.Links, model.Link{OtherID: l.OutwardIssue.Key, Type: l.Type.Name, Direction: model.DirectionOutward})
		}
	}
	ns.Apply(t, r)
	return t, nil
}
