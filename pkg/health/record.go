package health

import (
	"encoding/json"
	"slices"
	"time"
)

// Record is a sparse set of health signals for one component.
//
// Every field is independently optional: nil means no provider supplied the
// value, which is different from a provider reporting zero or false. The
// identity is fixed by [NewRecord] and carried unchanged through [Merge].
type Record struct {
	identity Identity

	Stars                 *int       `json:"stars,omitempty"`
	Forks                 *int       `json:"forks,omitempty"`
	Contributors          *int       `json:"contributors,omitempty"`
	CommitFrequencyWeekly *float64   `json:"commit_frequency_weekly,omitempty"`
	OpenIssues            *int       `json:"open_issues,omitempty"`
	OpenPRs               *int       `json:"open_prs,omitempty"`
	LastCommit            *time.Time `json:"last_commit,omitempty"`
	BusFactor             *int       `json:"bus_factor,omitempty"`
	HasReadme             *bool      `json:"has_readme,omitempty"`
	HasCodeOfConduct      *bool      `json:"has_code_of_conduct,omitempty"`
	HasSecurityPolicy     *bool      `json:"has_security_policy,omitempty"`
	Dependents            *int       `json:"dependents,omitempty"`
	Files                 *int       `json:"files,omitempty"`
	Archived              *bool      `json:"archived,omitempty"`
	AvgIssueAgeDays       *int       `json:"avg_issue_age_days,omitempty"`

	ScorecardChecks    []ScorecardCheck `json:"scorecard_checks,omitempty"`
	ScorecardScore     *float64         `json:"scorecard_score,omitempty"`
	ScorecardVersion   *string          `json:"scorecard_version,omitempty"`
	ScorecardTimestamp *time.Time       `json:"scorecard_timestamp,omitempty"`
}

// ScorecardCheck is one OpenSSF scorecard check result.
type ScorecardCheck struct {
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Score            float64  `json:"score"`
	Reason           string   `json:"reason,omitempty"`
	Details          []string `json:"details,omitempty"`
	DocumentationURL string   `json:"documentation_url,omitempty"`
}

// ContributorStat is the commit total of one contributor. It only feeds the
// metric calculator and is never part of a record.
type ContributorStat struct {
	Author string
	Total  int
}

// NewRecord creates an empty record for id.
func NewRecord(id Identity) Record {
	return Record{identity: id}
}

// Identity returns the component the record describes.
func (r Record) Identity() Identity { return r.identity }

// Ptr returns a pointer to a copy of v. It keeps analyzer code that fills
// optional fields short.
func Ptr[T any](v T) *T { return &v }

// SetFields returns the JSON names of all populated fields, in declaration order.
func (r Record) SetFields() []string {
	fields := []struct {
		name string
		set  bool
	}{
		{"stars", r.Stars != nil},
		{"forks", r.Forks != nil},
		{"contributors", r.Contributors != nil},
		{"commit_frequency_weekly", r.CommitFrequencyWeekly != nil},
		{"open_issues", r.OpenIssues != nil},
		{"open_prs", r.OpenPRs != nil},
		{"last_commit", r.LastCommit != nil},
		{"bus_factor", r.BusFactor != nil},
		{"has_readme", r.HasReadme != nil},
		{"has_code_of_conduct", r.HasCodeOfConduct != nil},
		{"has_security_policy", r.HasSecurityPolicy != nil},
		{"dependents", r.Dependents != nil},
		{"files", r.Files != nil},
		{"archived", r.Archived != nil},
		{"avg_issue_age_days", r.AvgIssueAgeDays != nil},
		{"scorecard_checks", r.ScorecardChecks != nil},
		{"scorecard_score", r.ScorecardScore != nil},
		{"scorecard_version", r.ScorecardVersion != nil},
		{"scorecard_timestamp", r.ScorecardTimestamp != nil},
	}
	var names []string
	for _, f := range fields {
		if f.set {
			names = append(names, f.name)
		}
	}
	return names
}

// Empty reports whether no health field is set.
func (r Record) Empty() bool { return len(r.SetFields()) == 0 }

// recordFields has Record's layout without its methods, so it can be
// embedded in the wire struct without recursing into MarshalJSON.
type recordFields Record

type recordWire struct {
	Identity Identity `json:"identity"`
	recordFields
}

// MarshalJSON includes the identity alongside the populated fields.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordWire{Identity: r.identity, recordFields: recordFields(r)})
}

// UnmarshalJSON restores a record, including its identity.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w recordWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Record(w.recordFields)
	r.identity = w.Identity
	return nil
}

func cloneChecks(checks []ScorecardCheck) []ScorecardCheck {
	if checks == nil {
		return nil
	}
	out := make([]ScorecardCheck, len(checks))
	for i, c := range checks {
		c.Details = slices.Clone(c.Details)
		out[i] = c
	}
	return out
}
