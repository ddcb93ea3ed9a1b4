package depsdev

import "time"

// Project is the subset of a deps.dev project used for health signals.
// Counters are nil when deps.dev does not report them.
type Project struct {
	OpenIssuesCount *int       `json:"openIssuesCount"`
	StarsCount      *int       `json:"starsCount"`
	ForksCount      *int       `json:"forksCount"`
	Scorecard       *Scorecard `json:"scorecard"`
}

// Scorecard is an OpenSSF scorecard result as reported by deps.dev.
type Scorecard struct {
	Date      *time.Time `json:"date"`
	Reference struct {
		Version string `json:"version"`
		Commit  string `json:"commit"`
	} `json:"scorecard"`
	OverallScore *float64 `json:"overallScore"`
	Checks       []Check  `json:"checks"`
}

// Check is a single scorecard check.
type Check struct {
	Name          string `json:"name"`
	Documentation struct {
		ShortDescription string `json:"shortDescription"`
		URL              string `json:"url"`
	} `json:"documentation"`
	Score   float64  `json:"score"`
	Reason  string   `json:"reason"`
	Details []string `json:"details"`
}

type packageResponse struct {
	Versions []struct {
		VersionKey struct {
			Version string `json:"version"`
		} `json:"versionKey"`
		IsDefault bool `json:"isDefault"`
	} `json:"versions"`
}

type versionResponse struct {
	RelatedProjects []struct {
		ProjectKey struct {
			ID string `json:"id"`
		} `json:"projectKey"`
		RelationType string `json:"relationType"`
	} `json:"relatedProjects"`
}

type dependentsResponse struct {
	DependentCount *int `json:"dependentCount"`
}

const relationSourceRepo = "SOURCE_REPO"
