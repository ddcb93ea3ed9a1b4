package health

// Merge returns a new record holding a's identity and, field by field, b's
// value where b has one and a's value otherwise. The scorecard check list is
// taken from b as a whole when b has one.
//
// Neither input is modified and the result shares no pointers with them.
func Merge(a, b Record) Record {
	out := a
	override(&out.Stars, b.Stars)
	override(&out.Forks, b.Forks)
	override(&out.Contributors, b.Contributors)
	override(&out.CommitFrequencyWeekly, b.CommitFrequencyWeekly)
	override(&out.OpenIssues, b.OpenIssues)
	override(&out.OpenPRs, b.OpenPRs)
	override(&out.LastCommit, b.LastCommit)
	override(&out.BusFactor, b.BusFactor)
	override(&out.HasReadme, b.HasReadme)
	override(&out.HasCodeOfConduct, b.HasCodeOfConduct)
	override(&out.HasSecurityPolicy, b.HasSecurityPolicy)
	override(&out.Dependents, b.Dependents)
	override(&out.Files, b.Files)
	override(&out.Archived, b.Archived)
	override(&out.AvgIssueAgeDays, b.AvgIssueAgeDays)
	override(&out.ScorecardScore, b.ScorecardScore)
	override(&out.ScorecardVersion, b.ScorecardVersion)
	override(&out.ScorecardTimestamp, b.ScorecardTimestamp)

	if b.ScorecardChecks != nil {
		out.ScorecardChecks = cloneChecks(b.ScorecardChecks)
	} else {
		out.ScorecardChecks = cloneChecks(a.ScorecardChecks)
	}

	detach(&out)
	return out
}

func override[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

// detach replaces every pointer in r with a pointer to a fresh copy.
func detach(r *Record) {
	r.Stars = clonePtr(r.Stars)
	r.Forks = clonePtr(r.Forks)
	r.Contributors = clonePtr(r.Contributors)
	r.CommitFrequencyWeekly = clonePtr(r.CommitFrequencyWeekly)
	r.OpenIssues = clonePtr(r.OpenIssues)
	r.OpenPRs = clonePtr(r.OpenPRs)
	r.LastCommit = clonePtr(r.LastCommit)
	r.BusFactor = clonePtr(r.BusFactor)
	r.HasReadme = clonePtr(r.HasReadme)
	r.HasCodeOfConduct = clonePtr(r.HasCodeOfConduct)
	r.HasSecurityPolicy = clonePtr(r.HasSecurityPolicy)
	r.Dependents = clonePtr(r.Dependents)
	r.Files = clonePtr(r.Files)
	r.Archived = clonePtr(r.Archived)
	r.AvgIssueAgeDays = clonePtr(r.AvgIssueAgeDays)
	r.ScorecardScore = clonePtr(r.ScorecardScore)
	r.ScorecardVersion = clonePtr(r.ScorecardVersion)
	r.ScorecardTimestamp = clonePtr(r.ScorecardTimestamp)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
