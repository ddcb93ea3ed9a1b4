package github

import (
	"context"
	"errors"

	gh "github.com/google/go-github/v62/github"
)

// StatsState is the readiness of GitHub's contributor statistics.
type StatsState int

const (
	// StatsReady means Stats holds the statistics.
	StatsReady StatsState = iota
	// StatsNotReady means GitHub is still computing them; ask again later.
	StatsNotReady
	// StatsFailed means the request failed; Err holds the cause.
	StatsFailed
)

func (s StatsState) String() string {
	switch s {
	case StatsReady:
		return "ready"
	case StatsNotReady:
		return "not ready"
	default:
		return "failed"
	}
}

// ContributorStat is one contributor's commit total.
type ContributorStat struct {
	Login string
	Total int
}

// StatsResult is the answer to a contributor statistics request.
type StatsResult struct {
	State StatsState
	Stats []ContributorStat
	Err   error
}

// ContributorStats requests per-contributor commit totals. A 202 Accepted
// answer is reported as [StatsNotReady].
func (c *Client) ContributorStats(ctx context.Context, owner, repo string) StatsResult {
	stats, resp, err := c.gh.Repositories.ListContributorsStats(ctx, owner, repo)
	if err != nil {
		var accepted *gh.AcceptedError
		if errors.As(err, &accepted) {
			return StatsResult{State: StatsNotReady}
		}
		return StatsResult{State: StatsFailed, Err: classify(resp, err, "contributor stats of %s/%s", owner, repo)}
	}

	out := make([]ContributorStat, 0, len(stats))
	for _, s := range stats {
		out = append(out, ContributorStat{Login: s.GetAuthor().GetLogin(), Total: s.GetTotal()})
	}
	return StatsResult{State: StatsReady, Stats: out}
}
