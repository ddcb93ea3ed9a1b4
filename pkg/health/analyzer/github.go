package analyzer

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/stackhealth/pkg/errors"
	"github.com/matzehuels/stackhealth/pkg/health"
	"github.com/matzehuels/stackhealth/pkg/integrations"
	"github.com/matzehuels/stackhealth/pkg/integrations/github"
)

// Repository files whose presence is reported.
const (
	codeOfConductPath  = "CODE_OF_CONDUCT.md"
	securityPolicyPath = ".github/SECURITY.md"
)

// VCS is the hosting API the [GitHubAnalyzer] reads. [github.Client]
// implements it.
type VCS interface {
	Repository(ctx context.Context, owner, repo string) (*github.Repo, error)
	ContributorCount(ctx context.Context, owner, repo string) (int, error)
	OpenPullRequestCount(ctx context.Context, owner, repo string) (int, error)
	LastCommit(ctx context.Context, owner, repo, branch string) (time.Time, error)
	FileExists(ctx context.Context, owner, repo, path string) (bool, error)
	HasReadme(ctx context.Context, owner, repo string) (bool, error)
	BlobCount(ctx context.Context, owner, repo, branch string) (int, error)
	OpenIssueCreationTimes(ctx context.Context, owner, repo string) ([]time.Time, error)
	ContributorStats(ctx context.Context, owner, repo string) github.StatsResult
}

// StatsPolicy bounds the polling of contributor statistics.
type StatsPolicy struct {
	MaxAttempts int
	Interval    time.Duration
}

// DefaultStatsPolicy polls five times, two seconds apart.
func DefaultStatsPolicy() StatsPolicy {
	return StatsPolicy{MaxAttempts: 5, Interval: 2 * time.Second}
}

// GitHubAnalyzer collects activity and hygiene signals for github.com
// repositories.
type GitHubAnalyzer struct {
	vcs    VCS
	policy StatsPolicy
	logger *log.Logger
	sleep  func(context.Context, time.Duration) error
	now    func() time.Time
}

// NewGitHubAnalyzer creates the GitHub analyzer. A nil vcs is allowed: the
// analyzer then logs a warning and contributes nothing.
func NewGitHubAnalyzer(vcs VCS, policy StatsPolicy, logger *log.Logger) *GitHubAnalyzer {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &GitHubAnalyzer{
		vcs:    vcs,
		policy: policy,
		logger: named(logger, "github"),
		sleep:  sleepContext,
		now:    time.Now,
	}
}

func (a *GitHubAnalyzer) Name() string { return "github" }

func (a *GitHubAnalyzer) Applicable(repoKey string) bool {
	return strings.HasPrefix(repoKey, github.Host)
}

func (a *GitHubAnalyzer) Analyze(ctx context.Context, id health.Identity, repoKey string) health.Record {
	rec := health.NewRecord(id)
	logger := a.logger.With("repo", repoKey)

	if a.vcs == nil {
		logger.Warn("github client not configured")
		return rec
	}
	owner, name, err := github.ParseProjectKey(repoKey)
	if err != nil {
		logger.Warn("invalid repository key", "err", err)
		return rec
	}

	repo, err := a.vcs.Repository(ctx, owner, name)
	if err != nil {
		logger.Warn("github repository retrieval failed", "err", err)
		return rec
	}
	rec.Archived = health.Ptr(repo.Archived)
	branch := repo.DefaultBranch

	rec.Contributors = optional(ctx, logger, "count contributors", func(ctx context.Context) (int, error) {
		return a.vcs.ContributorCount(ctx, owner, name)
	})
	rec.OpenPRs = optional(ctx, logger, "count open pull requests", func(ctx context.Context) (int, error) {
		return a.vcs.OpenPullRequestCount(ctx, owner, name)
	})
	rec.LastCommit = optional(ctx, logger, "read last commit", func(ctx context.Context) (time.Time, error) {
		return a.vcs.LastCommit(ctx, owner, name, branch)
	})
	rec.HasReadme = optional(ctx, logger, "look up readme", func(ctx context.Context) (bool, error) {
		return a.vcs.HasReadme(ctx, owner, name)
	})
	rec.HasCodeOfConduct = optional(ctx, logger, "look up code of conduct", func(ctx context.Context) (bool, error) {
		return a.vcs.FileExists(ctx, owner, name, codeOfConductPath)
	})
	rec.HasSecurityPolicy = optional(ctx, logger, "look up security policy", func(ctx context.Context) (bool, error) {
		return a.vcs.FileExists(ctx, owner, name, securityPolicyPath)
	})
	rec.Files = optional(ctx, logger, "count files", func(ctx context.Context) (int, error) {
		return a.vcs.BlobCount(ctx, owner, name, branch)
	})
	rec.AvgIssueAgeDays = optional(ctx, logger, "list open issues", func(ctx context.Context) (int, error) {
		created, err := a.vcs.OpenIssueCreationTimes(ctx, owner, name)
		if err != nil {
			return 0, err
		}
		return health.AverageIssueAge(created, a.now()), nil
	})

	if stats, ok := a.contributorStats(ctx, owner, name, logger); ok {
		if bf, ok := health.BusFactor(stats); ok {
			rec.BusFactor = health.Ptr(bf)
		}
		if freq, ok := health.WeeklyCommitFrequency(stats, repo.CreatedAt, a.now()); ok {
			rec.CommitFrequencyWeekly = health.Ptr(freq)
		}
	}
	return rec
}

// contributorStats polls until GitHub has computed the statistics, waiting
// the policy interval after each not-ready answer. It gives up after
// MaxAttempts requests.
func (a *GitHubAnalyzer) contributorStats(ctx context.Context, owner, repo string, logger *log.Logger) ([]health.ContributorStat, bool) {
	for attempt := 1; attempt <= a.policy.MaxAttempts; attempt++ {
		res := a.vcs.ContributorStats(ctx, owner, repo)
		switch res.State {
		case github.StatsReady:
			if len(res.Stats) == 0 {
				logger.Warn("no contributor statistics")
				return nil, false
			}
			stats := make([]health.ContributorStat, len(res.Stats))
			for i, s := range res.Stats {
				stats[i] = health.ContributorStat{Author: s.Login, Total: s.Total}
			}
			return stats, true
		case github.StatsFailed:
			logger.Warn("contributor statistics failed", "err", res.Err)
			return nil, false
		}

		if attempt == a.policy.MaxAttempts {
			break
		}
		logger.Debug("contributor statistics not ready", "attempt", attempt, "wait", a.policy.Interval)
		if err := a.sleep(ctx, a.policy.Interval); err != nil {
			logger.Warn("contributor statistics interrupted", "err", err)
			return nil, false
		}
	}
	logger.Warn("contributor statistics unavailable",
		"err", errs.New(errs.ErrCodeStatsNotReady, "not computed after %d attempts", a.policy.MaxAttempts))
	return nil, false
}

func optional[T any](ctx context.Context, logger *log.Logger, what string, call func(context.Context) (T, error)) *T {
	return integrations.SafeCall(ctx, logger, what, func(ctx context.Context) (*T, error) {
		v, err := call(ctx)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}, nil)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
