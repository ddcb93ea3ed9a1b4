package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v62/github"

	"github.com/matzehuels/stackhealth/pkg/integrations"
)

// maxIssuePages bounds how many pages of open issues are read when computing
// issue ages.
const maxIssuePages = 30

// Repo holds the repository attributes used for health signals.
type Repo struct {
	DefaultBranch string    `json:"default_branch"`
	CreatedAt     time.Time `json:"created_at"`
	Archived      bool      `json:"archived"`
}

// Client provides access to the GitHub API.
type Client struct {
	gh *gh.Client
}

// NewClient creates a GitHub API client with optional authentication.
// Pass an empty token for unauthenticated requests (lower rate limits) and
// an empty baseURL for api.github.com. For GitHub Enterprise pass the full
// API root, e.g. "https://ghe.example.com/api/v3/".
func NewClient(token, baseURL string) (*Client, error) {
	client := gh.NewClient(integrations.NewHTTPClient())
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse github base url: %w", err)
		}
		client.BaseURL = u
	}
	return &Client{gh: client}, nil
}

// Repository fetches the repository attributes.
func (c *Client) Repository(ctx context.Context, owner, repo string) (*Repo, error) {
	r, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, classify(resp, err, "get repository %s/%s", owner, repo)
	}
	return &Repo{
		DefaultBranch: r.GetDefaultBranch(),
		CreatedAt:     r.GetCreatedAt().Time,
		Archived:      r.GetArchived(),
	}, nil
}

// ContributorCount returns the number of contributors with a GitHub account.
// Commits by anonymous authors are not counted.
func (c *Client) ContributorCount(ctx context.Context, owner, repo string) (int, error) {
	opts := &gh.ListContributorsOptions{ListOptions: gh.ListOptions{PerPage: 1}}
	list, resp, err := c.gh.Repositories.ListContributors(ctx, owner, repo, opts)
	if err != nil {
		return 0, classify(resp, err, "list contributors of %s/%s", owner, repo)
	}
	return pagedCount(len(list), resp), nil
}

// OpenPullRequestCount returns the number of open pull requests.
func (c *Client) OpenPullRequestCount(ctx context.Context, owner, repo string) (int, error) {
	opts := &gh.PullRequestListOptions{State: "open", ListOptions: gh.ListOptions{PerPage: 1}}
	list, resp, err := c.gh.PullRequests.List(ctx, owner, repo, opts)
	if err != nil {
		return 0, classify(resp, err, "list pull requests of %s/%s", owner, repo)
	}
	return pagedCount(len(list), resp), nil
}

// LastCommit returns the committer date of the head commit of branch.
func (c *Client) LastCommit(ctx context.Context, owner, repo, branch string) (time.Time, error) {
	opts := &gh.CommitsListOptions{SHA: branch, ListOptions: gh.ListOptions{PerPage: 1}}
	commits, resp, err := c.gh.Repositories.ListCommits(ctx, owner, repo, opts)
	if err != nil {
		return time.Time{}, classify(resp, err, "list commits of %s/%s", owner, repo)
	}
	if len(commits) == 0 {
		return time.Time{}, fmt.Errorf("%w: no commits on %s of %s/%s", integrations.ErrNotFound, branch, owner, repo)
	}
	return commits[0].GetCommit().GetCommitter().GetDate().Time, nil
}

// FileExists reports whether path exists on the default branch.
func (c *Client) FileExists(ctx context.Context, owner, repo, path string) (bool, error) {
	if err := ValidatePath(path); err != nil {
		return false, err
	}
	_, _, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, nil)
	return exists(resp, err, "get %s of %s/%s", path, owner, repo)
}

// HasReadme reports whether the repository has a README GitHub recognizes.
func (c *Client) HasReadme(ctx context.Context, owner, repo string) (bool, error) {
	_, resp, err := c.gh.Repositories.GetReadme(ctx, owner, repo, nil)
	return exists(resp, err, "get readme of %s/%s", owner, repo)
}

// BlobCount returns the number of files at the top level of branch's tree.
// Subdirectories are not descended into.
func (c *Client) BlobCount(ctx context.Context, owner, repo, branch string) (int, error) {
	tree, resp, err := c.gh.Git.GetTree(ctx, owner, repo, branch, false)
	if err != nil {
		return 0, classify(resp, err, "get tree of %s/%s", owner, repo)
	}
	n := 0
	for _, e := range tree.Entries {
		if e.GetType() == "blob" {
			n++
		}
	}
	return n, nil
}

// OpenIssueCreationTimes returns the creation times of open issues, pull
// requests excluded.
func (c *Client) OpenIssueCreationTimes(ctx context.Context, owner, repo string) ([]time.Time, error) {
	opts := &gh.IssueListByRepoOptions{State: "open", ListOptions: gh.ListOptions{PerPage: 100}}
	var created []time.Time
	for range maxIssuePages {
		issues, resp, err := c.gh.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return nil, classify(resp, err, "list issues of %s/%s", owner, repo)
		}
		for _, is := range issues {
			if is.IsPullRequest() {
				continue
			}
			created = append(created, is.GetCreatedAt().Time)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return created, nil
}

// pagedCount derives a total from a one-item-per-page listing: the last page
// number is the count when there is more than one page.
func pagedCount(n int, resp *gh.Response) int {
	if resp != nil && resp.LastPage > 0 {
		return resp.LastPage
	}
	return n
}

func exists(resp *gh.Response, err error, format string, args ...any) (bool, error) {
	if err == nil {
		return true, nil
	}
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	return false, classify(resp, err, format, args...)
}

func classify(resp *gh.Response, err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", msg, err)
	case resp != nil && resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, integrations.ErrNotFound)
	default:
		return fmt.Errorf("%s: %w: %v", msg, integrations.ErrNetwork, err)
	}
}
