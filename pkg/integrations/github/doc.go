// Package github provides a GitHub REST API client for repository health
// signals, built on google/go-github.
//
// # Usage
//
//	client, err := github.NewClient(token, "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	owner, repo, err := github.ParseProjectKey("github.com/pallets/flask")
//	info, err := client.Repository(ctx, owner, repo)
//	n, err := client.ContributorCount(ctx, owner, repo)
//
// # Authentication
//
// A GitHub personal access token is optional but recommended to avoid rate
// limits. Without a token, the client is limited to 60 requests/hour.
// With a token, the limit is 5000 requests/hour.
//
// # Contributor statistics
//
// GitHub computes contributor statistics in the background and answers
// 202 Accepted until they are ready. [Client.ContributorStats] reports this
// as [StatsNotReady] rather than an error, leaving the polling policy to the
// caller.
//
// # Errors
//
// A 404 from GitHub wraps [integrations.ErrNotFound]; any other failure
// wraps [integrations.ErrNetwork].
package github
