package github

import (
	"errors"
	"regexp"
	"strings"

	errs "github.com/matzehuels/stackhealth/pkg/errors"
)

// Host is the repository key prefix this package understands.
const Host = "github.com"

// Regex patterns for GitHub resource validation.
var (
	// GitHub usernames/orgs: 1-39 alphanumeric or hyphen, not starting with hyphen
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// GitHub repo names: 1-100 alphanumeric, hyphen, underscore, or dot
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// ValidateOwner validates a GitHub username or organization name.
func ValidateOwner(owner string) error {
	if owner == "" {
		return errors.New("owner is required")
	}
	if !validOwner.MatchString(owner) {
		return errors.New("invalid owner format: must be 1-39 alphanumeric characters or hyphens, cannot start with hyphen")
	}
	return nil
}

// ValidateRepo validates a GitHub repository name.
func ValidateRepo(repo string) error {
	if repo == "" {
		return errors.New("repo is required")
	}
	if !validRepo.MatchString(repo) || repo == "." || repo == ".." {
		return errors.New("invalid repo format: must be 1-100 alphanumeric characters, hyphens, underscores, or dots")
	}
	return nil
}

// ParseProjectKey splits a "github.com/owner/repo" key into its owner and
// repository name. Keys of other hosts, or with a malformed owner or name,
// are rejected.
func ParseProjectKey(key string) (owner, repo string, err error) {
	if err := errs.ValidateRepoKey(key); err != nil {
		return "", "", err
	}
	rest, ok := strings.CutPrefix(key, Host+"/")
	if !ok {
		return "", "", errs.New(errs.ErrCodeInvalidRepoKey, "not a github repository key: %q", key)
	}
	owner, repo, _ = strings.Cut(rest, "/")
	if err := ValidateOwner(owner); err != nil {
		return "", "", errs.Wrap(errs.ErrCodeInvalidRepoKey, err, "repository key %q", key)
	}
	if err := ValidateRepo(repo); err != nil {
		return "", "", errs.Wrap(errs.ErrCodeInvalidRepoKey, err, "repository key %q", key)
	}
	return owner, repo, nil
}

// ValidatePath validates a repository-relative file path.
func ValidatePath(path string) error {
	return errs.ValidatePath(path)
}
