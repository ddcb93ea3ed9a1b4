package analyzer

import (
	"strings"

	"github.com/matzehuels/stackhealth/pkg/health"
)

// Systems maps package URL types to deps.dev system names.
type Systems map[string]string

// DefaultSystems is the mapping used when no configuration overrides it.
func DefaultSystems() Systems {
	return Systems{
		"npm":    "NPM",
		"golang": "GO",
		"maven":  "MAVEN",
		"pypi":   "PYPI",
		"nuget":  "NUGET",
		"cargo":  "CARGO",
		"gem":    "RUBYGEMS",
	}
}

// Lookup returns the deps.dev system and package name for id.
// Maven names are "group:artifact"; every other system joins namespace and
// name with a slash, e.g. "@babel/core" or "github.com/spf13/cobra".
func (s Systems) Lookup(id health.Identity) (system, name string, ok bool) {
	system, ok = s[strings.ToLower(id.Type)]
	if !ok || id.Name == "" {
		return "", "", false
	}
	sep := "/"
	if system == "MAVEN" {
		sep = ":"
	}
	return system, id.NamespacedName(sep), true
}
