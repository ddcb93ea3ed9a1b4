package health

import (
	"strings"

	"github.com/package-url/packageurl-go"

	errs "github.com/matzehuels/stackhealth/pkg/errors"
)

// Identity identifies a software component. It is the aggregation key and
// is treated as an immutable value.
type Identity struct {
	Type      string `json:"type"`
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name"`
	Version   string `json:"version,omitempty"`
}

// ParseIdentity parses a package URL such as "pkg:npm/%40babel/core@7.24.0".
// Qualifiers and subpath are dropped.
func ParseIdentity(raw string) (Identity, error) {
	p, err := packageurl.FromString(strings.TrimSpace(raw))
	if err != nil {
		return Identity{}, errs.Wrap(errs.ErrCodeInvalidPurl, err, "parse package url %q", raw)
	}
	id := Identity{
		Type:      strings.ToLower(p.Type),
		Namespace: p.Namespace,
		Name:      p.Name,
		Version:   p.Version,
	}
	if err := id.Validate(); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// Validate checks that the identity has a well-formed type and a safe name.
func (id Identity) Validate() error {
	if err := errs.ValidateType(id.Type); err != nil {
		return err
	}
	return errs.ValidatePackageName(id.Name)
}

// String renders the identity as a package URL.
func (id Identity) String() string {
	return packageurl.NewPackageURL(id.Type, id.Namespace, id.Name, id.Version, nil, "").ToString()
}

// NamespacedName joins namespace and name with sep, or returns the bare name
// when there is no namespace.
func (id Identity) NamespacedName(sep string) string {
	if id.Namespace == "" {
		return id.Name
	}
	return id.Namespace + sep + id.Name
}

// WithVersion returns a copy of id with the version replaced.
func (id Identity) WithVersion(v string) Identity {
	id.Version = v
	return id
}
