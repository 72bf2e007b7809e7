package util

import (
	"strings"

	semver "github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	stdsemver "golang.org/x/mod/semver"
)

type Version struct {
	v *semver.Version
	s string
}

// ParseVersion parses "v"-prefixed semantic version string.
func ParseVersion(s string) (Version, error) {
	if !strings.HasPrefix(s, "v") {
		return Version{}, ErrInvalid.Errorf("invalid version string, %q", s)
	}

	v, err := semver.NewVersion(s)
	if err != nil {
		return Version{}, ErrInvalid.Wrapf(err, "version string=%q", s)
	}

	p := Version{v: v, s: "v" + v.String()}
	if err := p.IsValid(nil); err != nil {
		return Version{}, err
	}

	return p, nil
}

// EnsureParseVersion parses, but returns empty Version instead of error.
func EnsureParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		return Version{}
	}

	return v
}

func (v Version) String() string { return v.s }

func (v Version) IsEmpty() bool {
	return v.v == nil
}

func (v Version) IsValid([]byte) error {
	switch s := strings.TrimSpace(v.s); {
	case len(s) < 2:
		return ErrInvalid.Errorf("empty version string")
	case !stdsemver.IsValid(s):
		return ErrInvalid.Errorf("invalid semver, %q", s)
	default:
		return nil
	}
}

func (v Version) Major() uint64 {
	if v.v == nil {
		return 0
	}

	return v.v.Major()
}

func (v Version) Prerelease() string {
	if v.v == nil {
		return ""
	}

	return v.v.Prerelease()
}

func (v Version) Compare(b Version) int {
	switch {
	case v.v == nil && b.v == nil:
		return 0
	case v.v == nil:
		return -1
	case b.v == nil:
		return 1
	default:
		return v.v.Compare(b.v)
	}
}

// IsCompatible checks the major versions.
func (v Version) IsCompatible(b Version) bool {
	return !v.IsEmpty() && v.Major() == b.Major()
}

func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.s), nil
}

func (v *Version) UnmarshalText(b []byte) error {
	u, err := ParseVersion(string(b))
	if err != nil {
		return errors.WithMessage(err, "unmarshal version")
	}

	*v = u

	return nil
}
