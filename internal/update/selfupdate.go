package update

import (
	semver3 "github.com/blang/semver"
	semver "github.com/blang/semver/v4"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

// Slug is the GitHub owner/repo whose releases carry the binaries.
const Slug = "enginesniff/enginesniff"

var updateSelf = selfupdate.UpdateSelf

// SelfUpdate replaces the running binary with the latest release when it is
// newer than current. It returns the version now installed.
func SelfUpdate(current string) (string, error) {
	ver, err := semver.ParseTolerant(normalize(current))
	if err != nil {
		ver = semver.MustParse("0.0.0")
	}
	rel, err := updateSelf(semver3.MustParse(ver.String()), Slug)
	if err != nil {
		return "", err
	}
	return rel.Version.String(), nil
}
