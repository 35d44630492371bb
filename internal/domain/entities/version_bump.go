package entities

import (
	"strings"

	pep440 "github.com/aquasecurity/go-pep440-version"
	"golang.org/x/mod/semver"
)

// BumpKind labels a version change for humans. It never drives a decision.
type BumpKind string

const (
	BumpMajor     BumpKind = "major"
	BumpMinor     BumpKind = "minor"
	BumpPatch     BumpKind = "patch"
	BumpOther     BumpKind = "other"
	BumpDowngrade BumpKind = "downgrade"
)

// ClassifyBump labels the move from oldVersion to newVersion.
// Ordering follows PEP 440 when both versions parse, falling back to semver;
// the level is read from the semver-normalized major and minor components.
func ClassifyBump(oldVersion, newVersion string) BumpKind {
	if oldVersion == "" || newVersion == "" || oldVersion == newVersion {
		return BumpOther
	}

	if compareVersions(oldVersion, newVersion) > 0 {
		return BumpDowngrade
	}

	oldNorm := normalizeVersion(oldVersion)
	newNorm := normalizeVersion(newVersion)
	if !semver.IsValid(oldNorm) || !semver.IsValid(newNorm) {
		return BumpOther
	}

	switch {
	case semver.Major(oldNorm) != semver.Major(newNorm):
		return BumpMajor
	case semver.MajorMinor(oldNorm) != semver.MajorMinor(newNorm):
		return BumpMinor
	default:
		return BumpPatch
	}
}

// compareVersions returns -1, 0 or 1 like strings.Compare.
func compareVersions(left, right string) int {
	leftPep, leftErr := pep440.Parse(left)
	rightPep, rightErr := pep440.Parse(right)
	if leftErr == nil && rightErr == nil {
		return leftPep.Compare(rightPep)
	}

	leftNorm := normalizeVersion(left)
	rightNorm := normalizeVersion(right)
	if semver.IsValid(leftNorm) && semver.IsValid(rightNorm) {
		return semver.Compare(leftNorm, rightNorm)
	}
	return strings.Compare(left, right)
}

// normalizeVersion ensures version has 'v' prefix for semver compatibility.
func normalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}
