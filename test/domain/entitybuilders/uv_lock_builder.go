//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	testkit "github.com/rios0rios0/testkit/pkg/test"
)

type lockPackage struct {
	name    string
	version string
	salt    string
}

// UVLockBuilder renders uv.lock content with a fluent interface.
// Packages are written in insertion order; each carries a hash derived from its name and version.
type UVLockBuilder struct {
	*testkit.BaseBuilder
	requiresPython string
	packages       []lockPackage
}

// NewUVLockBuilder creates a new lock builder with no packages.
func NewUVLockBuilder() *UVLockBuilder {
	return &UVLockBuilder{
		BaseBuilder:    testkit.NewBaseBuilder(),
		requiresPython: ">=3.12",
	}
}

// WithPackage adds a package pinned at version, or re-pins it if already present.
func (b *UVLockBuilder) WithPackage(name, version string) *UVLockBuilder {
	for i := range b.packages {
		if b.packages[i].name == name {
			b.packages[i].version = version
			return b
		}
	}
	b.packages = append(b.packages, lockPackage{name: name, version: version})
	return b
}

// WithRehash changes the artifact hash of a package without touching its version.
func (b *UVLockBuilder) WithRehash(name, salt string) *UVLockBuilder {
	for i := range b.packages {
		if b.packages[i].name == name {
			b.packages[i].salt = salt
		}
	}
	return b
}

// Build creates the lock content (satisfies testkit.Builder interface).
func (b *UVLockBuilder) Build() interface{} {
	return b.BuildLock()
}

// BuildLock renders the lock file text.
func (b *UVLockBuilder) BuildLock() string {
	var sb strings.Builder
	sb.WriteString("version = 1\n")
	fmt.Fprintf(&sb, "requires-python = %q\n", b.requiresPython)
	for _, pkg := range b.packages {
		sum := sha256.Sum256([]byte(pkg.name + pkg.version + pkg.salt))
		hash := hex.EncodeToString(sum[:])
		fmt.Fprintf(&sb, "\n[[package]]\n")
		fmt.Fprintf(&sb, "name = %q\n", pkg.name)
		fmt.Fprintf(&sb, "version = %q\n", pkg.version)
		sb.WriteString("source = { registry = \"https://pypi.org/simple\" }\n")
		fmt.Fprintf(&sb,
			"sdist = { url = \"https://files.pythonhosted.org/%s-%s.tar.gz\", hash = \"sha256:%s\" }\n",
			pkg.name, pkg.version, hash)
	}
	return sb.String()
}

// Reset clears the builder state, allowing it to be reused.
func (b *UVLockBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.requiresPython = ">=3.12"
	b.packages = nil
	return b
}

// Clone creates a deep copy of the UVLockBuilder.
func (b *UVLockBuilder) Clone() testkit.Builder {
	return &UVLockBuilder{
		BaseBuilder:    b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		requiresPython: b.requiresPython,
		packages:       append([]lockPackage(nil), b.packages...),
	}
}
