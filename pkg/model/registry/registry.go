// Package registry publishes classifier artifacts by name and version and
// keeps verified local copies of them.
package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jmylchreest/examiq/pkg/model/classifier"
)

var (
	// ErrArtifactNotFound is returned when a reference matches no entry.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrChecksumMismatch is returned when an artifact file does not match
	// the SHA-256 listed for it.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrInvalidIndex is returned for an unreadable or inconsistent index.
	ErrInvalidIndex = errors.New("invalid artifact index")
)

// Registry finds classifier artifacts and makes them available locally.
type Registry interface {
	// Entries lists every published artifact.
	Entries(ctx context.Context) ([]Entry, error)

	// Lookup finds the entry for a reference, "name" or "name@version".
	Lookup(ctx context.Context, ref string) (*Entry, error)

	// Fetch returns the path of a verified local copy of the artifact.
	Fetch(ctx context.Context, ref string) (string, *Entry, error)
}

// Entry describes one published artifact. Path is a file next to the
// index; URL is downloaded into the cache. One of them is required.
type Entry struct {
	Name        string   `json:"name"`
	Version     string   `json:"version,omitempty"`
	Description string   `json:"description,omitempty"`
	Classes     []string `json:"classes,omitempty"`
	SHA256      string   `json:"sha256,omitempty"`
	Path        string   `json:"path,omitempty"`
	URL         string   `json:"url,omitempty"`
}

// Ref returns "name@version", or the bare name for unversioned entries.
func (e Entry) Ref() string {
	if e.Version == "" {
		return e.Name
	}
	return e.Name + "@" + e.Version
}

// ParseRef splits "name@version". The version is empty when omitted.
func ParseRef(ref string) (name, version string) {
	name, version, _ = strings.Cut(strings.TrimSpace(ref), "@")
	return name, version
}

// LoadArtifact fetches ref and loads the artifact. When the entry lists
// classes, the artifact must predict exactly those, in that order.
func LoadArtifact(ctx context.Context, r Registry, ref string) (*classifier.Artifact, error) {
	path, e, err := r.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}

	a, err := classifier.LoadArtifact(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.Ref(), err)
	}
	if len(e.Classes) > 0 && !slices.Equal(e.Classes, a.Model.Classes) {
		return nil, fmt.Errorf("%w: %s lists classes %v, artifact predicts %v",
			classifier.ErrInvalidArtifact, e.Ref(), e.Classes, a.Model.Classes)
	}

	if a.Name == "" {
		a.Name = e.Name
	}
	if a.Version == "" {
		a.Version = e.Version
	}
	return a, nil
}

// DefaultCacheDir returns the artifact cache directory: $EXAMIQ_MODEL_CACHE
// when set, otherwise ~/.cache/examiq/models.
func DefaultCacheDir() string {
	if dir := os.Getenv("EXAMIQ_MODEL_CACHE"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "examiq", "models")
	}
	return filepath.Join(home, ".cache", "examiq", "models")
}
