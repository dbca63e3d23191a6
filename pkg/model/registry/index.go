package registry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmylchreest/examiq/pkg/model/classifier"
)

// Index is a Registry backed by a JSON file:
//
//	{"artifacts": [
//	  {"name": "difficulty-bow", "version": "1.0", "path": "difficulty-bow.json"},
//	  {"name": "difficulty-bow", "version": "2.0", "url": "https://...", "sha256": "..."}
//	]}
//
// Later entries of the same name are newer: a reference without a version
// resolves to the last one.
type Index struct {
	path     string
	cacheDir string
	client   *http.Client
	entries  []Entry
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithCacheDir sets where downloaded artifacts are kept. Empty means
// DefaultCacheDir().
func WithCacheDir(dir string) IndexOption {
	return func(x *Index) {
		if dir != "" {
			x.cacheDir = dir
		}
	}
}

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(c *http.Client) IndexOption {
	return func(x *Index) { x.client = c }
}

// OpenIndex reads and checks the index at path.
func OpenIndex(path string, opts ...IndexOption) (*Index, error) {
	x := &Index{
		path:     path,
		cacheDir: DefaultCacheDir(),
		client:   &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(x)
	}

	data, err := os.ReadFile(path) //#nosec G304
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIndex, err)
	}
	var doc struct {
		Artifacts []Entry `json:"artifacts"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidIndex, path, err)
	}

	seen := make(map[string]bool, len(doc.Artifacts))
	for i, e := range doc.Artifacts {
		switch {
		case e.Name == "" || strings.Contains(e.Name, "@"):
			return nil, fmt.Errorf("%w: entry %d: invalid name %q", ErrInvalidIndex, i, e.Name)
		case e.Path == "" && e.URL == "":
			return nil, fmt.Errorf("%w: %s: needs a path or a url", ErrInvalidIndex, e.Ref())
		case seen[e.Ref()]:
			return nil, fmt.Errorf("%w: %s listed twice", ErrInvalidIndex, e.Ref())
		}
		seen[e.Ref()] = true
	}

	x.entries = doc.Artifacts
	return x, nil
}

// Entries returns a copy of the index entries in file order.
func (x *Index) Entries(_ context.Context) ([]Entry, error) {
	return append([]Entry(nil), x.entries...), nil
}

// Lookup finds ref. A bare name picks the last entry with that name.
func (x *Index) Lookup(_ context.Context, ref string) (*Entry, error) {
	name, version := ParseRef(ref)

	var found *Entry
	for i := range x.entries {
		e := &x.entries[i]
		if e.Name != name {
			continue
		}
		if version == "" || e.Version == version {
			found = e
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, ref)
	}
	e := *found
	return &e, nil
}

// Fetch returns a local, checksum-verified copy of ref. Entries with a
// path are used in place; the rest are served from the cache and
// downloaded when missing or stale.
func (x *Index) Fetch(ctx context.Context, ref string) (string, *Entry, error) {
	e, err := x.Lookup(ctx, ref)
	if err != nil {
		return "", nil, err
	}

	if e.Path != "" {
		path := e.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(filepath.Dir(x.path), path)
		}
		if err := verifyFile(path, e.SHA256); err != nil {
			return "", nil, fmt.Errorf("%s: %w", e.Ref(), err)
		}
		return path, e, nil
	}

	cached := x.cachePath(e)
	if err := verifyFile(cached, e.SHA256); err == nil {
		return cached, e, nil
	}
	if err := x.download(ctx, e, cached); err != nil {
		return "", nil, fmt.Errorf("%s: %w", e.Ref(), err)
	}
	return cached, e, nil
}

// cachePath lays the cache out as <name>/<version>.json.
func (x *Index) cachePath(e *Entry) string {
	version := e.Version
	if version == "" {
		version = "unversioned"
	}
	return filepath.Join(x.cacheDir, e.Name, version+".json")
}

// download streams the entry's URL into a temporary file next to dest.
// The file replaces dest only if its checksum matches and it decodes as a
// valid artifact, so the cache never holds a partial or broken file.
func (x *Index) download(ctx context.Context, e *Entry, dest string) (err error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.URL, nil)
	if err != nil {
		return err
	}
	resp, err := x.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", e.URL, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	h := sha256.New()
	if _, err = io.Copy(io.MultiWriter(tmp, h), resp.Body); err != nil {
		return err
	}
	if err = matchSum(hex.EncodeToString(h.Sum(nil)), e.SHA256); err != nil {
		return err
	}
	if _, err = tmp.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err = classifier.ReadArtifact(tmp); err != nil {
		return fmt.Errorf("downloaded file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

// verifyFile checks that path exists and, when want is set, hashes to it.
func verifyFile(path, want string) error {
	f, err := os.Open(path) //#nosec G304
	if err != nil {
		return err
	}
	defer f.Close()
	if want == "" {
		return nil
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}
	return matchSum(hex.EncodeToString(h.Sum(nil)), want)
}

func matchSum(got, want string) error {
	if want != "" && !strings.EqualFold(got, want) {
		return fmt.Errorf("%w: got %s, want %s", ErrChecksumMismatch, got, want)
	}
	return nil
}
