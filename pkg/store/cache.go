package store

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/moby/go-archive"

	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// Record is everything the Component Store resolves for one source
// URI: its canonical ID, where the cached binary lives, and a
// validation stamp for change detection.
type Record struct {
	ComponentID string
	SourceURI   string
	BinaryPath  string
	PolicyPath  string
	Stamp       Stamp
}

// Cache is a single content-addressed directory of `<component_id>.wasm`
// / `<component_id>.policy.yaml` pairs. The pair is the on-disk unit of
// truth; a missing policy file means no permissions are granted.
type Cache struct {
	dir     string
	fetcher *OCIFetcher
}

// NewCache creates a Cache rooted at dir, creating it if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, wassetteerr.Wrap(wassetteerr.CodeCacheIOFailed, "failed to create component cache directory", err)
	}
	return &Cache{dir: dir, fetcher: NewOCIFetcher()}, nil
}

// BinaryPath returns the cache path a component's binary would live
// at, without requiring it to exist yet.
func (c *Cache) BinaryPath(componentID string) string {
	return filepath.Join(c.dir, componentID+".wasm")
}

// PolicyPath returns the cache path a component's policy binding
// would live at.
func (c *Cache) PolicyPath(componentID string) string {
	return filepath.Join(c.dir, componentID+".policy.yaml")
}

// Resolve fetches sourceURI into the cache on every call (there is no
// freshness check) and returns its Record. file:// sources are copied in directly;
// oci:// sources are pulled and unpacked via the OCI fetcher.
func (c *Cache) Resolve(ctx context.Context, sourceURI string) (*Record, error) {
	componentID, err := ComponentID(sourceURI)
	if err != nil {
		return nil, err
	}

	scheme, err := Scheme(sourceURI)
	if err != nil {
		return nil, err
	}

	binPath := c.BinaryPath(componentID)

	switch scheme {
	case "file":
		if err := c.resolveFile(sourceURI, binPath); err != nil {
			return nil, err
		}
	case "oci":
		if err := c.resolveOCI(ctx, sourceURI, binPath); err != nil {
			return nil, err
		}
	}

	stamp, err := StampFile(binPath)
	if err != nil {
		return nil, err
	}

	return &Record{
		ComponentID: componentID,
		SourceURI:   sourceURI,
		BinaryPath:  binPath,
		PolicyPath:  c.PolicyPath(componentID),
		Stamp:       stamp,
	}, nil
}

func (c *Cache) resolveFile(sourceURI, destPath string) error {
	u, err := url.Parse(sourceURI)
	if err != nil {
		return wassetteerr.New(wassetteerr.CodeUnsupportedURI, "malformed file:// URI: "+sourceURI)
	}

	src, err := os.Open(u.Path)
	if err != nil {
		return wassetteerr.FetchFailed(sourceURI, err)
	}
	defer src.Close()

	// A source already inside the cache (the startup rebuild path)
	// must not be copied onto itself: opening the destination with
	// O_TRUNC would destroy the binary before it is read back.
	if srcInfo, err := src.Stat(); err == nil {
		if destInfo, err := os.Stat(destPath); err == nil && os.SameFile(srcInfo, destInfo) {
			return nil
		}
	}

	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return wassetteerr.Wrap(wassetteerr.CodeCacheIOFailed, "failed to create cache file", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return wassetteerr.Wrap(wassetteerr.CodeCacheIOFailed, "failed to copy component into cache", err)
	}
	return nil
}

func (c *Cache) resolveOCI(ctx context.Context, sourceURI, destPath string) error {
	reference := strings.TrimPrefix(sourceURI, "oci://")

	stagingDir, err := os.MkdirTemp(c.dir, ".fetch-*")
	if err != nil {
		return wassetteerr.Wrap(wassetteerr.CodeCacheIOFailed, "failed to create fetch staging directory", err)
	}
	defer os.RemoveAll(stagingDir)

	archivePath := filepath.Join(stagingDir, "layer.tar.gz")
	if err := c.fetcher.FetchArchive(ctx, reference, archivePath); err != nil {
		return err
	}

	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return wassetteerr.Wrap(wassetteerr.CodeCacheIOFailed, "failed to open fetched layer", err)
	}
	defer archiveFile.Close()

	extractDir := filepath.Join(stagingDir, "extracted")
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return wassetteerr.Wrap(wassetteerr.CodeCacheIOFailed, "failed to create extraction directory", err)
	}
	if err := archive.Untar(archiveFile, extractDir, &archive.TarOptions{NoLchown: true}); err != nil {
		return wassetteerr.Wrap(wassetteerr.CodeInvalidComponent, "failed to unpack component layer", err)
	}

	wasmPath, err := findWasmFile(extractDir)
	if err != nil {
		return err
	}

	in, err := os.Open(wasmPath)
	if err != nil {
		return wassetteerr.Wrap(wassetteerr.CodeCacheIOFailed, "failed to open extracted component", err)
	}
	defer in.Close()

	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return wassetteerr.Wrap(wassetteerr.CodeCacheIOFailed, "failed to create cache file", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return wassetteerr.Wrap(wassetteerr.CodeCacheIOFailed, "failed to install extracted component", err)
	}
	return nil
}

func findWasmFile(root string) (string, error) {
	var found string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".wasm") && found == "" {
			found = path
		}
		return nil
	})
	if err != nil {
		return "", wassetteerr.Wrap(wassetteerr.CodeCacheIOFailed, "failed to walk extracted component layer", err)
	}
	if found == "" {
		return "", wassetteerr.New(wassetteerr.CodeInvalidComponent, "component layer contains no .wasm file")
	}
	return found, nil
}
