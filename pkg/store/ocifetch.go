package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"

	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// OCIFetcher pulls single-layer component artifacts from an OCI
// registry: it writes the first layer's compressed archive to a
// staging file, and the cache extracts the component binary from it.
type OCIFetcher struct {
	auth authn.Keychain
}

// NewOCIFetcher creates an OCIFetcher using the default credential
// keychain (docker config, podman auth, etc).
func NewOCIFetcher() *OCIFetcher {
	return &OCIFetcher{auth: authn.DefaultKeychain}
}

// FetchArchive pulls reference (single-layer component artifacts are
// expected, per the component store's cache layout) and writes its
// first layer's compressed bytes — a tar.gz wrapping the component's
// `.wasm` file — to archivePath for the cache to unpack.
func (f *OCIFetcher) FetchArchive(ctx context.Context, reference, archivePath string) error {
	ref, err := name.ParseReference(reference)
	if err != nil {
		return wassetteerr.FetchFailed(reference, fmt.Errorf("invalid OCI reference: %w", err))
	}

	img, err := remote.Image(ref, remote.WithAuthFromKeychain(f.auth), remote.WithContext(ctx))
	if err != nil {
		return wassetteerr.FetchFailed(reference, registryError(reference, err))
	}

	layers, err := img.Layers()
	if err != nil {
		return wassetteerr.FetchFailed(reference, fmt.Errorf("failed to read image layers: %w", err))
	}
	if len(layers) == 0 {
		return wassetteerr.FetchFailed(reference, errors.New("artifact has no layers"))
	}

	rc, err := layers[0].Compressed()
	if err != nil {
		return wassetteerr.FetchFailed(reference, fmt.Errorf("failed to read component layer: %w", err))
	}
	defer rc.Close()

	out, err := os.OpenFile(archivePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return wassetteerr.Wrap(wassetteerr.CodeCacheIOFailed, "failed to create cache staging file", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return wassetteerr.FetchFailed(reference, fmt.Errorf("failed to write component layer: %w", err))
	}
	return nil
}

// registryError translates go-containerregistry transport errors into
// operator-facing messages for the common failure classes.
func registryError(reference string, err error) error {
	var transportErr *transport.Error
	if errors.As(err, &transportErr) {
		for _, diagnostic := range transportErr.Errors {
			switch diagnostic.Code {
			case transport.ManifestUnknownErrorCode:
				return fmt.Errorf("component not found: %s does not exist or the tag is invalid", reference)
			case transport.NameUnknownErrorCode:
				return fmt.Errorf("repository not found: %s does not exist in the registry", reference)
			case transport.UnauthorizedErrorCode:
				return fmt.Errorf("authentication required: you may need to log in to access %s", reference)
			case transport.DeniedErrorCode:
				return fmt.Errorf("access denied: you don't have permission to pull %s", reference)
			}
		}
		if transportErr.StatusCode == http.StatusNotFound {
			return fmt.Errorf("component not found: %s does not exist in the registry", reference)
		}
	}
	return err
}
