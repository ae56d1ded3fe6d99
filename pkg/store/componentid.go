// Package store resolves a component source URI (file:// or oci://) to
// a local, content-cached binary path and produces a validation stamp
// for change detection (see Stamp.Changed).
package store

import (
	"net/url"
	"path"
	"strings"

	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// ComponentID derives the canonical component ID from a source URI:
// the terminal path segment, extension stripped, with any character
// outside [a-z0-9_-] replaced by '_'.
func ComponentID(sourceURI string) (string, error) {
	u, err := url.Parse(sourceURI)
	if err != nil {
		return "", wassetteerr.New(wassetteerr.CodeUnsupportedURI, "malformed source URI: "+sourceURI)
	}

	segment := path.Base(u.Path)
	if segment == "" || segment == "." || segment == "/" {
		return "", wassetteerr.New(wassetteerr.CodeUnsupportedURI, "source URI has no terminal path segment: "+sourceURI)
	}
	segment = strings.TrimSuffix(segment, path.Ext(segment))

	var b strings.Builder
	for _, r := range strings.ToLower(segment) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	id := b.String()
	if id == "" {
		return "", wassetteerr.New(wassetteerr.CodeUnsupportedURI, "source URI yields an empty component ID: "+sourceURI)
	}
	return id, nil
}

// Scheme reports the URI scheme ("file" or "oci"), or an
// unsupported_uri error for anything else.
func Scheme(sourceURI string) (string, error) {
	u, err := url.Parse(sourceURI)
	if err != nil {
		return "", wassetteerr.New(wassetteerr.CodeUnsupportedURI, "malformed source URI: "+sourceURI)
	}
	switch u.Scheme {
	case "file", "oci":
		return u.Scheme, nil
	default:
		return "", wassetteerr.New(wassetteerr.CodeUnsupportedURI, "unsupported source URI scheme: "+u.Scheme)
	}
}
