package store

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// Stamp is a validation stamp over a cached component binary; Changed
// compares it with the file on disk. The lifecycle manager keeps the
// stamp on each record but does not check it, so an out-of-band change
// to a cached binary does not trigger a reload. ContentHash is optional
// (empty when not computed).
type Stamp struct {
	Size        int64  `json:"size"`
	ModTime     int64  `json:"mtime"`
	ContentHash string `json:"content_hash,omitempty"`
}

// StampFile computes a validation stamp for path, including a sha256
// content hash.
func StampFile(path string) (Stamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Stamp{}, wassetteerr.Wrap(wassetteerr.CodeCacheIOFailed, "failed to stat cached component", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return Stamp{}, wassetteerr.Wrap(wassetteerr.CodeCacheIOFailed, "failed to open cached component", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return Stamp{}, wassetteerr.Wrap(wassetteerr.CodeCacheIOFailed, "failed to hash cached component", err)
	}

	return Stamp{
		Size:        info.Size(),
		ModTime:     info.ModTime().UnixNano(),
		ContentHash: hex.EncodeToString(h.Sum(nil)),
	}, nil
}

// Changed reports whether the on-disk content at path no longer
// matches a previously recorded stamp: the content hashes differ when
// both stamps carry one, otherwise the size or modification time
// differs. A failure to stat or read the file counts as changed.
func (s Stamp) Changed(path string) bool {
	fresh, err := StampFile(path)
	if err != nil {
		return true
	}
	if s.ContentHash != "" && fresh.ContentHash != "" {
		return s.ContentHash != fresh.ContentHash
	}
	return s.Size != fresh.Size || s.ModTime != fresh.ModTime
}
