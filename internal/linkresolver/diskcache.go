package linkresolver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// diskCacheSchemaVersion guards against decoding a payload written by an
// incompatible version of DiskPayload.
const diskCacheSchemaVersion uint16 = 1

// DiskPayload is the persisted form of one resolved cross-catalog
// reference: enough to rebuild a docid.Reference without re-invoking an
// external resolver.
type DiskPayload struct {
	Schema             uint16
	CanonicalURL       string
	AvailableLanguages []string
	DefaultLanguage    string
}

// DiskCache persists resolved cross-catalog references keyed by a SHA-256
// of the catalog id plus the authored text, so repeated runs against an
// expensive external resolver don't have to re-invoke it. Optional: the
// Resolver works the same with or without one plugged in. Adapted from the
// same disk-cache shape a module-aware build driver uses to persist
// per-module compilation metadata, keyed here by reference identity
// instead of module content hash.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache opens (creating if absent) a disk cache rooted at dir.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func diskKey(catalogID, authoredText string) string {
	sum := sha256.Sum256([]byte(catalogID + "\x00" + authoredText))
	return hex.EncodeToString(sum[:])
}

func (c *DiskCache) pathFor(catalogID, authoredText string) string {
	return filepath.Join(c.dir, diskKey(catalogID, authoredText)+".mp")
}

// Put serializes and writes payload for (catalogID, authoredText).
func (c *DiskCache) Put(catalogID, authoredText string, payload DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload.Schema = diskCacheSchemaVersion
	p := c.pathFor(catalogID, authoredText)
	f, err := os.CreateTemp(c.dir, "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads back a payload for (catalogID, authoredText), returning
// ok=false (not an error) when no entry exists.
func (c *DiskCache) Get(catalogID, authoredText string) (DiskPayload, bool, error) {
	if c == nil {
		return DiskPayload{}, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(catalogID, authoredText))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DiskPayload{}, false, nil
		}
		return DiskPayload{}, false, err
	}
	defer f.Close()

	var payload DiskPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return DiskPayload{}, false, err
	}
	if payload.Schema != diskCacheSchemaVersion {
		return DiskPayload{}, false, nil
	}
	return payload, true, nil
}
