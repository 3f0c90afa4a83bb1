// Package cache memoizes expensive trace results on disk, keyed by a
// hash of everything that went into computing them. Entries are gob
// streams compressed with zstd.
package cache

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"log"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Dir is the directory cache entries live in.
var Dir = ".cache"

// Key identifies one cached result.
type Key struct {
	key string
}

// MakeKey hashes the given values into a cache key. Changing any
// input, in value or in order, yields a different key.
func MakeKey(args ...any) *Key {
	h := sha256.New()

	enc := gob.NewEncoder(h)
	for _, arg := range args {
		if err := enc.Encode(arg); err != nil {
			panic("cache: error encoding cache key: " + err.Error())
		}
	}

	return &Key{hex.EncodeToString(h.Sum(nil))}
}

func (k *Key) path() string {
	return filepath.Join(Dir, k.key)
}

// Load reads the cached value for this key into out and reports
// whether it was found intact. Any unreadable entry counts as a miss.
func (k *Key) Load(out any) bool {
	f, err := os.Open(k.path())
	if err != nil {
		return false
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return false
	}
	defer zr.Close()

	return gob.NewDecoder(zr).Decode(out) == nil
}

// Save stores val under this key. Failures to write are logged and
// otherwise ignored; the cache is an optimization, not a store of
// record. A value gob cannot encode is a programming error and
// panics.
func (k *Key) Save(val any) {
	if err := os.MkdirAll(Dir, 0777); err != nil {
		log.Printf("error creating %s: %s", Dir, err)
		return
	}
	f, err := os.Create(k.path())
	if err != nil {
		log.Printf("error saving to cache: %s", err)
		return
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		log.Printf("error saving to cache: %s", err)
		return
	}
	if err := gob.NewEncoder(zw).Encode(val); err != nil {
		zw.Close()
		panic("cache: error encoding cache value: " + err.Error())
	}
	if err := zw.Close(); err != nil {
		log.Printf("error saving to cache: %s", err)
	}
}
