package cache

import (
	"encoding/hex"
	"time"

	"github.com/zeebo/blake3"
)

// Entry is the metadata of one cached resource.
type Entry struct {
	URL          string     `yaml:"url"`
	Key          string     `yaml:"key"`
	Size         int64      `yaml:"size"`
	Created      time.Time  `yaml:"created"`
	LastAccess   time.Time  `yaml:"last_access"`
	Expires      time.Time  `yaml:"expires"`
	LastModified *time.Time `yaml:"last_modified,omitempty"`
}

// Fresh reports whether the entry may be served without revalidation.
func (e *Entry) Fresh(now time.Time) bool {
	return now.Before(e.Expires)
}

// Key derives the storage key for url.
func Key(url string) string {
	sum := blake3.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// nextKey is the key tried when key is already taken by a different URL.
func nextKey(key, url string) string {
	return Key(key + url)
}
