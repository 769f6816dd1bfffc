// Package cache is a size-bounded disk cache for downloaded resources, plus a
// Downloader that fetches through httpx and revalidates with
// If-Modified-Since.
//
// # Layout
//
// Each URL maps to a BLAKE3 hex key. Data lives at dir/k0/k1/key and its
// metadata, as YAML, next to it at dir/k0/k1/key.meta. The in-memory index is
// filled lazily from metadata files as keys are looked up; Evict scans the
// whole directory first.
//
// # Access times
//
// Lookups update access times in memory only. Flush writes them back, and Run
// does that periodically together with eviction. Eviction removes the least
// recently accessed entries until the total size fits.
package cache
