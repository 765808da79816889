// Package cache keeps synthesized phrase audio around so a phrase spoken twice
// is only synthesized once.
//
// Two levels are combined by Manager:
//
//   - L1 MemoryCache: an LRU bounded by bytes, lost on exit.
//   - L2 DiskCache: files under the user cache directory, zstd compressed,
//     indexed by a gob file so clips survive restarts.
//
// Keys come from GenerateCacheKey and depend on the text, the voice and the
// speaking rate.
package cache
