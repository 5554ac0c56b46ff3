//go:build waitlist_cachelinesize_128

package opt

// CacheLineSize_ forced to 128 bytes via the waitlist_cachelinesize_128 tag.
// Useful for Apple silicon and other cores with 128-byte lines when the
// host package is cross-compiled.
const CacheLineSize_ = 128
