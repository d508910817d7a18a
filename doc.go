// Package linhash implements a persistent, disk-resident linear hash
// index: a single-file key-value store with fixed-width keys and values
// that grows incrementally by splitting one bucket at a time.
//
// # Basic usage
//
//	h, err := linhash.Open("/tmp/my.linhash", 32, 4)
//	if err != nil {
//	    // handle
//	}
//	defer h.Close()
//
//	key := make([]byte, 32) // keys must be exactly 32 bytes
//	copy(key, "hello")
//	if err := h.Put(key, []byte{0x0c, 0, 0, 0}); err != nil {
//	    // handle ErrKeyExists, *linhash.SizeMismatchError, or I/O errors
//	}
//	val, err := h.Get(key)
//
// # Concurrency
//
// A *LinHash is not safe for concurrent use. It is single-writer and
// synchronous: every call blocks until the underlying file operation
// completes, and there is no internal locking. Callers that need shared
// access must serialize it themselves.
//
// # Durability
//
// Close flushes every dirty frame and the control page. There is no
// write-ahead log: a crash between writing a bucket page and writing the
// control page can leave the file with stale bookkeeping next to already
// updated bucket pages. The store does not claim crash safety.
package linhash
