package linhash

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// splitThreshold is the load factor T past which Put performs one split
// (spec §4.E).
const splitThreshold = 0.8

// reservedBucketHeads are the head pages of the two buckets a fresh file
// starts with. Page 0 is the control page (I3).
var reservedBucketHeads = []uint64{1, 2}

// LinHash is the public façade over the linear-hash controller (spec
// components E and F): a single-writer, synchronous, disk-resident
// fixed-width key-value store.
type LinHash struct {
	mgr              *BufMgr
	keySize, valSize uint32
	closed           bool
}

// Open opens the linear hash index at path, creating it with the given
// fixed key/value widths if it does not already exist. Reopening an
// existing file ignores keySize/valSize validation beyond what the
// caller's own Put/Get calls enforce — the file does not currently record
// its configured widths, matching spec §6 (no magic/version field, see
// SPEC_FULL.md §6.1).
func Open(path string, keySize, valSize uint32, opts ...Option) (*LinHash, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	options.normalize()

	store := options.store
	if store == nil {
		fs, err := openFileStore(path, options.pageSize)
		if err != nil {
			return nil, err
		}
		store = fs
	}

	numPages, err := store.size()
	if err != nil {
		return nil, err
	}

	mgr := newBufMgr(store, options.pageSize, keySize, valSize, options.frameCount)

	if numPages == 0 {
		if err := initFreshControlPage(mgr); err != nil {
			return nil, err
		}
	} else if err := mgr.readCtrlPage(); err != nil {
		return nil, err
	}

	return &LinHash{mgr: mgr, keySize: keySize, valSize: valSize}, nil
}

// initFreshControlPage sets up the initial state of spec §4.E's open:
// nbits=1, nitems=0, nbuckets=2, bucket_to_page=[1,2], num_pages=3,
// num_free=0. The spec prose also names free_list_head=3 for this state,
// but that contradicts num_free=0 (a nonzero free-list head with zero
// free pages, pointing at a page that was never allocated) and would
// make the first allocateNewPage pop a phantom page. free_list_head=0
// (none) is the only value consistent with the free-list invariants
// (§3 I2/I6) and is used here instead.
func initFreshControlPage(mgr *BufMgr) error {
	mgr.ctrl = controlPage{
		nbits:        1,
		nitems:       0,
		nbuckets:     2,
		numPages:     3,
		freeListHead: 0,
		numFree:      0,
		bucketToPage: append([]uint64(nil), reservedBucketHeads...),
	}
	for _, id := range mgr.ctrl.bucketToPage {
		p, err := mgr.fetchPage(id)
		if err != nil {
			return err
		}
		p.reset()
		p.dirty = true
	}
	return mgr.writeCtrlPage()
}

func (h *LinHash) checkOpen() error {
	if h.closed {
		return ErrClosed
	}
	return nil
}

func (h *LinHash) checkSizes(key, val []byte) error {
	if uint32(len(key)) != h.keySize {
		return &SizeMismatchError{Field: "key", Want: int(h.keySize), Got: len(key)}
	}
	if val != nil && uint32(len(val)) != h.valSize {
		return &SizeMismatchError{Field: "value", Want: int(h.valSize), Got: len(val)}
	}
	return nil
}

// bucketFor applies the linear-hash addressing function of spec §4.E.
func (h *LinHash) bucketFor(key []byte) uint64 {
	hash := xxhash.Sum64(key)
	nbits := h.mgr.ctrl.nbits
	m := hash & ((uint64(1) << nbits) - 1)
	if m < h.mgr.ctrl.nbuckets {
		return m
	}
	return m - (uint64(1) << (nbits - 1))
}

// Put inserts (key, val). It returns ErrKeyExists if key is already
// present — Put never silently overwrites; use Update for that.
func (h *LinHash) Put(key, val []byte) error {
	if err := h.checkOpen(); err != nil {
		return err
	}
	if err := h.checkSizes(key, val); err != nil {
		return err
	}
	if err := h.put(key, val); err != nil {
		return err
	}
	if err := h.maybeSplit(); err != nil {
		return err
	}
	return h.mgr.writeCtrlPage()
}

// put performs steps 1-3 of spec §4.E's Put, with overflow allocation
// folded in directly rather than via recursive retry: allocateOverflow
// always returns a page with a free row 0.
func (h *LinHash) put(key, val []byte) error {
	b := h.bucketFor(key)
	res, err := h.mgr.searchBucket(b, key)
	if err != nil {
		return err
	}
	if res.Found() && !res.HasRow {
		return ErrInvariant
	}
	if res.Found() {
		return ErrKeyExists
	}
	if res.HasRow {
		if err := h.mgr.writeRecordIncr(res.PageID, res.Row, key, val); err != nil {
			return err
		}
		h.mgr.ctrl.nitems++
		return nil
	}

	newID, err := h.mgr.allocateOverflow(res.PageID)
	if err != nil {
		return err
	}
	if err := h.mgr.writeRecordIncr(newID, 0, key, val); err != nil {
		return err
	}
	h.mgr.ctrl.nitems++
	return nil
}

// maybeSplit performs at most one split per insert, exactly as spec
// §4.E mandates even if load remains above T afterward.
func (h *LinHash) maybeSplit() error {
	mgr := h.mgr
	rpp := float64(mgr.recordsPerPage())
	load := float64(mgr.ctrl.nitems) / (rpp * float64(mgr.ctrl.nbuckets))
	if load <= splitThreshold {
		return nil
	}

	if _, err := mgr.allocateNewBucket(); err != nil {
		return err
	}
	mgr.ctrl.nbuckets++
	if mgr.ctrl.nbuckets > (uint64(1) << mgr.ctrl.nbits) {
		mgr.ctrl.nbits++
	}

	bucketToSplit := (mgr.ctrl.nbuckets - 1) ^ (uint64(1) << (mgr.ctrl.nbits - 1))
	records, err := mgr.clearBucket(bucketToSplit)
	if err != nil {
		return err
	}
	for _, r := range records {
		if err := h.reinsert(r.key, r.val); err != nil {
			return err
		}
	}
	return nil
}

// reinsert re-routes one record through the normal Put path during a
// split, then cancels the nested nitems++ so the record isn't
// double-counted (spec §4.E step 5).
func (h *LinHash) reinsert(key, val []byte) error {
	if err := h.put(key, val); err != nil {
		return err
	}
	h.mgr.ctrl.nitems--
	return nil
}

// Get returns the value stored for key, or nil if key is absent. A
// missing key is a normal result, not an error.
func (h *LinHash) Get(key []byte) ([]byte, error) {
	if err := h.checkOpen(); err != nil {
		return nil, err
	}
	if err := h.checkSizes(key, nil); err != nil {
		return nil, err
	}
	b := h.bucketFor(key)
	res, err := h.mgr.searchBucket(b, key)
	if err != nil {
		return nil, err
	}
	return res.Val, nil
}

// Update overwrites the value stored for an existing key. It returns
// false, with no error and no size change, if key is absent.
func (h *LinHash) Update(key, val []byte) (bool, error) {
	if err := h.checkOpen(); err != nil {
		return false, err
	}
	if err := h.checkSizes(key, val); err != nil {
		return false, err
	}
	b := h.bucketFor(key)
	res, err := h.mgr.searchBucket(b, key)
	if err != nil {
		return false, err
	}
	if !res.Found() {
		return false, nil
	}
	if err := h.mgr.writeRecord(res.PageID, res.Row, key, val); err != nil {
		return false, err
	}
	return true, nil
}

// Contains reports whether key is present.
func (h *LinHash) Contains(key []byte) (bool, error) {
	val, err := h.Get(key)
	if err != nil {
		return false, err
	}
	return val != nil, nil
}

// Close flushes every dirty frame and the control page, then closes the
// backing file. Close is idempotent.
func (h *LinHash) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true

	flushed := 0
	for _, id := range h.mgr.frameOrder {
		if h.mgr.frames[id].dirty {
			flushed++
		}
	}
	if flushed > 0 {
		fmt.Println(flushed, "dirty pages flushed")
	}

	return h.mgr.close()
}
