package linhash

import "bytes"

// kv is a detached copy of one (key, value) record, used when a chain is
// read out wholesale (clearBucket) for rehashing.
type kv struct {
	key []byte
	val []byte
}

// SearchResult reports where a key was found in a bucket chain, or where
// it would be inserted. Exactly one of three patterns occurs (spec
// §4.C): Found means Val is the stored bytes; otherwise HasRow true means
// an empty slot exists at PageID/Row; HasRow false means the last page in
// the chain is full and an overflow page must be allocated.
type SearchResult struct {
	PageID uint64
	Row    uint32
	HasRow bool
	Val    []byte // non-nil iff found
}

// Found reports whether the key was located.
func (r SearchResult) Found() bool { return r.Val != nil }

// searchBucket walks bucket b's chain from its head via next, returning
// the first byte-wise key match, or an aim point for insertion.
func (mgr *BufMgr) searchBucket(bucket uint64, key []byte) (SearchResult, error) {
	headID := mgr.ctrl.bucketToPage[bucket]

	var lastID uint64
	pid := headID
	for pid != 0 {
		p, err := mgr.fetchPage(pid)
		if err != nil {
			return SearchResult{}, err
		}
		for row := uint64(0); row < p.numRecords; row++ {
			k, v := p.readRecord(uint32(row))
			if bytes.Equal(k, key) {
				val := append([]byte(nil), v...)
				return SearchResult{PageID: pid, Row: uint32(row), HasRow: true, Val: val}, nil
			}
		}
		lastID = pid
		pid = p.next
	}

	last, err := mgr.fetchPage(lastID)
	if err != nil {
		return SearchResult{}, err
	}
	if last.numRecords < uint64(last.recordsPerPage()) {
		return SearchResult{PageID: lastID, Row: uint32(last.numRecords), HasRow: true}, nil
	}
	// last page full: caller must allocate an overflow page.
	return SearchResult{PageID: lastID, HasRow: false}, nil
}

// allocateOverflow appends a fresh page to the end of bucket's chain,
// linking it after lastPageID, and returns its id. Row 0 of the new page
// is the insertion point.
func (mgr *BufMgr) allocateOverflow(lastPageID uint64) (uint64, error) {
	newID, err := mgr.allocateNewPage()
	if err != nil {
		return 0, err
	}
	newPage, err := mgr.fetchPage(newID)
	if err != nil {
		return 0, err
	}
	newPage.prev = lastPageID
	newPage.writeHeader()
	newPage.dirty = true

	last, err := mgr.fetchPage(lastPageID)
	if err != nil {
		return 0, err
	}
	last.next = newID
	last.writeHeader()
	last.dirty = true

	return newID, nil
}

// allocateNewBucket allocates a head page for a brand new bucket and
// appends it to bucket_to_page.
func (mgr *BufMgr) allocateNewBucket() (uint64, error) {
	id, err := mgr.allocateNewPage()
	if err != nil {
		return 0, err
	}
	p, err := mgr.fetchPage(id)
	if err != nil {
		return 0, err
	}
	p.dirty = true
	mgr.ctrl.bucketToPage = append(mgr.ctrl.bucketToPage, id)
	return id, nil
}

// clearBucket reads out every record in bucket's chain, splices any
// overflow pages onto the free list, and resets the head page to empty
// (keeping its id and its slot in bucket_to_page).
func (mgr *BufMgr) clearBucket(bucket uint64) ([]kv, error) {
	headID := mgr.ctrl.bucketToPage[bucket]

	var records []kv
	var chain []uint64
	pid := headID
	for pid != 0 {
		p, err := mgr.fetchPage(pid)
		if err != nil {
			return nil, err
		}
		for row := uint64(0); row < p.numRecords; row++ {
			k, v := p.readRecord(uint32(row))
			records = append(records, kv{
				key: append([]byte(nil), k...),
				val: append([]byte(nil), v...),
			})
		}
		chain = append(chain, pid)
		pid = p.next
	}

	if len(chain) >= 2 {
		tailHead := chain[1]
		tailTail, err := mgr.fetchPage(chain[len(chain)-1])
		if err != nil {
			return nil, err
		}
		tailTail.next = mgr.ctrl.freeListHead
		tailTail.writeHeader()
		tailTail.dirty = true

		mgr.ctrl.freeListHead = tailHead
		mgr.ctrl.numFree += uint64(len(chain) - 1)
	}

	head, err := mgr.fetchPage(headID)
	if err != nil {
		return nil, err
	}
	head.reset()
	head.dirty = true

	return records, nil
}
