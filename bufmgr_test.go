package linhash

import "testing"

func testMgr(capacity int) *BufMgr {
	store := newMemStore(128)
	return newBufMgr(store, 128, 4, 4, capacity)
}

func TestBufMgrAllocateNewPageBumpsNumPages(t *testing.T) {
	mgr := testMgr(4)
	mgr.ctrl.numPages = 1

	id, err := mgr.allocateNewPage()
	if err != nil {
		t.Fatal(err)
	}
	if id != 1 {
		t.Errorf("allocateNewPage() id = %d, want 1", id)
	}
	if mgr.ctrl.numPages != 2 {
		t.Errorf("numPages = %d, want 2", mgr.ctrl.numPages)
	}
}

func TestBufMgrAllocateNewPagePopsFreeList(t *testing.T) {
	mgr := testMgr(4)
	mgr.ctrl.numPages = 5

	freed, err := mgr.fetchPage(3)
	if err != nil {
		t.Fatal(err)
	}
	freed.next = 0
	freed.writeHeader()
	mgr.ctrl.freeListHead = 3
	mgr.ctrl.numFree = 1

	id, err := mgr.allocateNewPage()
	if err != nil {
		t.Fatal(err)
	}
	if id != 3 {
		t.Errorf("allocateNewPage() id = %d, want 3 (from free list)", id)
	}
	if mgr.ctrl.freeListHead != 0 {
		t.Errorf("freeListHead = %d, want 0", mgr.ctrl.freeListHead)
	}
	if mgr.ctrl.numFree != 0 {
		t.Errorf("numFree = %d, want 0", mgr.ctrl.numFree)
	}
	if mgr.ctrl.numPages != 5 {
		t.Errorf("numPages = %d, want unchanged 5", mgr.ctrl.numPages)
	}
}

func TestBufMgrFIFOEviction(t *testing.T) {
	mgr := testMgr(2)
	mgr.ctrl.numPages = 10

	for _, id := range []uint64{1, 2, 3} {
		if _, err := mgr.fetchPage(id); err != nil {
			t.Fatal(err)
		}
	}

	if _, ok := mgr.frames[1]; ok {
		t.Errorf("page 1 should have been evicted first (FIFO)")
	}
	if _, ok := mgr.frames[2]; !ok {
		t.Errorf("page 2 should still be resident")
	}
	if _, ok := mgr.frames[3]; !ok {
		t.Errorf("page 3 should still be resident")
	}
}

func TestBufMgrEvictionFlushesDirty(t *testing.T) {
	mgr := testMgr(1)
	mgr.ctrl.numPages = 10

	p1, err := mgr.fetchPage(1)
	if err != nil {
		t.Fatal(err)
	}
	p1.writeRecord(0, []byte("key1"), []byte("val1"))
	p1.incrNumRecords()
	p1.writeHeader()
	p1.dirty = true

	if _, err := mgr.fetchPage(2); err != nil {
		t.Fatal(err)
	}

	p1Reloaded, err := mgr.fetchPage(1)
	if err != nil {
		t.Fatal(err)
	}
	k, v := p1Reloaded.readRecord(0)
	if string(k) != "key1" || string(v) != "val1" {
		t.Errorf("after eviction+reload, row 0 = (%q, %q)", k, v)
	}
}

func TestBufMgrCtrlPageRoundTrip(t *testing.T) {
	mgr := testMgr(4)
	mgr.ctrl = controlPage{
		nbits:        2,
		nitems:       5,
		nbuckets:     3,
		numPages:     4,
		freeListHead: 0,
		numFree:      0,
		bucketToPage: []uint64{1, 2, 3},
	}
	if err := mgr.writeCtrlPage(); err != nil {
		t.Fatal(err)
	}

	mgr2 := testMgr(4)
	mgr2.store = mgr.store
	if err := mgr2.readCtrlPage(); err != nil {
		t.Fatal(err)
	}

	if mgr2.ctrl.nbits != 2 || mgr2.ctrl.nitems != 5 || mgr2.ctrl.nbuckets != 3 ||
		mgr2.ctrl.numPages != 4 {
		t.Errorf("readCtrlPage() = %+v", mgr2.ctrl)
	}
	if len(mgr2.ctrl.bucketToPage) != 3 || mgr2.ctrl.bucketToPage[2] != 3 {
		t.Errorf("bucketToPage = %v", mgr2.ctrl.bucketToPage)
	}
}

func TestBufMgrCorruptControlPageBadNbits(t *testing.T) {
	mgr := testMgr(4)
	mgr.ctrl = controlPage{nbits: 1, nbuckets: 5, numPages: 1, bucketToPage: []uint64{0, 0, 0, 0, 0}}
	if err := mgr.writeCtrlPage(); err != nil {
		t.Fatal(err)
	}

	mgr2 := testMgr(4)
	mgr2.store = mgr.store
	err := mgr2.readCtrlPage()
	if err != ErrCorrupt {
		t.Errorf("readCtrlPage() err = %v, want ErrCorrupt", err)
	}
}
